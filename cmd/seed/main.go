// Seeds the database with demo users and shows for local development.
package main

import (
	"log/slog"
	"os"
	"time"

	"quickshow/internal/shared/config"
	"quickshow/internal/shared/database"
	"quickshow/internal/shows"
	"quickshow/internal/users"
	"quickshow/pkg/logger"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db.GetPostgreSQL()); err != nil {
		appLogger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	gdb := db.GetPostgreSQL()

	seedUsers := []struct {
		name     string
		email    string
		phone    string
		password string
		role     users.Role
	}{
		{"Admin", "admin@quickshow.local", "+919999900000", "admin12345", users.RoleAdmin},
		{"Demo User", "demo@quickshow.local", "+919999900001", "demo12345", users.RoleUser},
	}

	for _, u := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			appLogger.Error("failed to hash password", slog.String("email", u.email), slog.Any("error", err))
			os.Exit(1)
		}

		user := users.User{
			Name:     u.name,
			Email:    u.email,
			Phone:    u.phone,
			Password: string(hash),
			Role:     u.role,
		}

		var existing users.User
		if err := gdb.Where("email = ?", u.email).First(&existing).Error; err == nil {
			appLogger.Info("user already seeded", slog.String("email", u.email))
			continue
		}
		if err := gdb.Create(&user).Error; err != nil {
			appLogger.Error("failed to seed user", slog.String("email", u.email), slog.Any("error", err))
			os.Exit(1)
		}
		appLogger.Info("seeded user", slog.String("email", u.email), slog.String("role", string(u.role)))
	}

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	seedShows := []shows.Show{
		{
			MovieTitle:    "Interstellar",
			ShowDateTime:  base.Add(18 * time.Hour),
			ShowPrice:     250,
			City:          "Mumbai",
			Theater:       "PVR Phoenix",
			Screen:        "Audi 3",
			OccupiedSeats: shows.SeatMap{},
		},
		{
			MovieTitle:    "Inception",
			ShowDateTime:  base.Add(21 * time.Hour),
			ShowPrice:     300,
			City:          "Pune",
			Theater:       "Cinepolis Westend",
			Screen:        "Screen 1",
			OccupiedSeats: shows.SeatMap{"A1": "seed", "A2": "seed"},
		},
	}

	for i := range seedShows {
		show := &seedShows[i]
		var existing shows.Show
		err := gdb.Where("movie_title = ? AND show_date_time = ?", show.MovieTitle, show.ShowDateTime).
			First(&existing).Error
		if err == nil {
			appLogger.Info("show already seeded", slog.String("movie", show.MovieTitle))
			continue
		}
		if err := gdb.Create(show).Error; err != nil {
			appLogger.Error("failed to seed show", slog.String("movie", show.MovieTitle), slog.Any("error", err))
			os.Exit(1)
		}
		appLogger.Info("seeded show",
			slog.String("movie", show.MovieTitle),
			slog.String("show_id", show.ID.String()),
		)
	}

	appLogger.Info("seeding complete")
}
