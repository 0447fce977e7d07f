// Resolves stale pending bookings: each one is polled against the gateway
// for a terminal order status and reconciled; if the gateway cannot settle
// it (or no gateway is configured), the booking is expired to failed.
// Intended to run on a schedule.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"quickshow/internal/bookings"
	"quickshow/internal/payments"
	"quickshow/internal/shared/config"
	"quickshow/internal/shared/database"
	"quickshow/internal/shows"
	"quickshow/pkg/logger"

	"github.com/joho/godotenv"
)

const batchSize = 100

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	repo := bookings.NewRepository(db.GetPostgreSQL())
	cutoff := time.Now().Add(-cfg.PendingBookingTTL)

	if cfg.Payment.AppID == "" {
		// No gateway to consult; expire in bulk.
		expired, err := repo.ExpireStalePending(ctx, cutoff)
		if err != nil {
			appLogger.Error("failed to expire stale bookings", slog.Any("error", err))
			os.Exit(1)
		}
		appLogger.Info("expired stale pending bookings", slog.Int64("count", expired))
		return
	}

	showService := shows.NewService(shows.NewRepository(db.GetPostgreSQL()), nil, 0)
	gateway := payments.NewClient(cfg.Payment)
	poller := payments.NewPoller(gateway, cfg.Payment)
	reconciler := bookings.NewReconciler(repo, showService, gateway, poller, nil)

	stale, err := repo.ListStalePending(ctx, cutoff, batchSize)
	if err != nil {
		appLogger.Error("failed to list stale bookings", slog.Any("error", err))
		os.Exit(1)
	}

	var resolvedPaid, resolvedFailed int
	for i := range stale {
		booking, err := reconciler.ResolvePending(ctx, stale[i].ID)
		if err != nil {
			appLogger.Error("failed to resolve pending booking",
				slog.String("booking_id", stale[i].ID.String()), slog.Any("error", err))
			continue
		}
		if booking.IsPaid {
			resolvedPaid++
		} else {
			resolvedFailed++
		}
	}

	appLogger.Info("stale booking resolution complete",
		slog.Int("candidates", len(stale)),
		slog.Int("resolved_paid", resolvedPaid),
		slog.Int("resolved_failed", resolvedFailed),
	)
}
