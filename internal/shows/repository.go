package shows

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("show not found")

type Repository interface {
	Create(ctx context.Context, show *Show) error
	GetByID(ctx context.Context, id uuid.UUID) (*Show, error)
	List(ctx context.Context) ([]Show, error)

	// ReleaseSeats removes the given labels from occupied_seats. Used by
	// administrative cleanup only; the paid-path seat merge lives in the
	// booking repository so it stays atomic with the status flip.
	ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, show *Show) error {
	return r.db.WithContext(ctx).Create(show).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &show, nil
}

func (r *repository) List(ctx context.Context) ([]Show, error) {
	var list []Show
	err := r.db.WithContext(ctx).Order("show_date_time ASC").Find(&list).Error
	return list, err
}

func (r *repository) ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error {
	if len(seats) == 0 {
		return nil
	}

	db := r.db.WithContext(ctx)
	for _, label := range seats {
		result := db.Model(&Show{}).
			Where("id = ?", showID).
			Update("occupied_seats", gorm.Expr("occupied_seats - ?", label))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
	}
	return nil
}
