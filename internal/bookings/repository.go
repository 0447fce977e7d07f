package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quickshow/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	UpdatePaymentLink(ctx context.Context, id uuid.UUID, link string) error

	// MarkPaid flips a pending booking to paid and merges its seat claims
	// into the show's occupied_seats, in one transaction. The show row is
	// locked first so the conflict check and the merge are atomic; a seat
	// already held by another booking returns ErrSeatsUnavailable and
	// rolls back. Returns false without error when the booking is already
	// terminal, so a repeated confirmation is a no-op instead of a double
	// occupation.
	MarkPaid(ctx context.Context, id uuid.UUID, showID uuid.UUID, seats map[string]string, details PaymentDetails) (bool, error)

	// MarkFailed flips a pending booking to failed. Terminal bookings are
	// left untouched. needsRefund flags the lost-seat-race case for the
	// support queue.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, needsRefund bool) (bool, error)

	// ListStalePending returns pending bookings older than the cutoff,
	// oldest first, capped at limit.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]Booking, error)

	// ExpireStalePending fails pending bookings older than the cutoff.
	// Returns how many were expired.
	ExpireStalePending(ctx context.Context, olderThan time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) UpdatePaymentLink(ctx context.Context, id uuid.UUID, link string) error {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_link": link,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, showID uuid.UUID, seats map[string]string, details PaymentDetails) (bool, error) {
	applied := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var show shows.Show
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&show, "id = ?", showID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShowNotFound
			}
			return err
		}
		for seat := range seats {
			if _, taken := show.OccupiedSeats[seat]; taken {
				return ErrSeatsUnavailable
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"payment_status":              StatusPaid,
			"is_paid":                     true,
			"payment_reference_id":        details.ReferenceID,
			"payment_payment_mode":        details.PaymentMode,
			"payment_tx_msg":              details.TxMsg,
			"payment_tx_time":             details.TxTime,
			"payment_signature":           details.Signature,
			"payment_manual_verification": details.ManualVerification,
			"updated_at":                  now,
		}
		if details.VerifiedAt != nil {
			updates["payment_verified_at"] = *details.VerifiedAt
		}

		// Guarding on payment_status makes the transition a check-then-set:
		// a booking that is already terminal matches zero rows.
		result := tx.Model(&Booking{}).
			Where("id = ? AND payment_status = ?", id, StatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true

		patch, err := json.Marshal(seats)
		if err != nil {
			return fmt.Errorf("marshal seat patch: %w", err)
		}

		// jsonb || merges keys per field instead of replacing the whole
		// document; concurrent reconciliations on the same show cannot
		// drop each other's seats.
		return tx.Table("shows").
			Where("id = ?", showID).
			Update("occupied_seats", gorm.Expr("occupied_seats || ?::jsonb", string(patch))).Error
	})

	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, needsRefund bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND payment_status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"payment_status": StatusFailed,
			"is_paid":        false,
			"failure_reason": reason,
			"needs_refund":   needsRefund,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Where("payment_status = ? AND created_at < ?", StatusPending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *repository) ExpireStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("payment_status = ? AND created_at < ?", StatusPending, olderThan).
		Updates(map[string]interface{}{
			"payment_status": StatusFailed,
			"is_paid":        false,
			"failure_reason": "pending booking expired",
			"updated_at":     time.Now(),
		})
	return result.RowsAffected, result.Error
}
