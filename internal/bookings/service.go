package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"

	"quickshow/internal/payments"
	"quickshow/internal/shared/config"
	"quickshow/internal/shows"
	"quickshow/internal/users"
	"quickshow/pkg/logger"

	"github.com/google/uuid"
)

// Notifier publishes booking lifecycle events. Implementations must not
// block the request path; publish failures are logged, not surfaced.
type Notifier interface {
	PublishBookingCreated(ctx context.Context, booking *Booking)
	PublishBookingPaid(ctx context.Context, booking *Booking, source string)
	PublishBookingFailed(ctx context.Context, booking *Booking, reason string)
	PublishRefundRequired(ctx context.Context, booking *Booking, reason string)
}

type Service interface {
	// CreateBooking records a pending booking and returns a checkout link.
	// Seats are checked for availability but not occupied; occupation
	// happens only when the payment is confirmed.
	CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error)

	// GetUserBookings lists a user's bookings newest first, refreshing the
	// checkout link of any still-pending booking.
	GetUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingSnapshot, error)

	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
}

type service struct {
	repo     Repository
	shows    shows.Service
	users    users.Repository
	gateway  payments.Gateway
	notifier Notifier
	cfg      *config.Config
	log      *logger.Logger
}

func NewService(repo Repository, showService shows.Service, userRepo users.Repository, gateway payments.Gateway, notifier Notifier, cfg *config.Config) Service {
	return &service{
		repo:     repo,
		shows:    showService,
		users:    userRepo,
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		log:      logger.GetDefault(),
	}
}

func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error) {
	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, ErrShowNotFound
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	available, err := s.shows.CheckSeats(ctx, showID, req.SelectedSeats)
	if err != nil {
		if errors.Is(err, shows.ErrNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("check seats: %w", err)
	}
	if !available {
		return nil, ErrSeatsUnavailable
	}

	price, err := s.shows.ShowPrice(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("load show price: %w", err)
	}
	expected := price * float64(len(req.SelectedSeats))
	if math.Abs(req.Amount-expected) > 0.009 {
		return nil, ErrInvalidAmount
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	booking := &Booking{
		UserID:        userID,
		ShowID:        showID,
		Amount:        req.Amount,
		BookedSeats:   SeatList(req.SelectedSeats),
		PaymentStatus: StatusPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	link, err := s.createPaymentLink(ctx, booking, user)
	if err != nil {
		// The order may exist gateway-side even though this call failed,
		// so the booking stays pending: listing bookings regenerates the
		// link, and the expiry job converges stragglers to a terminal
		// state.
		return nil, err
	}

	if err := s.repo.UpdatePaymentLink(ctx, booking.ID, link); err != nil {
		return nil, fmt.Errorf("store payment link: %w", err)
	}
	booking.PaymentLink = link

	s.log.LogBookingCreated(ctx, booking.ID.String(), showID.String(), userID.String())
	if s.notifier != nil {
		s.notifier.PublishBookingCreated(ctx, booking)
	}

	return &CreateBookingResponse{
		PaymentLink:   link,
		TempBookingID: booking.ID.String(),
	}, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingSnapshot, error) {
	list, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	snapshots := make([]BookingSnapshot, 0, len(list))
	for i := range list {
		b := &list[i]

		// A pending booking may still be paid, so keep its link usable.
		if user != nil && b.IsPending() {
			if link, lerr := s.createPaymentLink(ctx, b, user); lerr == nil && link != b.PaymentLink {
				if uerr := s.repo.UpdatePaymentLink(ctx, b.ID, link); uerr == nil {
					b.PaymentLink = link
				}
			} else if lerr != nil {
				s.log.Warn("failed to refresh payment link", "booking_id", b.ID.String(), "error", lerr.Error())
			}
		}

		snapshots = append(snapshots, *snapshot(b))
	}
	return snapshots, nil
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) createPaymentLink(ctx context.Context, booking *Booking, user *users.User) (string, error) {
	orderID := booking.OrderID()
	result, err := s.gateway.CreateOrder(ctx, payments.OrderRequest{
		OrderID:  orderID,
		Amount:   booking.Amount,
		Currency: s.cfg.Payment.Currency,
		Customer: payments.Customer{
			ID:    user.ID.String(),
			Email: user.Email,
			Phone: user.Phone,
		},
		ReturnURL: s.cfg.ReturnURL(orderID),
		NotifyURL: s.cfg.NotifyURL(),
	})
	if err != nil {
		return "", err
	}
	return s.gateway.PaymentLink(result)
}
