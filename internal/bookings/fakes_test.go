package bookings

import (
	"context"
	"sync"
	"time"

	"quickshow/internal/payments"
	"quickshow/internal/shows"
	"quickshow/internal/users"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory Repository that mirrors the transactional
// semantics of the real one: MarkPaid refuses seats already held and is a
// no-op on terminal bookings.
type fakeRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
	occupied map[uuid.UUID]map[string]string

	markPaidApplied int
	createErr       error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookings: make(map[uuid.UUID]*Booking),
		occupied: make(map[uuid.UUID]map[string]string),
	}
}

func (r *fakeRepo) Create(ctx context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = StatusPending
	}
	booking.CreatedAt = time.Now()
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			list = append(list, *b)
		}
	}
	return list, nil
}

func (r *fakeRepo) UpdatePaymentLink(ctx context.Context, id uuid.UUID, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	b.PaymentLink = link
	return nil
}

func (r *fakeRepo) MarkPaid(ctx context.Context, id uuid.UUID, showID uuid.UUID, seats map[string]string, details PaymentDetails) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for seat := range seats {
		if _, taken := r.occupied[showID][seat]; taken {
			return false, ErrSeatsUnavailable
		}
	}

	b, ok := r.bookings[id]
	if !ok {
		return false, ErrBookingNotFound
	}
	if b.PaymentStatus != StatusPending {
		return false, nil
	}

	b.PaymentStatus = StatusPaid
	b.IsPaid = true
	b.PaymentDetails = details
	if r.occupied[showID] == nil {
		r.occupied[showID] = make(map[string]string)
	}
	for seat, holder := range seats {
		r.occupied[showID][seat] = holder
	}
	r.markPaidApplied++
	return true, nil
}

func (r *fakeRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string, needsRefund bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return false, ErrBookingNotFound
	}
	if b.PaymentStatus != StatusPending {
		return false, nil
	}
	b.PaymentStatus = StatusFailed
	b.IsPaid = false
	b.FailureReason = reason
	b.NeedsRefund = needsRefund
	return true, nil
}

func (r *fakeRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []Booking
	for _, b := range r.bookings {
		if b.PaymentStatus == StatusPending && b.CreatedAt.Before(olderThan) && len(list) < limit {
			list = append(list, *b)
		}
	}
	return list, nil
}

func (r *fakeRepo) ExpireStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.PaymentStatus == StatusPending && b.CreatedAt.Before(olderThan) {
			b.PaymentStatus = StatusFailed
			b.FailureReason = "pending booking expired"
			n++
		}
	}
	return n, nil
}

// fakeShowService backs the availability check with a plain map.
type fakeShowService struct {
	price       float64
	occupied    map[string]string
	showErr     error
	invalidated int
}

func newFakeShowService(price float64) *fakeShowService {
	return &fakeShowService{price: price, occupied: make(map[string]string)}
}

func (s *fakeShowService) AddShow(ctx context.Context, req shows.AddShowRequest) (*shows.Show, error) {
	return nil, nil
}

func (s *fakeShowService) GetShow(ctx context.Context, showID uuid.UUID) (*shows.Show, error) {
	if s.showErr != nil {
		return nil, s.showErr
	}
	return &shows.Show{ID: showID, ShowPrice: s.price}, nil
}

func (s *fakeShowService) ListShows(ctx context.Context) ([]shows.Show, error) { return nil, nil }

func (s *fakeShowService) CheckSeats(ctx context.Context, showID uuid.UUID, seats []string) (bool, error) {
	if s.showErr != nil {
		return false, s.showErr
	}
	for _, seat := range seats {
		if _, taken := s.occupied[seat]; taken {
			return false, nil
		}
	}
	return true, nil
}

func (s *fakeShowService) OccupiedSeatLabels(ctx context.Context, showID uuid.UUID) ([]string, error) {
	var labels []string
	for label := range s.occupied {
		labels = append(labels, label)
	}
	return labels, nil
}

func (s *fakeShowService) ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error {
	for _, seat := range seats {
		delete(s.occupied, seat)
	}
	return nil
}

func (s *fakeShowService) InvalidateSeatCache(ctx context.Context, showID uuid.UUID) {
	s.invalidated++
}

func (s *fakeShowService) ShowPrice(ctx context.Context, showID uuid.UUID) (float64, error) {
	if s.showErr != nil {
		return 0, s.showErr
	}
	return s.price, nil
}

// fakeUserRepo holds a single known user.
type fakeUserRepo struct {
	user *users.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, users.ErrNotFound
	}
	return r.user, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, u *users.User) error {
	r.user = u
	return nil
}

// fakeGateway answers order calls from canned values.
type fakeGateway struct {
	link        string
	createErr   error
	status      *payments.OrderStatus
	statusErr   error
	createCalls int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req payments.OrderRequest) (*payments.OrderResult, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &payments.OrderResult{Kind: payments.ResultDirectLink, Link: g.link}, nil
}

func (g *fakeGateway) GetOrderStatus(ctx context.Context, orderID string) (*payments.OrderStatus, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	status := *g.status
	status.OrderID = orderID
	return &status, nil
}

func (g *fakeGateway) PaymentLink(result *payments.OrderResult) (string, error) {
	return result.Link, nil
}

// recordingNotifier captures published lifecycle events.
type recordingNotifier struct {
	created []uuid.UUID
	paid    []uuid.UUID
	failed  []uuid.UUID
	refunds []uuid.UUID
}

func (n *recordingNotifier) PublishBookingCreated(ctx context.Context, b *Booking) {
	n.created = append(n.created, b.ID)
}

func (n *recordingNotifier) PublishBookingPaid(ctx context.Context, b *Booking, source string) {
	n.paid = append(n.paid, b.ID)
}

func (n *recordingNotifier) PublishBookingFailed(ctx context.Context, b *Booking, reason string) {
	n.failed = append(n.failed, b.ID)
}

func (n *recordingNotifier) PublishRefundRequired(ctx context.Context, b *Booking, reason string) {
	n.refunds = append(n.refunds, b.ID)
}
