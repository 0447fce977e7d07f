package bookings

import (
	"errors"
	"net/http"
	"strings"

	"quickshow/internal/payments"
	"quickshow/internal/shared/middleware"
	"quickshow/internal/shared/utils/response"
	"quickshow/internal/shows"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service    Service
	reconciler *Reconciler
	shows      shows.Service
	validate   *validator.Validate
}

func NewController(service Service, reconciler *Reconciler, showService shows.Service) *Controller {
	return &Controller{
		service:    service,
		reconciler: reconciler,
		shows:      showService,
		validate:   validator.New(),
	}
}

// CreateBooking handles POST /api/booking/create
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Fail(ctx, http.StatusUnauthorized, "Authentication required")
		return
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		response.Fail(ctx, http.StatusUnauthorized, "Invalid user identity")
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.validate.Struct(req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	result, err := c.service.CreateBooking(ctx.Request.Context(), uid, req)
	if err != nil {
		c.writeBookingError(ctx, err)
		return
	}

	response.OK(ctx, http.StatusCreated, "Booking created", gin.H{
		"paymentLink":   result.PaymentLink,
		"tempBookingId": result.TempBookingID,
	})
}

// GetOccupiedSeats handles GET /api/booking/seats/:showId
func (c *Controller) GetOccupiedSeats(ctx *gin.Context) {
	showID, err := uuid.Parse(ctx.Param("showId"))
	if err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Invalid show ID")
		return
	}

	labels, err := c.shows.OccupiedSeatLabels(ctx.Request.Context(), showID)
	if err != nil {
		if errors.Is(err, shows.ErrNotFound) {
			response.Fail(ctx, http.StatusNotFound, "Show not found")
			return
		}
		response.Fail(ctx, http.StatusInternalServerError, "Failed to load occupied seats")
		return
	}
	response.OK(ctx, http.StatusOK, "", gin.H{"occupiedSeats": labels})
}

// HandleWebhook handles POST /api/booking/webhook and /api/booking/callback.
// Gateway connectivity probes are acknowledged without touching state;
// everything else goes through the reconciler.
func (c *Controller) HandleWebhook(ctx *gin.Context) {
	if isGatewayProbe(ctx.Request) {
		response.OK(ctx, http.StatusOK, "Webhook received successfully", nil)
		return
	}

	var payload WebhookPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	// Probe payloads carry synthetic order ids; acknowledge them so the
	// gateway's delivery test passes.
	if payload.OrderID == "" || strings.Contains(strings.ToLower(payload.OrderID), "test") {
		response.OK(ctx, http.StatusOK, "Webhook received successfully", nil)
		return
	}

	booking, err := c.reconciler.HandleWebhook(ctx.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			// Permanent condition: answer with a structured failure so the
			// gateway stops retrying delivery.
			response.Fail(ctx, http.StatusNotFound, "Booking not found")
			return
		}
		response.Fail(ctx, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	response.OK(ctx, http.StatusOK, "Webhook processed", gin.H{"booking": snapshot(booking)})
}

// VerifyOrder handles GET /api/booking/verify/:orderId
func (c *Controller) VerifyOrder(ctx *gin.Context) {
	booking, err := c.reconciler.VerifyOrder(ctx.Request.Context(), ctx.Param("orderId"))
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			response.Fail(ctx, http.StatusNotFound, "Booking not found")
			return
		}
		if errors.Is(err, payments.ErrGateway) {
			response.Fail(ctx, http.StatusBadGateway, "Payment gateway error. Please try again.")
			return
		}
		response.Fail(ctx, http.StatusInternalServerError, "Verification failed")
		return
	}
	response.OK(ctx, http.StatusOK, "", gin.H{"booking": snapshot(booking)})
}

// ForceVerifyBooking handles GET /api/booking/verify-booking/:bookingId (admin)
func (c *Controller) ForceVerifyBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := c.reconciler.ForceVerify(ctx.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			response.Fail(ctx, http.StatusNotFound, "Booking not found")
			return
		}
		response.Fail(ctx, http.StatusInternalServerError, "Force verification failed")
		return
	}
	response.OK(ctx, http.StatusOK, "Booking verified", gin.H{"booking": snapshot(booking)})
}

// GetMyBookings handles GET /api/booking/my
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Fail(ctx, http.StatusUnauthorized, "Authentication required")
		return
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		response.Fail(ctx, http.StatusUnauthorized, "Invalid user identity")
		return
	}

	bookings, err := c.service.GetUserBookings(ctx.Request.Context(), uid)
	if err != nil {
		response.Fail(ctx, http.StatusInternalServerError, "Failed to load bookings")
		return
	}
	response.OK(ctx, http.StatusOK, "", gin.H{"bookings": bookings})
}

func (c *Controller) writeBookingError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSeatsUnavailable):
		response.Fail(ctx, http.StatusConflict, "Selected seats are no longer available")
	case errors.Is(err, ErrUserNotFound):
		response.Fail(ctx, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrShowNotFound):
		response.Fail(ctx, http.StatusNotFound, "Show not found")
	case errors.Is(err, ErrInvalidAmount):
		response.Fail(ctx, http.StatusBadRequest, "Invalid booking amount")
	case errors.Is(err, payments.ErrGateway):
		response.Fail(ctx, http.StatusBadGateway, "Payment gateway error. Please try again.")
	default:
		response.Fail(ctx, http.StatusInternalServerError, "Failed to create booking")
	}
}

// isGatewayProbe detects the gateway's connectivity test: a marker header
// or its own user agent, with no real transaction payload semantics.
func isGatewayProbe(req *http.Request) bool {
	if strings.EqualFold(req.Header.Get("x-webhook-source"), "cashfree") {
		return req.ContentLength == 0
	}
	return req.ContentLength == 0 && strings.Contains(strings.ToLower(req.UserAgent()), "cashfree")
}
