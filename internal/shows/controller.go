package shows

import (
	"errors"
	"net/http"

	"quickshow/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListShows handles GET /api/show/all
func (c *Controller) ListShows(ctx *gin.Context) {
	shows, err := c.service.ListShows(ctx.Request.Context())
	if err != nil {
		response.Fail(ctx, http.StatusInternalServerError, "Failed to load shows")
		return
	}
	response.OK(ctx, http.StatusOK, "", gin.H{"shows": shows})
}

// GetShow handles GET /api/show/:id
func (c *Controller) GetShow(ctx *gin.Context) {
	showID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Invalid show ID")
		return
	}

	show, err := c.service.GetShow(ctx.Request.Context(), showID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Fail(ctx, http.StatusNotFound, "Show not found")
			return
		}
		response.Fail(ctx, http.StatusInternalServerError, "Failed to load show")
		return
	}
	response.OK(ctx, http.StatusOK, "", gin.H{"show": show})
}

// AddShow handles POST /api/show/add (admin)
func (c *Controller) AddShow(ctx *gin.Context) {
	var req AddShowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	show, err := c.service.AddShow(ctx.Request.Context(), req)
	if err != nil {
		response.Fail(ctx, http.StatusInternalServerError, "Failed to add show")
		return
	}
	response.OK(ctx, http.StatusCreated, "Show added successfully", gin.H{"show": show})
}

// ReleaseSeats handles POST /api/show/:id/release-seats (admin). Support
// uses it to free seats after resolving a refund-flagged booking.
func (c *Controller) ReleaseSeats(ctx *gin.Context) {
	showID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Invalid show ID")
		return
	}

	var req ReleaseSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.service.ReleaseSeats(ctx.Request.Context(), showID, req.Seats); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Fail(ctx, http.StatusNotFound, "Show not found")
			return
		}
		response.Fail(ctx, http.StatusInternalServerError, "Failed to release seats")
		return
	}
	response.OK(ctx, http.StatusOK, "Seats released successfully", nil)
}
