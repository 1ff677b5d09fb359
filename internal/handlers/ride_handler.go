package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/models"
	"taxiline/internal/patch"
	"taxiline/internal/services"
	"taxiline/internal/utils"
	"taxiline/pkg/logger"
	"taxiline/pkg/ws"
)

type RideHandler struct {
	rides *services.RideService
	hub   *ws.Hub
	log   *logger.Logger
}

func NewRideHandler(rides *services.RideService, hub *ws.Hub, log *logger.Logger) *RideHandler {
	return &RideHandler{
		rides: rides,
		hub:   hub,
		log:   log,
	}
}

// RideSaveRequest is the wire shape for ride create/update. Rate is a pointer
// so an explicitly supplied rating can be told apart from an omitted one.
type RideSaveRequest struct {
	User          primitive.ObjectID `json:"user"`
	Driver        primitive.ObjectID `json:"driver"`
	Src           *models.GeoPoint   `json:"src"`
	Des           []models.GeoPoint  `json:"des"`
	Loc           *models.GeoPoint   `json:"loc"`
	Distance      *float64           `json:"distance"`
	Date          *time.Time         `json:"date"`
	ArrivedAt     *time.Time         `json:"arrived_at"`
	StartAt       *time.Time         `json:"start_at"`
	FinishedAt    *time.Time         `json:"finished_at"`
	Duration      *float64           `json:"duration"`
	Cost          *float64           `json:"cost"`
	PaymentMethod string             `json:"payment_method"`
	Rate          *float64           `json:"rate"`
	Description   string             `json:"description"`
	Status        string             `json:"status"`
	Subscribers   []string           `json:"subscribers"`
}

// apply copies the supplied parts of the request onto the ride and reports
// whether the caller touched the rating.
func (r *RideSaveRequest) apply(ride *models.Ride) bool {
	if !r.User.IsZero() {
		ride.User = r.User
	}
	if !r.Driver.IsZero() {
		ride.Driver = r.Driver
	}
	if r.Src != nil {
		ride.Src = *r.Src
	}
	if r.Des != nil {
		ride.Des = r.Des
	}
	if r.Loc != nil {
		ride.Loc = *r.Loc
	}
	if r.Distance != nil {
		ride.Distance = *r.Distance
	}
	if r.Date != nil {
		ride.Date = *r.Date
	}
	if r.ArrivedAt != nil {
		ride.ArrivedAt = r.ArrivedAt
	}
	if r.StartAt != nil {
		ride.StartAt = r.StartAt
	}
	if r.FinishedAt != nil {
		ride.FinishedAt = r.FinishedAt
	}
	if r.Duration != nil {
		ride.Duration = *r.Duration
	}
	if r.Cost != nil {
		ride.Cost = *r.Cost
	}
	if r.PaymentMethod != "" {
		ride.PaymentMethod = r.PaymentMethod
	}
	if r.Description != "" {
		ride.Description = r.Description
	}
	if r.Status != "" {
		ride.Status = r.Status
	}
	if r.Subscribers != nil {
		ride.Subscribers = r.Subscribers
	}

	if r.Rate != nil {
		ride.Rate = *r.Rate
		return true
	}
	return false
}

// Index lists rides through the listing engine.
func (h *RideHandler) Index(c *gin.Context) {
	result, err := h.rides.List(c.Request.Context(), parseListingParams(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Create opens a new ride.
func (h *RideHandler) Create(c *gin.Context) {
	var req RideSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	ride := &models.Ride{}
	rateTouched := req.apply(ride)

	created, err := h.rides.Create(c.Request.Context(), ride, rateTouched)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Show returns a single ride.
func (h *RideHandler) Show(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	ride, err := h.rides.Show(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ride)
}

// Update saves changes to an existing ride through the lifecycle hook.
func (h *RideHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	var req RideSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	ride, err := h.rides.Show(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	rateTouched := req.apply(ride)

	saved, err := h.rides.Save(c.Request.Context(), ride, rateTouched)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// Patch applies field-level edits to a ride.
func (h *RideHandler) Patch(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	var ops []patch.Operation
	if err := c.ShouldBindJSON(&ops); err != nil {
		utils.BadRequestResponse(c, "Invalid patch document")
		return
	}

	ride, err := h.rides.Patch(c.Request.Context(), id, ops)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ride)
}

// UpdateLocation moves the ride's live location and notifies subscribers.
func (h *RideHandler) UpdateLocation(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	var loc models.GeoPoint
	if err := c.ShouldBindJSON(&loc); err != nil {
		utils.BadRequestResponse(c, "Invalid location")
		return
	}

	ride, err := h.rides.UpdateLocation(c.Request.Context(), id, loc)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ride)
}

// Settle marks a ride settled.
// restriction: admin
func (h *RideHandler) Settle(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	ride, err := h.rides.Settle(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ride)
}

// Destroy deletes a ride.
// restriction: admin
func (h *RideHandler) Destroy(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	if err := h.rides.Destroy(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	utils.NoContentResponse(c)
}

// Subscribe upgrades the connection and registers it for live ride updates
// under the caller's subscriber key.
func (h *RideHandler) Subscribe(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		utils.BadRequestResponse(c, "Subscriber key required")
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, key); err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
	}
}
