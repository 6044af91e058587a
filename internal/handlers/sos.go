package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/filter"
	"github.com/terminal-bench/reliefops/internal/middleware"
	"github.com/terminal-bench/reliefops/internal/models"
	"github.com/terminal-bench/reliefops/internal/services/dashboard"
	"github.com/terminal-bench/reliefops/pkg/geo"
)

// TicketService is the ticket lifecycle used by SOSHandler.
type TicketService interface {
	Ingest(ctx context.Context, raw models.RawReport) (*models.Ticket, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	List(ctx context.Context, c filter.TicketCriteria) ([]models.Ticket, int, error)
	Map(ctx context.Context, bounds *geo.Bounds) ([]models.MapPoint, error)
	Update(ctx context.Context, id uuid.UUID, patch models.TicketPatch) (*models.Ticket, error)
	History(ctx context.Context, id uuid.UUID) ([]models.TicketUpdate, error)
}

// DashboardService serves aggregate views.
type DashboardService interface {
	Stats(ctx context.Context) (models.Stats, error)
	Regions(ctx context.Context) (dashboard.Regions, error)
	Categories(ctx context.Context) ([]models.CategoryRow, error)
	Alerts(ctx context.Context, kinds ...models.AlertKind) (models.AlertSet, error)
	Overview(ctx context.Context) (models.ResourceOverview, error)
	Recent(ctx context.Context, limit int) ([]models.Ticket, error)
}

// SOSHandler handles SOS ticket requests
type SOSHandler struct {
	tickets   TicketService
	dashboard DashboardService
	logger    *logrus.Logger
}

func NewSOSHandler(tickets TicketService, dash DashboardService, logger *logrus.Logger) *SOSHandler {
	return &SOSHandler{tickets: tickets, dashboard: dash, logger: logger}
}

// Create ingests one raw report.
func (h *SOSHandler) Create(c *gin.Context) {
	var raw models.RawReport
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	t, err := h.tickets.Ingest(c.Request.Context(), raw)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// List handles GET /sos with filters and pagination.
func (h *SOSHandler) List(c *gin.Context) {
	q := filter.TicketQuery{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Region:   c.Query("region"),
		Search:   c.Query("q"),
	}
	var err error
	if q.Priority, err = queryInt(c, "priority", 0); err != nil {
		badQuery(c, err)
		return
	}
	if q.Limit, err = queryInt(c, "limit", filter.DefaultLimit); err != nil {
		badQuery(c, err)
		return
	}
	if q.Offset, err = queryInt(c, "offset", 0); err != nil {
		badQuery(c, err)
		return
	}

	criteria, err := filter.ParseTicketQuery(q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	items, total, err := h.tickets.List(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  criteria.Limit,
		"offset": criteria.Offset,
	})
}

// Map returns open tickets as map points, optionally inside bounds.
func (h *SOSHandler) Map(c *gin.Context) {
	var bounds *geo.Bounds
	if raw := strings.TrimSpace(c.Query("bounds")); raw != "" {
		b, err := geo.ParseBounds(raw)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		bounds = &b
	}

	points, err := h.tickets.Map(c.Request.Context(), bounds)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points, "count": len(points)})
}

func (h *SOSHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.tickets.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Update applies a responder's status, notes or assignment change.
func (h *SOSHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch models.TicketPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	patch.UpdatedBy = middleware.GetResponder(c)

	t, err := h.tickets.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *SOSHandler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, err := h.tickets.Get(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	updates, err := h.tickets.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

func (h *SOSHandler) Summary(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *SOSHandler) ByCategory(c *gin.Context) {
	rows, err := h.dashboard.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": rows})
}

func (h *SOSHandler) ByRegion(c *gin.Context) {
	regions, err := h.dashboard.Regions(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions.Tickets})
}
