package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/models"
	"github.com/terminal-bench/reliefops/internal/services/notification"
)

const (
	defaultRecentLimit = 10
	defaultFeedLimit   = 20
)

// AlertFeed lists recently raised critical alerts.
type AlertFeed interface {
	Recent(ctx context.Context, limit int) ([]notification.Alert, error)
}

// DashboardHandler handles dashboard requests
type DashboardHandler struct {
	dashboard DashboardService
	feed      AlertFeed
	logger    *logrus.Logger
}

func NewDashboardHandler(dash DashboardService, feed AlertFeed, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dash, feed: feed, logger: logger}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Regions(c *gin.Context) {
	regions, err := h.dashboard.Regions(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, regions)
}

func (h *DashboardHandler) RecentActivity(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultRecentLimit)
	if err != nil {
		badQuery(c, err)
		return
	}
	recent, err := h.dashboard.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recent_sos": recent})
}

// CriticalAlerts returns the lists named in include, or all of them.
func (h *DashboardHandler) CriticalAlerts(c *gin.Context) {
	kinds, err := parseAlertKinds(c.Query("include"))
	if err != nil {
		badQuery(c, err)
		return
	}
	alerts, err := h.dashboard.Alerts(c.Request.Context(), kinds...)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *DashboardHandler) ResourceOverview(c *gin.Context) {
	o, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *DashboardHandler) AlertFeed(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultFeedLimit)
	if err != nil {
		badQuery(c, err)
		return
	}
	alerts, err := h.feed.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func parseAlertKinds(raw string) ([]models.AlertKind, error) {
	var kinds []models.AlertKind
	for _, part := range strings.Split(raw, ",") {
		p := strings.ToLower(strings.TrimSpace(part))
		if p == "" {
			continue
		}
		kind := models.AlertKind(p)
		known := false
		for _, k := range models.AlertKinds {
			if k == kind {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown alert kind %q", part)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
