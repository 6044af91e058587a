package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/filter"
	"github.com/terminal-bench/reliefops/internal/models"
	"github.com/terminal-bench/reliefops/internal/services/resources"
	"github.com/terminal-bench/reliefops/internal/services/tickets"
	"github.com/terminal-bench/reliefops/internal/triage"
	"github.com/terminal-bench/reliefops/pkg/geo"
)

var badRequest = []error{
	tickets.ErrInvalidStatus,
	filter.ErrUnknownStatus,
	filter.ErrUnknownRegion,
	filter.ErrBadPriority,
	filter.ErrBadPage,
	geo.ErrInvalidBounds,
	models.ErrInvalidCapacity,
	models.ErrNegativeOccupancy,
	models.ErrOccupancyExceedsCapacity,
	models.ErrNegativeBeds,
	models.ErrAvailableBedsExceedTotal,
	models.ErrAvailableICUExceedsTotal,
	models.ErrInvalidCoordinates,
	models.ErrMissingName,
	models.ErrUnknownShelterStatus,
}

var notFound = []error{
	tickets.ErrTicketNotFound,
	resources.ErrShelterNotFound,
	resources.ErrHospitalNotFound,
}

// respondError maps service errors to status codes. Unexpected errors are
// logged and reported without detail.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *triage.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, gin.H{"error": target.Error()})
			return
		}
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
