package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/filter"
	"github.com/terminal-bench/reliefops/internal/models"
)

// ResourceService manages shelters and hospitals.
type ResourceService interface {
	CreateShelter(ctx context.Context, s models.Shelter) (*models.Shelter, error)
	GetShelter(ctx context.Context, id uuid.UUID) (*models.Shelter, error)
	UpdateShelter(ctx context.Context, id uuid.UUID, patch models.ShelterPatch) (*models.Shelter, error)
	ListShelters(ctx context.Context, c filter.ShelterCriteria) ([]models.Shelter, error)
	NearbyShelters(ctx context.Context, q filter.NearbyQuery) ([]filter.NearbyShelter, error)
	DeleteShelter(ctx context.Context, id uuid.UUID) error

	CreateHospital(ctx context.Context, h models.Hospital) (*models.Hospital, error)
	GetHospital(ctx context.Context, id uuid.UUID) (*models.Hospital, error)
	UpdateHospital(ctx context.Context, id uuid.UUID, patch models.HospitalPatch) (*models.Hospital, error)
	ListHospitals(ctx context.Context, c filter.HospitalCriteria) ([]models.Hospital, error)
	NearbyHospitals(ctx context.Context, q filter.NearbyQuery) ([]filter.NearbyHospital, error)
	DeleteHospital(ctx context.Context, id uuid.UUID) error
}

// ResourceHandler handles shelter and hospital requests
type ResourceHandler struct {
	resources ResourceService
	dashboard DashboardService
	logger    *logrus.Logger
}

func NewResourceHandler(resources ResourceService, dash DashboardService, logger *logrus.Logger) *ResourceHandler {
	return &ResourceHandler{resources: resources, dashboard: dash, logger: logger}
}

func (h *ResourceHandler) CreateShelter(c *gin.Context) {
	var req CreateShelterRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.resources.CreateShelter(c.Request.Context(), req.toModel())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ResourceHandler) GetShelter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	s, err := h.resources.GetShelter(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ResourceHandler) UpdateShelter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch models.ShelterPatch
	if !bindJSON(c, &patch) {
		return
	}
	s, err := h.resources.UpdateShelter(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteShelter removes a shelter.
func (h *ResourceHandler) DeleteShelter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.resources.DeleteShelter(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListShelters filters by type, status, region and has_capacity.
func (h *ResourceHandler) ListShelters(c *gin.Context) {
	region, err := filter.ParseRegionFilter(c.Query("region"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status, err := filter.ParseShelterStatusFilter(c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	hasCapacity, err := queryBool(c, "has_capacity")
	if err != nil {
		badQuery(c, err)
		return
	}
	shelters, err := h.resources.ListShelters(c.Request.Context(), filter.ShelterCriteria{
		Type:        c.Query("type"),
		Status:      status,
		Region:      region,
		HasCapacity: hasCapacity,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelters": shelters, "count": len(shelters)})
}

func (h *ResourceHandler) NearbyShelters(c *gin.Context) {
	q, ok := h.nearbyQuery(c)
	if !ok {
		return
	}
	shelters, err := h.resources.NearbyShelters(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelters": shelters, "count": len(shelters)})
}

func (h *ResourceHandler) ShelterOverview(c *gin.Context) {
	o, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o.Shelters)
}

func (h *ResourceHandler) CreateHospital(c *gin.Context) {
	var req CreateHospitalRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.resources.CreateHospital(c.Request.Context(), req.toModel())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ResourceHandler) GetHospital(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	hosp, err := h.resources.GetHospital(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, hosp)
}

func (h *ResourceHandler) UpdateHospital(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch models.HospitalPatch
	if !bindJSON(c, &patch) {
		return
	}
	hosp, err := h.resources.UpdateHospital(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, hosp)
}

// DeleteHospital removes a hospital.
func (h *ResourceHandler) DeleteHospital(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.resources.DeleteHospital(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListHospitals filters by region and has_beds.
func (h *ResourceHandler) ListHospitals(c *gin.Context) {
	region, err := filter.ParseRegionFilter(c.Query("region"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	hasBeds, err := queryBool(c, "has_beds")
	if err != nil {
		badQuery(c, err)
		return
	}
	hospitals, err := h.resources.ListHospitals(c.Request.Context(), filter.HospitalCriteria{
		Region:  region,
		HasBeds: hasBeds,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hospitals": hospitals, "count": len(hospitals)})
}

func (h *ResourceHandler) NearbyHospitals(c *gin.Context) {
	q, ok := h.nearbyQuery(c)
	if !ok {
		return
	}
	hospitals, err := h.resources.NearbyHospitals(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hospitals": hospitals, "count": len(hospitals)})
}

func (h *ResourceHandler) HospitalOverview(c *gin.Context) {
	o, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o.Hospitals)
}

func (h *ResourceHandler) nearbyQuery(c *gin.Context) (filter.NearbyQuery, bool) {
	var (
		q   filter.NearbyQuery
		err error
	)
	if q.Latitude, err = queryFloat(c, "latitude"); err != nil {
		badQuery(c, err)
		return q, false
	}
	if q.Longitude, err = queryFloat(c, "longitude"); err != nil {
		badQuery(c, err)
		return q, false
	}
	if q.RadiusKm, err = queryOptionalFloat(c, "radius_km"); err != nil {
		badQuery(c, err)
		return q, false
	}
	if q.Limit, err = queryInt(c, "limit", filter.DefaultNearbyLimit); err != nil {
		badQuery(c, err)
		return q, false
	}
	return q, true
}
