// Package resources manages shelters and hospitals.
package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/filter"
	"github.com/terminal-bench/reliefops/internal/models"
)

var (
	ErrShelterNotFound  = errors.New("shelter not found")
	ErrHospitalNotFound = errors.New("hospital not found")
)

// ShelterStore persists shelters.
type ShelterStore interface {
	Create(ctx context.Context, s *models.Shelter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shelter, error)
	List(ctx context.Context) ([]models.Shelter, error)
	Update(ctx context.Context, s *models.Shelter) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// HospitalStore persists hospitals.
type HospitalStore interface {
	Create(ctx context.Context, h *models.Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hospital, error)
	List(ctx context.Context) ([]models.Hospital, error)
	Update(ctx context.Context, h *models.Hospital) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Invalidator drops derived views after a write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service validates and stores resource records.
type Service struct {
	shelters   ShelterStore
	hospitals  HospitalStore
	invalidate Invalidator
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService creates a resource service. inv may be nil.
func NewService(shelters ShelterStore, hospitals HospitalStore, inv Invalidator, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		shelters:   shelters,
		hospitals:  hospitals,
		invalidate: inv,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateShelter rejects shelters whose occupancy exceeds capacity or whose
// status is unknown. An empty status means Available.
func (s *Service) CreateShelter(ctx context.Context, sh models.Shelter) (*models.Shelter, error) {
	sh.Name = strings.TrimSpace(sh.Name)
	if sh.Status == "" {
		sh.Status = models.ShelterAvailable
	}
	canonicalStatus(&sh)
	if err := sh.Validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sh.ID = uuid.New()
	sh.CreatedAt, sh.UpdatedAt = now, now

	if err := s.shelters.Create(ctx, &sh); err != nil {
		return nil, fmt.Errorf("failed to create shelter: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"shelter_id": sh.ID.String(), "capacity": sh.Capacity}).Info("shelter created")
	s.afterWrite(ctx)
	return &sh, nil
}

func (s *Service) GetShelter(ctx context.Context, id uuid.UUID) (*models.Shelter, error) {
	sh, err := s.shelters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, ErrShelterNotFound
	}
	return sh, nil
}

// UpdateShelter applies patch and re-validates. Status is stored in its
// canonical form and never derived from occupancy.
func (s *Service) UpdateShelter(ctx context.Context, id uuid.UUID, patch models.ShelterPatch) (*models.Shelter, error) {
	sh, err := s.GetShelter(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(sh)
	canonicalStatus(sh)
	if err := sh.Validate(); err != nil {
		return nil, err
	}
	sh.UpdatedAt = s.now().UTC()
	if err := s.shelters.Update(ctx, sh); err != nil {
		return nil, fmt.Errorf("failed to update shelter: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"shelter_id": sh.ID.String(),
		"occupancy":  sh.CurrentOccupancy,
		"capacity":   sh.Capacity,
	}).Info("shelter updated")
	s.afterWrite(ctx)
	return sh, nil
}

// DeleteShelter removes a shelter record.
func (s *Service) DeleteShelter(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetShelter(ctx, id); err != nil {
		return err
	}
	if err := s.shelters.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shelter: %w", err)
	}
	s.logger.WithField("shelter_id", id.String()).Info("shelter deleted")
	s.afterWrite(ctx)
	return nil
}

func (s *Service) ListShelters(ctx context.Context, c filter.ShelterCriteria) ([]models.Shelter, error) {
	all, err := s.shelters.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Shelters(all, c), nil
}

func (s *Service) NearbyShelters(ctx context.Context, q filter.NearbyQuery) ([]filter.NearbyShelter, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	all, err := s.shelters.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.NearbyShelters(all, q), nil
}

// CreateHospital rejects available counts above the totals.
func (s *Service) CreateHospital(ctx context.Context, h models.Hospital) (*models.Hospital, error) {
	h.Name = strings.TrimSpace(h.Name)
	if err := h.Validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	h.ID = uuid.New()
	h.CreatedAt, h.UpdatedAt = now, now

	if err := s.hospitals.Create(ctx, &h); err != nil {
		return nil, fmt.Errorf("failed to create hospital: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"hospital_id": h.ID.String(), "total_beds": h.TotalBeds}).Info("hospital created")
	s.afterWrite(ctx)
	return &h, nil
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*models.Hospital, error) {
	h, err := s.hospitals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHospitalNotFound
	}
	return h, nil
}

func (s *Service) UpdateHospital(ctx context.Context, id uuid.UUID, patch models.HospitalPatch) (*models.Hospital, error) {
	h, err := s.GetHospital(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(h)
	if err := h.Validate(); err != nil {
		return nil, err
	}
	h.UpdatedAt = s.now().UTC()
	if err := s.hospitals.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to update hospital: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"hospital_id":    h.ID.String(),
		"available_beds": h.AvailableBeds,
	}).Info("hospital updated")
	s.afterWrite(ctx)
	return h, nil
}

// DeleteHospital removes a hospital record.
func (s *Service) DeleteHospital(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetHospital(ctx, id); err != nil {
		return err
	}
	if err := s.hospitals.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete hospital: %w", err)
	}
	s.logger.WithField("hospital_id", id.String()).Info("hospital deleted")
	s.afterWrite(ctx)
	return nil
}

func (s *Service) ListHospitals(ctx context.Context, c filter.HospitalCriteria) ([]models.Hospital, error) {
	all, err := s.hospitals.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Hospitals(all, c), nil
}

func (s *Service) NearbyHospitals(ctx context.Context, q filter.NearbyQuery) ([]filter.NearbyHospital, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	all, err := s.hospitals.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.NearbyHospitals(all, q), nil
}

func canonicalStatus(sh *models.Shelter) {
	if status, ok := models.ParseShelterStatus(sh.Status); ok {
		sh.Status = status
	}
}

func (s *Service) afterWrite(ctx context.Context) {
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx)
	}
}
