package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/terminal-bench/reliefops/internal/models"
)

const shelterColumns = `id, name, address, latitude, longitude, type, capacity, current_occupancy,
	status, contact_person, contact_phone, created_at, updated_at`

// ShelterRepository persists shelters.
type ShelterRepository struct {
	db *sql.DB
}

func NewShelterRepository(db *sql.DB) *ShelterRepository {
	return &ShelterRepository{db: db}
}

func scanShelter(row rowScanner) (models.Shelter, error) {
	var s models.Shelter
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Latitude, &s.Longitude, &s.Type,
		&s.Capacity, &s.CurrentOccupancy, &s.Status, &s.ContactPerson, &s.ContactPhone,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *ShelterRepository) Create(ctx context.Context, s *models.Shelter) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shelters (`+shelterColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.Name, s.Address, s.Latitude, s.Longitude, s.Type, s.Capacity,
		s.CurrentOccupancy, s.Status, s.ContactPerson, s.ContactPhone, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shelter: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the shelter does not exist.
func (r *ShelterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shelter, error) {
	s, err := scanShelter(r.db.QueryRowContext(ctx,
		`SELECT `+shelterColumns+` FROM shelters WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shelter: %w", err)
	}
	return &s, nil
}

func (r *ShelterRepository) List(ctx context.Context) ([]models.Shelter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+shelterColumns+` FROM shelters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shelters: %w", err)
	}
	defer rows.Close()

	shelters := make([]models.Shelter, 0)
	for rows.Next() {
		s, err := scanShelter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shelter: %w", err)
		}
		shelters = append(shelters, s)
	}
	return shelters, rows.Err()
}

func (r *ShelterRepository) Update(ctx context.Context, s *models.Shelter) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE shelters SET name = $1, address = $2, type = $3, capacity = $4, current_occupancy = $5,
		 status = $6, contact_person = $7, contact_phone = $8, updated_at = $9
		 WHERE id = $10`,
		s.Name, s.Address, s.Type, s.Capacity, s.CurrentOccupancy, s.Status,
		s.ContactPerson, s.ContactPhone, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shelter: %w", err)
	}
	return nil
}

// Delete removes a shelter. Deleting a missing id is not an error.
func (r *ShelterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shelters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete shelter: %w", err)
	}
	return nil
}

const hospitalColumns = `id, name, address, latitude, longitude, total_beds, available_beds,
	icu_beds, available_icu, contact_phone, created_at, updated_at`

// HospitalRepository persists hospitals.
type HospitalRepository struct {
	db *sql.DB
}

func NewHospitalRepository(db *sql.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

func scanHospital(row rowScanner) (models.Hospital, error) {
	var h models.Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.Latitude, &h.Longitude, &h.TotalBeds,
		&h.AvailableBeds, &h.ICUBeds, &h.AvailableICU, &h.ContactPhone, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (r *HospitalRepository) Create(ctx context.Context, h *models.Hospital) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO hospitals (`+hospitalColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		h.ID, h.Name, h.Address, h.Latitude, h.Longitude, h.TotalBeds, h.AvailableBeds,
		h.ICUBeds, h.AvailableICU, h.ContactPhone, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert hospital: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the hospital does not exist.
func (r *HospitalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Hospital, error) {
	h, err := scanHospital(r.db.QueryRowContext(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &h, nil
}

func (r *HospitalRepository) List(ctx context.Context) ([]models.Hospital, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+hospitalColumns+` FROM hospitals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hospitals: %w", err)
	}
	defer rows.Close()

	hospitals := make([]models.Hospital, 0)
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}

func (r *HospitalRepository) Update(ctx context.Context, h *models.Hospital) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE hospitals SET name = $1, address = $2, total_beds = $3, available_beds = $4,
		 icu_beds = $5, available_icu = $6, contact_phone = $7, updated_at = $8
		 WHERE id = $9`,
		h.Name, h.Address, h.TotalBeds, h.AvailableBeds, h.ICUBeds, h.AvailableICU,
		h.ContactPhone, h.UpdatedAt, h.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}
	return nil
}

// Delete removes a hospital. Deleting a missing id is not an error.
func (r *HospitalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM hospitals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete hospital: %w", err)
	}
	return nil
}
