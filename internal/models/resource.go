package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Shelter statuses. Status is set by operators and never derived from occupancy.
const (
	ShelterAvailable = "Available"
	ShelterActive    = "Active"
	ShelterFull      = "Full"
	ShelterInactive  = "Inactive"
)

// ShelterStatuses lists the canonical shelter statuses.
var ShelterStatuses = []string{ShelterAvailable, ShelterActive, ShelterFull, ShelterInactive}

// ParseShelterStatus maps any casing of a known status to its canonical form.
func ParseShelterStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "available":
		return ShelterAvailable, true
	case "active":
		return ShelterActive, true
	case "full":
		return ShelterFull, true
	case "inactive":
		return ShelterInactive, true
	}
	return "", false
}

// Shelter types.
const (
	ShelterEmergency = "Emergency"
	ShelterTemporary = "Temporary"
	ShelterRelief    = "Relief"
	ShelterPermanent = "Permanent"
)

var (
	ErrInvalidCapacity          = errors.New("capacity must be positive")
	ErrNegativeOccupancy        = errors.New("current occupancy cannot be negative")
	ErrOccupancyExceedsCapacity = errors.New("current occupancy exceeds capacity")
	ErrNegativeBeds             = errors.New("bed counts cannot be negative")
	ErrAvailableBedsExceedTotal = errors.New("available beds exceed total beds")
	ErrAvailableICUExceedsTotal = errors.New("available ICU beds exceed total ICU beds")
	ErrInvalidCoordinates       = errors.New("coordinates out of range")
	ErrMissingName              = errors.New("name is required")
	ErrUnknownShelterStatus     = errors.New("unknown shelter status")
)

// Shelter is a physical shelter resource.
type Shelter struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Address          string    `json:"address" db:"address"`
	Latitude         float64   `json:"latitude" db:"latitude"`
	Longitude        float64   `json:"longitude" db:"longitude"`
	Type             string    `json:"type" db:"type"`
	Capacity         int       `json:"capacity" db:"capacity"`
	CurrentOccupancy int       `json:"current_occupancy" db:"current_occupancy"`
	Status           string    `json:"status" db:"status"`
	ContactPerson    string    `json:"contact_person" db:"contact_person"`
	ContactPhone     string    `json:"contact_phone" db:"contact_phone"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Validate enforces shelter invariants before persistence.
func (s *Shelter) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if !validCoordinates(s.Latitude, s.Longitude) {
		return ErrInvalidCoordinates
	}
	if s.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if s.CurrentOccupancy < 0 {
		return ErrNegativeOccupancy
	}
	if s.CurrentOccupancy > s.Capacity {
		return ErrOccupancyExceedsCapacity
	}
	if status, ok := ParseShelterStatus(s.Status); !ok || status != s.Status {
		return ErrUnknownShelterStatus
	}
	return nil
}

// Inactive reports whether the shelter is closed, whatever the stored casing.
func (s Shelter) Inactive() bool {
	status, _ := ParseShelterStatus(s.Status)
	return status == ShelterInactive
}

// Available returns free places, never negative.
func (s Shelter) Available() int {
	if s.CurrentOccupancy >= s.Capacity {
		return 0
	}
	if s.CurrentOccupancy < 0 {
		return s.Capacity
	}
	return s.Capacity - s.CurrentOccupancy
}

// Hospital is a physical medical facility.
type Hospital struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Address       string    `json:"address" db:"address"`
	Latitude      float64   `json:"latitude" db:"latitude"`
	Longitude     float64   `json:"longitude" db:"longitude"`
	TotalBeds     int       `json:"total_beds" db:"total_beds"`
	AvailableBeds int       `json:"available_beds" db:"available_beds"`
	ICUBeds       int       `json:"icu_beds" db:"icu_beds"`
	AvailableICU  int       `json:"available_icu" db:"available_icu"`
	ContactPhone  string    `json:"contact_phone" db:"contact_phone"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Validate enforces hospital bed invariants before persistence.
func (h *Hospital) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrMissingName
	}
	if !validCoordinates(h.Latitude, h.Longitude) {
		return ErrInvalidCoordinates
	}
	if h.TotalBeds < 0 || h.AvailableBeds < 0 || h.ICUBeds < 0 || h.AvailableICU < 0 {
		return ErrNegativeBeds
	}
	if h.AvailableBeds > h.TotalBeds {
		return ErrAvailableBedsExceedTotal
	}
	if h.AvailableICU > h.ICUBeds {
		return ErrAvailableICUExceedsTotal
	}
	return nil
}

// ShelterPatch carries mutable shelter fields. Nil means unchanged. Binding
// tags check single fields; cross-field rules are enforced by Validate after
// Apply.
type ShelterPatch struct {
	Name             *string `json:"name" binding:"omitempty,min=1"`
	Address          *string `json:"address"`
	Type             *string `json:"type"`
	Capacity         *int    `json:"capacity" binding:"omitempty,gt=0"`
	CurrentOccupancy *int    `json:"current_occupancy" binding:"omitempty,gte=0"`
	Status           *string `json:"status"`
	ContactPerson    *string `json:"contact_person"`
	ContactPhone     *string `json:"contact_phone"`
}

// Apply copies set fields onto s.
func (p ShelterPatch) Apply(s *Shelter) {
	setString(&s.Name, p.Name)
	setString(&s.Address, p.Address)
	setString(&s.Type, p.Type)
	setString(&s.Status, p.Status)
	setString(&s.ContactPerson, p.ContactPerson)
	setString(&s.ContactPhone, p.ContactPhone)
	setInt(&s.Capacity, p.Capacity)
	setInt(&s.CurrentOccupancy, p.CurrentOccupancy)
}

// HospitalPatch carries mutable hospital fields. Nil means unchanged.
type HospitalPatch struct {
	Name          *string `json:"name" binding:"omitempty,min=1"`
	Address       *string `json:"address"`
	TotalBeds     *int    `json:"total_beds" binding:"omitempty,gte=0"`
	AvailableBeds *int    `json:"available_beds" binding:"omitempty,gte=0"`
	ICUBeds       *int    `json:"icu_beds" binding:"omitempty,gte=0"`
	AvailableICU  *int    `json:"available_icu" binding:"omitempty,gte=0"`
	ContactPhone  *string `json:"contact_phone"`
}

// Apply copies set fields onto h.
func (p HospitalPatch) Apply(h *Hospital) {
	setString(&h.Name, p.Name)
	setString(&h.Address, p.Address)
	setString(&h.ContactPhone, p.ContactPhone)
	setInt(&h.TotalBeds, p.TotalBeds)
	setInt(&h.AvailableBeds, p.AvailableBeds)
	setInt(&h.ICUBeds, p.ICUBeds)
	setInt(&h.AvailableICU, p.AvailableICU)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
