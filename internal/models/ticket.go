package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the lifecycle state of an SOS ticket.
type TicketStatus string

const (
	StatusPending    TicketStatus = "Pending"
	StatusInProgress TicketStatus = "In Progress"
	StatusDone       TicketStatus = "Done"
	StatusCancelled  TicketStatus = "Cancelled"
)

// Statuses lists every known ticket status.
var Statuses = []TicketStatus{StatusPending, StatusInProgress, StatusDone, StatusCancelled}

// Valid reports whether s is one of the four known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Open reports whether the ticket still needs a response.
// Done and Cancelled are both closed.
func (s TicketStatus) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

// ParseStatus accepts canonical names plus snake/lower-case spellings.
func ParseStatus(raw string) (TicketStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	switch key {
	case "pending":
		return StatusPending, true
	case "in progress":
		return StatusInProgress, true
	case "done", "completed":
		return StatusDone, true
	case "cancelled", "canceled":
		return StatusCancelled, true
	}
	return "", false
}

// Category is the reported need. Unrecognised values are kept verbatim.
type Category string

const (
	CategoryRescue    Category = "Needs Rescue"
	CategoryMedical   Category = "Medical"
	CategoryFoodWater Category = "Food/Water"
	CategoryShelter   Category = "Shelter"
)

// Categories lists the canonical categories.
var Categories = []Category{CategoryRescue, CategoryMedical, CategoryFoodWater, CategoryShelter}

var categoryAliases = map[string]Category{
	"needs rescue":      CategoryRescue,
	"rescue":            CategoryRescue,
	"medical":           CategoryMedical,
	"medical emergency": CategoryMedical,
	"food/water":        CategoryFoodWater,
	"food & water":      CategoryFoodWater,
	"food":              CategoryFoodWater,
	"water":             CategoryFoodWater,
	"shelter":           CategoryShelter,
}

// NormalizeCategory maps known spellings onto the canonical category and
// returns anything else trimmed but otherwise unchanged.
func NormalizeCategory(raw string) Category {
	trimmed := strings.TrimSpace(raw)
	if c, ok := categoryAliases[strings.ToLower(trimmed)]; ok {
		return c
	}
	return Category(trimmed)
}

// Known reports whether c is canonical.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Region is a longitude bucket.
type Region string

const (
	RegionWestern  Region = "Western Maharashtra"
	RegionCentral  Region = "Central Maharashtra"
	RegionVidarbha Region = "Vidarbha"
	RegionUnknown  Region = "Unknown"
)

// Regions is the fixed display order for regional rows.
var Regions = []Region{RegionWestern, RegionCentral, RegionVidarbha, RegionUnknown}

// ParseRegion accepts the full region name or its short form.
func ParseRegion(raw string) (Region, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "western", "western maharashtra":
		return RegionWestern, true
	case "central", "central maharashtra":
		return RegionCentral, true
	case "vidarbha":
		return RegionVidarbha, true
	case "unknown":
		return RegionUnknown, true
	}
	return "", false
}

// Ticket is a triaged SOS report.
type Ticket struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	ExternalID string       `json:"external_id" db:"external_id"`
	Status     TicketStatus `json:"status" db:"status"`
	Priority   int          `json:"priority" db:"priority"`
	People     int          `json:"people" db:"people"`
	Latitude   float64      `json:"latitude" db:"latitude"`
	Longitude  float64      `json:"longitude" db:"longitude"`
	Region     Region       `json:"region" db:"region"`
	Category   Category     `json:"category" db:"category"`
	Text       string       `json:"text" db:"text"`
	Place      string       `json:"place" db:"place"`
	AssignedTo *string      `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes      *string      `json:"notes,omitempty" db:"notes"`
	ReportedAt *time.Time   `json:"reported_at,omitempty" db:"reported_at"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// RawReport is an incoming report as delivered by the ingestion workflow.
// Coordinates and ids may arrive as numbers or strings.
type RawReport struct {
	ID        any    `json:"id"`
	Status    string `json:"status"`
	People    int    `json:"people"`
	Lon       any    `json:"lon"`
	Lat       any    `json:"lat"`
	Text      string `json:"text"`
	Place     string `json:"place"`
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
}

// TicketPatch carries the mutable ticket fields. Nil means unchanged.
type TicketPatch struct {
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
	AssignedTo *string `json:"assigned_to"`
	UpdatedBy  string  `json:"-"`
}

// TicketUpdate is one history row recorded per changed field.
type TicketUpdate struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TicketID   uuid.UUID `json:"ticket_id" db:"ticket_id"`
	UpdatedBy  string    `json:"updated_by" db:"updated_by"`
	FieldName  string    `json:"field_name" db:"field_name"`
	OldValue   string    `json:"old_value" db:"old_value"`
	NewValue   string    `json:"new_value" db:"new_value"`
	Notes      string    `json:"notes,omitempty" db:"notes"`
	UpdateTime time.Time `json:"update_time" db:"update_time"`
}

// MapPoint is the reduced ticket shape used by map views.
type MapPoint struct {
	ID        uuid.UUID    `json:"id"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Status    TicketStatus `json:"status"`
	Priority  int          `json:"priority"`
	Category  Category     `json:"category"`
	People    int          `json:"people"`
	Place     string       `json:"place"`
}

// Point returns the map view of t.
func (t Ticket) Point() MapPoint {
	return MapPoint{
		ID:        t.ID,
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
		Status:    t.Status,
		Priority:  t.Priority,
		Category:  t.Category,
		People:    t.People,
		Place:     t.Place,
	}
}
