package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/terminal-bench/reliefops/internal/models"
	"github.com/terminal-bench/reliefops/internal/triage"
	"github.com/terminal-bench/reliefops/pkg/geo"
)

const (
	DefaultNearbyRadiusKm = 10.0
	DefaultNearbyLimit    = 10
	MaxNearbyLimit        = 50
)

// ShelterCriteria selects shelters. Type compares case-insensitively and
// Status by canonical form.
type ShelterCriteria struct {
	Type        string
	Status      string
	Region      models.Region
	HasCapacity *bool
}

// HospitalCriteria selects hospitals.
type HospitalCriteria struct {
	Region  models.Region
	HasBeds *bool
}

// ParseRegionFilter turns an optional region query into a Region.
func ParseRegionFilter(raw string) (models.Region, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	r, ok := models.ParseRegion(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, raw)
	}
	return r, nil
}

// ParseShelterStatusFilter turns an optional status query into its
// canonical spelling.
func ParseShelterStatusFilter(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	status, ok := models.ParseShelterStatus(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownShelterStatus, raw)
	}
	return status, nil
}

func (c ShelterCriteria) Match(s models.Shelter) bool {
	if c.Type != "" && !strings.EqualFold(s.Type, c.Type) {
		return false
	}
	if c.Status != "" && !sameShelterStatus(s.Status, c.Status) {
		return false
	}
	if c.Region != "" && triage.RegionOf(s.Longitude) != c.Region {
		return false
	}
	if c.HasCapacity != nil && (s.Available() > 0) != *c.HasCapacity {
		return false
	}
	return true
}

func sameShelterStatus(stored, want string) bool {
	a, okA := models.ParseShelterStatus(stored)
	b, okB := models.ParseShelterStatus(want)
	return okA && okB && a == b
}

func (c HospitalCriteria) Match(h models.Hospital) bool {
	if c.Region != "" && triage.RegionOf(h.Longitude) != c.Region {
		return false
	}
	if c.HasBeds != nil && (h.AvailableBeds > 0) != *c.HasBeds {
		return false
	}
	return true
}

// Shelters returns matching shelters ordered by name.
func Shelters(shelters []models.Shelter, c ShelterCriteria) []models.Shelter {
	out := make([]models.Shelter, 0)
	for _, s := range shelters {
		if c.Match(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Hospitals returns matching hospitals ordered by name.
func Hospitals(hospitals []models.Hospital, c HospitalCriteria) []models.Hospital {
	out := make([]models.Hospital, 0)
	for _, h := range hospitals {
		if c.Match(h) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NearbyQuery locates resources around a point.
type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}

// Normalize fills defaults and caps the limit.
func (q NearbyQuery) Normalize() (NearbyQuery, error) {
	if q.Latitude < -90 || q.Latitude > 90 || q.Longitude < -180 || q.Longitude > 180 {
		return q, models.ErrInvalidCoordinates
	}
	if q.RadiusKm <= 0 {
		q.RadiusKm = DefaultNearbyRadiusKm
	}
	if q.Limit <= 0 {
		q.Limit = DefaultNearbyLimit
	}
	if q.Limit > MaxNearbyLimit {
		q.Limit = MaxNearbyLimit
	}
	return q, nil
}

// NearbyShelter is a shelter with its distance from the query point.
type NearbyShelter struct {
	models.Shelter
	DistanceKm float64 `json:"distance_km"`
}

// NearbyHospital is a hospital with its distance from the query point.
type NearbyHospital struct {
	models.Hospital
	DistanceKm float64 `json:"distance_km"`
}

// NearbyShelters returns shelters within q.RadiusKm, closest first.
func NearbyShelters(shelters []models.Shelter, q NearbyQuery) []NearbyShelter {
	hits := nearest(len(shelters), func(i int) (float64, float64) {
		return shelters[i].Latitude, shelters[i].Longitude
	}, q)
	out := make([]NearbyShelter, 0, len(hits))
	for _, h := range hits {
		out = append(out, NearbyShelter{Shelter: shelters[h.index], DistanceKm: h.km})
	}
	return out
}

// NearbyHospitals returns hospitals within q.RadiusKm, closest first.
func NearbyHospitals(hospitals []models.Hospital, q NearbyQuery) []NearbyHospital {
	hits := nearest(len(hospitals), func(i int) (float64, float64) {
		return hospitals[i].Latitude, hospitals[i].Longitude
	}, q)
	out := make([]NearbyHospital, 0, len(hits))
	for _, h := range hits {
		out = append(out, NearbyHospital{Hospital: hospitals[h.index], DistanceKm: h.km})
	}
	return out
}

type hit struct {
	index int
	km    float64
}

func nearest(n int, pos func(int) (float64, float64), q NearbyQuery) []hit {
	var hits []hit
	for i := 0; i < n; i++ {
		lat, lon := pos(i)
		km := geo.DistanceKm(q.Latitude, q.Longitude, lat, lon)
		if km <= q.RadiusKm {
			hits = append(hits, hit{index: i, km: roundKm(km)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].km < hits[j].km })
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits
}

func roundKm(km float64) float64 {
	return float64(int64(km*100+0.5)) / 100
}
