package triage

import "github.com/terminal-bench/reliefops/internal/models"

// Longitude bucket edges. Each bucket includes its lower edge and excludes its
// upper edge, except that eastLimit itself belongs to Vidarbha.
const (
	westLimit   = 72.0
	westCentral = 75.0
	centralEast = 78.0
	eastLimit   = 81.0
)

// RegionOf maps a longitude onto a region. NaN and infinities are Unknown.
func RegionOf(longitude float64) models.Region {
	switch {
	case longitude >= westLimit && longitude < westCentral:
		return models.RegionWestern
	case longitude >= westCentral && longitude < centralEast:
		return models.RegionCentral
	case longitude >= centralEast && longitude <= eastLimit:
		return models.RegionVidarbha
	default:
		return models.RegionUnknown
	}
}
