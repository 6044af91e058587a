package models

// Stats is the dashboard summary.
type Stats struct {
	TotalSOS                 int `json:"total_sos"`
	PendingSOS               int `json:"pending_sos"`
	InProgressSOS            int `json:"in_progress_sos"`
	CompletedSOS             int `json:"completed_sos"`
	CancelledSOS             int `json:"cancelled_sos"`
	TotalPeopleAffected      int `json:"total_people_affected"`
	TotalShelters            int `json:"total_shelters"`
	TotalShelterCapacity     int `json:"total_shelter_capacity"`
	AvailableShelterCapacity int `json:"available_shelter_capacity"`
	TotalHospitals           int `json:"total_hospitals"`
	TotalHospitalBeds        int `json:"total_hospital_beds"`
	AvailableHospitalBeds    int `json:"available_hospital_beds"`
}

// RegionRow groups tickets by region.
type RegionRow struct {
	Region         Region `json:"region"`
	SOSCount       int    `json:"sos_count"`
	PeopleAffected int    `json:"people_affected"`
}

// RegionCapacity summarises shelter and hospital capacity in one region.
type RegionCapacity struct {
	Region           Region  `json:"region"`
	Shelters         int     `json:"shelters"`
	ShelterCapacity  int     `json:"shelter_capacity"`
	ShelterAvailable int     `json:"shelter_available"`
	Hospitals        int     `json:"hospitals"`
	TotalBeds        int     `json:"total_beds"`
	AvailableBeds    int     `json:"available_beds"`
	BedUtilization   float64 `json:"bed_utilization"`
}

// CategoryRow groups tickets by category.
type CategoryRow struct {
	Category       Category `json:"category"`
	Count          int      `json:"count"`
	PeopleAffected int      `json:"people_affected"`
}

// AlertSet holds the three critical alert lists. A nil list was not requested.
type AlertSet struct {
	CriticalSOS     []Ticket   `json:"critical_sos"`
	FullShelters    []Shelter  `json:"full_shelters"`
	LowBedHospitals []Hospital `json:"low_bed_hospitals"`
}

// AlertKind names one AlertSet list.
type AlertKind string

const (
	AlertCriticalSOS     AlertKind = "critical_sos"
	AlertFullShelters    AlertKind = "full_shelters"
	AlertLowBedHospitals AlertKind = "low_bed_hospitals"
)

// AlertKinds lists every alert kind.
var AlertKinds = []AlertKind{AlertCriticalSOS, AlertFullShelters, AlertLowBedHospitals}

// TypeBreakdown counts shelters of one type.
type TypeBreakdown struct {
	Count         int `json:"count"`
	TotalCapacity int `json:"total_capacity"`
}

// ShelterOverview is the shelter half of the resource overview. Available
// excludes inactive shelters.
type ShelterOverview struct {
	Total            int                      `json:"total"`
	TotalCapacity    int                      `json:"total_capacity"`
	CurrentOccupancy int                      `json:"current_occupancy"`
	Available        int                      `json:"available"`
	UtilizationRate  float64                  `json:"utilization_rate"`
	ByStatus         map[string]int           `json:"by_status"`
	ByType           map[string]TypeBreakdown `json:"by_type"`
}

// HospitalOverview is the hospital half of the resource overview.
type HospitalOverview struct {
	Total              int            `json:"total"`
	TotalBeds          int            `json:"total_beds"`
	AvailableBeds      int            `json:"available_beds"`
	OccupiedBeds       int            `json:"occupied_beds"`
	ICUBeds            int            `json:"icu_beds"`
	AvailableICU       int            `json:"available_icu"`
	UtilizationRate    float64        `json:"utilization_rate"`
	ICUUtilizationRate float64        `json:"icu_utilization_rate"`
	ByRegion           map[Region]int `json:"by_region"`
}

// ResourceOverview combines shelter and hospital overviews.
type ResourceOverview struct {
	Shelters  ShelterOverview  `json:"shelters"`
	Hospitals HospitalOverview `json:"hospitals"`
}

// Snapshot is one read of the three collections the dashboard aggregates.
type Snapshot struct {
	Tickets   []Ticket
	Shelters  []Shelter
	Hospitals []Hospital
}
