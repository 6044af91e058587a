package handlers

import (
	"github.com/terminal-bench/reliefops/internal/models"
)

// CreateShelterRequest is the body of POST /shelters. An empty status means
// Available; any casing of a known status is accepted.
type CreateShelterRequest struct {
	Name             string  `json:"name" binding:"required"`
	Address          string  `json:"address"`
	Latitude         float64 `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude        float64 `json:"longitude" binding:"gte=-180,lte=180"`
	Type             string  `json:"type"`
	Capacity         int     `json:"capacity" binding:"required,gt=0"`
	CurrentOccupancy int     `json:"current_occupancy" binding:"gte=0,ltefield=Capacity"`
	Status           string  `json:"status"`
	ContactPerson    string  `json:"contact_person"`
	ContactPhone     string  `json:"contact_phone"`
}

func (r CreateShelterRequest) toModel() models.Shelter {
	return models.Shelter{
		Name:             r.Name,
		Address:          r.Address,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Type:             r.Type,
		Capacity:         r.Capacity,
		CurrentOccupancy: r.CurrentOccupancy,
		Status:           r.Status,
		ContactPerson:    r.ContactPerson,
		ContactPhone:     r.ContactPhone,
	}
}

// CreateHospitalRequest is the body of POST /hospitals.
type CreateHospitalRequest struct {
	Name          string  `json:"name" binding:"required"`
	Address       string  `json:"address"`
	Latitude      float64 `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude     float64 `json:"longitude" binding:"gte=-180,lte=180"`
	TotalBeds     int     `json:"total_beds" binding:"gte=0"`
	AvailableBeds int     `json:"available_beds" binding:"gte=0,ltefield=TotalBeds"`
	ICUBeds       int     `json:"icu_beds" binding:"gte=0"`
	AvailableICU  int     `json:"available_icu" binding:"gte=0,ltefield=ICUBeds"`
	ContactPhone  string  `json:"contact_phone"`
}

func (r CreateHospitalRequest) toModel() models.Hospital {
	return models.Hospital{
		Name:          r.Name,
		Address:       r.Address,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		TotalBeds:     r.TotalBeds,
		AvailableBeds: r.AvailableBeds,
		ICUBeds:       r.ICUBeds,
		AvailableICU:  r.AvailableICU,
		ContactPhone:  r.ContactPhone,
	}
}
