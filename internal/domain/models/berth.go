package models

import "railway/internal/domain"

// Berth is one sleeping-resource row.
type Berth struct {
	ID          int64
	BerthNumber int
	BerthType   domain.BerthType
	Status      domain.BerthStatus
}

// BerthCounts is the locked capacity snapshot taken before every allocation.
type BerthCounts struct {
	ConfirmedAvailable int // AVAILABLE berths excluding SIDE_LOWER
	RACAvailable       int // AVAILABLE SIDE_LOWER berths
	Confirmed          int // berths in CONFIRMED status
	RACTickets         int // active RAC tickets
	Waiting            int // active WAITING tickets
}

// AvailableBerth is one row of the availability snapshot. RAC occupancy is
// only reported for SIDE_LOWER berths.
type AvailableBerth struct {
	BerthNumber          int              `json:"berth_number"`
	BerthType            domain.BerthType `json:"berth_type"`
	CurrentRACPassengers *int             `json:"current_rac_passengers,omitempty"`
}

// AvailabilitySummary mirrors the capacity numbers exposed to clients.
type AvailabilitySummary struct {
	RegularBerthsAvailable int `json:"regular_berths_available"`
	RACBerthsAvailable     int `json:"rac_berths_available"`
	RACBerthsInUse         int `json:"rac_berths_in_use"`
	WaitingListTickets     int `json:"waiting_list_tickets"`
	RegularBerthsBooked    int `json:"regular_berths_booked"`
	RACTicketsBooked       int `json:"rac_tickets_booked"`
	RACTicketsRemaining    int `json:"rac_tickets_remaining"`
	WaitingListRemaining   int `json:"waiting_list_remaining"`
	TotalRegularBerths     int `json:"total_regular_berths"`
	TotalRACBerths         int `json:"total_rac_berths"`
}

// Availability is the full availability read-model response.
type Availability struct {
	Summary         AvailabilitySummary `json:"summary"`
	AvailableBerths []AvailableBerth    `json:"available_berths"`
}
