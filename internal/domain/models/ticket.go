package models

import (
	"database/sql"
	"time"

	"railway/internal/domain"
)

// Passenger is one person row; every child in a family booking gets one.
type Passenger struct {
	ID     int64
	Name   string
	Age    int
	Gender string
}

// Ticket is the reservation row owning a passenger and, when CONFIRMED or
// RAC, a berth reference.
type Ticket struct {
	ID          int64
	PNR         string
	Status      domain.TicketStatus
	TicketType  domain.TicketType
	PassengerID int64
	BerthID     sql.NullInt64
	CreatedAt   time.Time
}

// CancellableTicket is the locked view read at the start of a cancellation.
type CancellableTicket struct {
	ID         int64
	Status     domain.TicketStatus
	TicketType domain.TicketType
	BerthID    sql.NullInt64
	BerthType  sql.NullString
}

// PromotionCandidate is the oldest RAC or WAITING ticket picked for
// promotion after a cancellation.
type PromotionCandidate struct {
	ID      int64
	BerthID sql.NullInt64
}

// BerthRef is the berth echo embedded in booking responses.
type BerthRef struct {
	Number int              `json:"number"`
	Type   domain.BerthType `json:"type"`
}

// PassengerEcho repeats the passenger data on a booking response.
type PassengerEcho struct {
	Name   string            `json:"name"`
	Age    int               `json:"age"`
	Gender string            `json:"gender"`
	Type   domain.TicketType `json:"type"`
}

// TicketRecord is one booked ticket as returned to the caller.
type TicketRecord struct {
	TicketID  int64               `json:"ticket_id"`
	PNR       string              `json:"pnr"`
	Status    domain.TicketStatus `json:"status"`
	Berth     *BerthRef           `json:"berth"`
	Passenger PassengerEcho       `json:"passenger"`
}

// BookedTicket is one row of the booked-ticket listing with the derived
// priority category.
type BookedTicket struct {
	ID               int64                   `json:"id"`
	PNR              string                  `json:"pnr_number"`
	Status           domain.TicketStatus     `json:"status"`
	TicketType       domain.TicketType       `json:"ticket_type"`
	CreatedAt        time.Time               `json:"created_at"`
	PassengerName    string                  `json:"passenger_name"`
	PassengerAge     int                     `json:"passenger_age"`
	PassengerGender  string                  `json:"passenger_gender"`
	BerthNumber      *int                    `json:"berth_number"`
	BerthType        *string                 `json:"berth_type"`
	PriorityCategory domain.PriorityCategory `json:"priority_category"`
}

// ETicketData carries everything the PDF generator needs for one ticket.
type ETicketData struct {
	TicketID        int64
	PNR             string
	Status          domain.TicketStatus
	TicketType      domain.TicketType
	PassengerName   string
	PassengerAge    int
	PassengerGender string
	BerthNumber     *int
	BerthType       *string
	BookedAt        time.Time
}
