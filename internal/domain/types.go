package domain

// BerthType identifies the physical berth position inside the coach.
type BerthType string

const (
	BerthLower     BerthType = "LOWER"
	BerthMiddle    BerthType = "MIDDLE"
	BerthUpper     BerthType = "UPPER"
	BerthSideLower BerthType = "SIDE_LOWER"
)

// BerthStatus is the occupancy state of a berth row.
type BerthStatus string

const (
	BerthAvailable BerthStatus = "AVAILABLE"
	BerthConfirmed BerthStatus = "CONFIRMED"
	BerthRAC       BerthStatus = "RAC"
)

// TicketStatus is the reservation state of a ticket.
type TicketStatus string

const (
	TicketConfirmed TicketStatus = "CONFIRMED"
	TicketRAC       TicketStatus = "RAC"
	TicketWaiting   TicketStatus = "WAITING"
	TicketCancelled TicketStatus = "CANCELLED"
)

// TicketType separates berth-consuming adults from berth-less young children.
type TicketType string

const (
	TicketAdult TicketType = "ADULT"
	TicketChild TicketType = "CHILD"
)

// PriorityCategory is the derived category shown on booked-ticket listings.
type PriorityCategory string

const (
	PrioritySeniorCitizen     PriorityCategory = "SENIOR_CITIZEN"
	PriorityWomenWithChildren PriorityCategory = "WOMEN_WITH_CHILDREN"
	PriorityRegular           PriorityCategory = "REGULAR"
)

// Limits holds the capacity constants the allocation rules depend on.
// Values come from the environment with sensible single-coach defaults.
type Limits struct {
	TotalConfirmedBerths int
	TotalRACTickets      int
	MaxWaitingList       int
	RACSharingLimit      int
	ChildAgeLimit        int
	SeniorCitizenAge     int
}

// DefaultLimits matches a single sleeper coach: 63 regular berths plus
// 9 side-lower berths shared by up to 18 RAC passengers.
func DefaultLimits() Limits {
	return Limits{
		TotalConfirmedBerths: 63,
		TotalRACTickets:      18,
		MaxWaitingList:       10,
		RACSharingLimit:      2,
		ChildAgeLimit:        5,
		SeniorCitizenAge:     60,
	}
}

// BerthSlot is one entry of the seed layout.
type BerthSlot struct {
	Number int
	Type   BerthType
}

// DefaultBerthLayout returns the 72-berth coach layout: nine 8-berth bays,
// each with three LOWER, two MIDDLE, two UPPER and one SIDE_LOWER berth.
func DefaultBerthLayout() []BerthSlot {
	var out []BerthSlot
	for bay := 0; bay < 9; bay++ {
		base := bay * 8
		out = append(out,
			BerthSlot{base + 1, BerthLower},
			BerthSlot{base + 2, BerthMiddle},
			BerthSlot{base + 3, BerthUpper},
			BerthSlot{base + 4, BerthLower},
			BerthSlot{base + 5, BerthMiddle},
			BerthSlot{base + 6, BerthUpper},
			BerthSlot{base + 7, BerthLower},
			BerthSlot{base + 8, BerthSideLower},
		)
	}
	return out
}
