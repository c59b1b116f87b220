package services

import (
	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/repositories"

	"github.com/google/uuid"
)

// PassengerProfile is the allocation input for one berth-consuming adult.
type PassengerProfile struct {
	Age               int
	Gender            string
	WomanWithChildren bool
}

// Allocation is the engine's verdict: a ticket status plus the locked berth
// backing it (nil for WAITING). Berth.Status tells the caller whether a
// guarded AVAILABLE transition is still pending.
type Allocation struct {
	Status domain.TicketStatus
	Berth  *models.Berth
}

// AllocationEngine decides which berth, if any, a passenger receives. All
// candidate reads lock the selected row; the caller owns the transaction.
type AllocationEngine struct {
	Berths repositories.BerthRepo
	Limits domain.Limits
}

// Allocate walks the tiers: regular berth (with the lower-berth priority
// rule), then RAC on a SIDE_LOWER berth, then the waiting list, and finally
// a capacity-exhausted conflict.
func (e AllocationEngine) Allocate(q repositories.Queryer, counts models.BerthCounts, p PassengerProfile) (Allocation, error) {
	if counts.Confirmed < e.Limits.TotalConfirmedBerths {
		if p.Age >= e.Limits.SeniorCitizenAge || p.WomanWithChildren {
			b, err := e.Berths.FirstAvailableLower(q)
			if err != nil {
				return Allocation{}, domain.InternalError{Msg: "failed to scan lower berths", Err: err}
			}
			if b != nil {
				return Allocation{Status: domain.TicketConfirmed, Berth: b}, nil
			}
		}
		b, err := e.Berths.NextAvailableRegular(q)
		if err != nil {
			return Allocation{}, domain.InternalError{Msg: "failed to scan regular berths", Err: err}
		}
		if b == nil {
			return Allocation{}, domain.ConflictError{Resource: "berth", Msg: "no berths available"}
		}
		return Allocation{Status: domain.TicketConfirmed, Berth: b}, nil
	}

	if counts.RACTickets < e.Limits.TotalRACTickets {
		b, err := e.AcquireRACBerth(q)
		if err != nil {
			return Allocation{}, err
		}
		if b != nil {
			return Allocation{Status: domain.TicketRAC, Berth: b}, nil
		}
	}

	if counts.Waiting < e.Limits.MaxWaitingList {
		return Allocation{Status: domain.TicketWaiting}, nil
	}
	return Allocation{}, domain.ConflictError{Resource: "ticket", Msg: "no tickets available"}
}

// AcquireRACBerth finds a RAC slot: a SIDE_LOWER berth already shared below
// the sharing limit first, else a free SIDE_LOWER berth to convert. Returns
// nil when neither exists. The same rule serves initial booking and
// waiting-list promotion.
func (e AllocationEngine) AcquireRACBerth(q repositories.Queryer) (*models.Berth, error) {
	b, err := e.Berths.PartiallyFilledRACBerth(q, e.Limits.RACSharingLimit)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to scan shared RAC berths", Err: err}
	}
	if b != nil {
		return b, nil
	}
	b, err = e.Berths.FirstAvailableSideLower(q)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to scan side-lower berths", Err: err}
	}
	return b, nil
}

const pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePNR derives a 6-character reference from fresh UUID bytes.
// Uniqueness is enforced by the tickets.pnr_number index, not here.
func GeneratePNR() string {
	u := uuid.New()
	b := make([]byte, 6)
	for i := range b {
		b[i] = pnrAlphabet[int(u[i])%len(pnrAlphabet)]
	}
	return string(b)
}
