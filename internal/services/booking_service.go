package services

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "railway/internal/config"
	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/repositories"
	"railway/internal/utils"
)

// pnrAttempts bounds regeneration when a PNR collides with the unique index.
const pnrAttempts = 3

// BookingService drives one atomic transaction per booking request, single
// passenger or mother+children family.
type BookingService struct {
	DB        *sql.DB
	Limits    domain.Limits
	RequestID string
	Berths    repositories.BerthRepo
	Tickets   repositories.TicketRepo
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) limits() domain.Limits {
	if s.Limits.TotalConfirmedBerths == 0 {
		return domain.DefaultLimits()
	}
	return s.Limits
}

type bookingPerson struct {
	Name              string
	Age               int
	Gender            string
	WomanWithChildren bool
}

// Book validates the request, then runs the whole allocation under a single
// SERIALIZABLE transaction. On any failure nothing is persisted.
func (s BookingService) Book(ctx context.Context, req models.BookingRequest) ([]models.TicketRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to open booking transaction", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	counts, err := s.Berths.CountsForUpdate(tx)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to read capacity snapshot", Err: err}
	}
	engine := AllocationEngine{Berths: s.Berths, Limits: s.limits()}

	var records []models.TicketRecord
	if req.IsMotherWithChildren {
		records, err = s.bookFamily(tx, engine, counts, req)
	} else {
		var rec models.TicketRecord
		rec, err = s.bookOne(tx, engine, counts, bookingPerson{Name: req.Name, Age: req.Age, Gender: req.Gender}, nil)
		records = []models.TicketRecord{rec}
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.InternalError{Msg: "failed to commit booking", Err: err}
	}
	committed = true

	utils.LogEvent(s.RequestID, "booking", "book", fmt.Sprintf("tickets=%d status=%s", len(records), records[0].Status))
	return records, nil
}

// bookOne creates passenger and ticket rows for one person. A pre-reserved
// berth (family bookings) skips the allocation ladder; young children skip
// berth handling entirely.
func (s BookingService) bookOne(tx *sql.Tx, engine AllocationEngine, counts models.BerthCounts, p bookingPerson, pre *models.Berth) (models.TicketRecord, error) {
	if p.Age < s.limits().ChildAgeLimit {
		return s.bookChild(tx, p)
	}

	var alloc Allocation
	if pre != nil {
		alloc = Allocation{Status: domain.TicketConfirmed, Berth: pre}
	} else {
		var err error
		alloc, err = engine.Allocate(tx, counts, PassengerProfile{Age: p.Age, Gender: p.Gender, WomanWithChildren: p.WomanWithChildren})
		if err != nil {
			return models.TicketRecord{}, err
		}
	}

	passengerID, err := s.Tickets.InsertPassenger(tx, p.Name, p.Age, p.Gender)
	if err != nil {
		return models.TicketRecord{}, domain.InternalError{Msg: "failed to create passenger", Err: err}
	}

	var berthID *int64
	if alloc.Berth != nil {
		berthID = &alloc.Berth.ID
	}
	ticketID, pnr, err := s.insertTicketWithPNR(tx, alloc.Status, domain.TicketAdult, passengerID, berthID)
	if err != nil {
		return models.TicketRecord{}, err
	}

	// Guarded transition for berths we found AVAILABLE. Zero rows affected
	// means a concurrent request won the berth after our scan.
	if alloc.Berth != nil && alloc.Berth.Status == domain.BerthAvailable {
		to := domain.BerthConfirmed
		if alloc.Status == domain.TicketRAC {
			to = domain.BerthRAC
		}
		ok, err := s.Berths.UpdateStatusFrom(tx, alloc.Berth.ID, domain.BerthAvailable, to)
		if err != nil {
			return models.TicketRecord{}, domain.InternalError{Msg: "failed to claim berth", Err: err}
		}
		if !ok {
			return models.TicketRecord{}, domain.ConflictError{Resource: "berth", Msg: "berth was taken by another request"}
		}
	}

	rec := models.TicketRecord{
		TicketID: ticketID,
		PNR:      pnr,
		Status:   alloc.Status,
		Passenger: models.PassengerEcho{
			Name:   p.Name,
			Age:    p.Age,
			Gender: p.Gender,
			Type:   domain.TicketAdult,
		},
	}
	if alloc.Berth != nil {
		rec.Berth = &models.BerthRef{Number: alloc.Berth.BerthNumber, Type: alloc.Berth.BerthType}
	}
	return rec, nil
}

// bookChild creates a CONFIRMED CHILD ticket with no berth; young children
// never consume inventory.
func (s BookingService) bookChild(tx *sql.Tx, p bookingPerson) (models.TicketRecord, error) {
	passengerID, err := s.Tickets.InsertPassenger(tx, p.Name, p.Age, p.Gender)
	if err != nil {
		return models.TicketRecord{}, domain.InternalError{Msg: "failed to create passenger", Err: err}
	}
	ticketID, pnr, err := s.insertTicketWithPNR(tx, domain.TicketConfirmed, domain.TicketChild, passengerID, nil)
	if err != nil {
		return models.TicketRecord{}, err
	}
	return models.TicketRecord{
		TicketID: ticketID,
		PNR:      pnr,
		Status:   domain.TicketConfirmed,
		Passenger: models.PassengerEcho{
			Name:   p.Name,
			Age:    p.Age,
			Gender: p.Gender,
			Type:   domain.TicketChild,
		},
	}, nil
}

// bookFamily pre-reserves one regular berth for the mother and each child
// old enough to hold one, then books everybody against the reserved set.
// Any shortfall aborts the whole transaction; no partial family persists.
func (s BookingService) bookFamily(tx *sql.Tx, engine AllocationEngine, counts models.BerthCounts, req models.BookingRequest) ([]models.TicketRecord, error) {
	limits := s.limits()

	hasYoungChild := false
	need := 1 // the mother
	for _, c := range req.Children {
		if c.Age < limits.ChildAgeLimit {
			hasYoungChild = true
		} else {
			need++
		}
	}

	avail, err := s.Berths.CountAvailableRegular(tx)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to count free berths", Err: err}
	}
	if avail < need {
		return nil, domain.ConflictError{Resource: "berth", Msg: "not enough berths available for the entire family"}
	}

	reserved := make([]*models.Berth, 0, need)
	ids := make([]int64, 0, need)
	for i := 0; i < need; i++ {
		b, err := s.Berths.ReserveNextRegular(tx, ids)
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to reserve family berths", Err: err}
		}
		if b == nil {
			return nil, domain.ConflictError{Resource: "berth", Msg: "failed to allocate required berths"}
		}
		reserved = append(reserved, b)
		ids = append(ids, b.ID)
	}

	records := make([]models.TicketRecord, 0, len(req.Children)+1)
	mother, err := s.bookOne(tx, engine, counts, bookingPerson{
		Name:              req.Name,
		Age:               req.Age,
		Gender:            req.Gender,
		WomanWithChildren: hasYoungChild,
	}, reserved[0])
	if err != nil {
		return nil, err
	}
	records = append(records, mother)

	next := 1
	for _, c := range req.Children {
		var pre *models.Berth
		if c.Age >= limits.ChildAgeLimit {
			pre = reserved[next]
			next++
		}
		rec, err := s.bookOne(tx, engine, counts, bookingPerson{Name: c.Name, Age: c.Age, Gender: c.Gender}, pre)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s BookingService) insertTicketWithPNR(tx *sql.Tx, status domain.TicketStatus, ticketType domain.TicketType, passengerID int64, berthID *int64) (int64, string, error) {
	for i := 0; i < pnrAttempts; i++ {
		pnr := GeneratePNR()
		id, err := s.Tickets.InsertTicket(tx, pnr, status, ticketType, passengerID, berthID)
		if err == nil {
			return id, pnr, nil
		}
		if !repositories.IsDuplicateKey(err) {
			return 0, "", domain.InternalError{Msg: "failed to create ticket", Err: err}
		}
	}
	return 0, "", domain.ConflictError{Resource: "pnr", Msg: "could not generate a unique PNR, please retry"}
}
