package services

import (
	"database/sql"

	intconfig "railway/internal/config"
	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/repositories"
)

// InventoryService assembles the lock-free read models: booked-ticket
// listing and availability summary.
type InventoryService struct {
	DB     *sql.DB
	Limits domain.Limits
}

func (s InventoryService) repo() repositories.InventoryRepo {
	db := s.DB
	if db == nil {
		db = intconfig.DB
	}
	return repositories.InventoryRepo{DB: db}
}

func (s InventoryService) limits() domain.Limits {
	if s.Limits.TotalConfirmedBerths == 0 {
		return domain.DefaultLimits()
	}
	return s.Limits
}

// BookedTickets returns all non-cancelled tickets with their derived
// priority category.
func (s InventoryService) BookedTickets() ([]models.BookedTicket, error) {
	l := s.limits()
	out, err := s.repo().BookedTickets(l.SeniorCitizenAge, l.ChildAgeLimit)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list booked tickets", Err: err}
	}
	return out, nil
}

// Availability returns the capacity summary plus the snapshot of free and
// partially-filled berths.
func (s InventoryService) Availability() (models.Availability, error) {
	l := s.limits()
	repo := s.repo()

	c, err := repo.Counts()
	if err != nil {
		return models.Availability{}, domain.InternalError{Msg: "failed to read availability counts", Err: err}
	}
	berths, err := repo.AvailableBerths()
	if err != nil {
		return models.Availability{}, domain.InternalError{Msg: "failed to list available berths", Err: err}
	}

	totalRACBerths := 0
	if l.RACSharingLimit > 0 {
		totalRACBerths = l.TotalRACTickets / l.RACSharingLimit
	}

	return models.Availability{
		Summary: models.AvailabilitySummary{
			RegularBerthsAvailable: c.RegularAvailable,
			RACBerthsAvailable:     c.SideLowerAvailable,
			RACBerthsInUse:         c.RACBerthsInUse,
			WaitingListTickets:     c.WaitingTickets,
			RegularBerthsBooked:    c.ConfirmedBerths,
			RACTicketsBooked:       c.RACTickets,
			RACTicketsRemaining:    l.TotalRACTickets - c.RACTickets,
			WaitingListRemaining:   l.MaxWaitingList - c.WaitingTickets,
			TotalRegularBerths:     l.TotalConfirmedBerths,
			TotalRACBerths:         totalRACBerths,
		},
		AvailableBerths: berths,
	}, nil
}
