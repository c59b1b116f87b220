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

// CancellationService drives one atomic transaction per cancellation: free
// the released berth, then run the best-effort promotion cascade.
type CancellationService struct {
	DB        *sql.DB
	Limits    domain.Limits
	RequestID string
	Berths    repositories.BerthRepo
	Tickets   repositories.TicketRepo
}

func (s CancellationService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s CancellationService) limits() domain.Limits {
	if s.Limits.TotalConfirmedBerths == 0 {
		return domain.DefaultLimits()
	}
	return s.Limits
}

// Cancel marks the ticket CANCELLED and reclaims its berth. Cancelling a
// CONFIRMED ticket additionally promotes at most one RAC ticket to
// CONFIRMED and one WAITING ticket to RAC, oldest first. Promotion running
// out of berths is logged, never surfaced: the cancellation still commits.
func (s CancellationService) Cancel(ctx context.Context, ticketID int64) error {
	if ticketID <= 0 {
		return domain.ValidationError{Field: "ticket_id", Msg: "must be a positive integer"}
	}

	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "failed to open cancellation transaction", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket, err := s.Tickets.GetForCancellation(tx, ticketID)
	if err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.InternalError{Msg: "failed to lock ticket", Err: err}
	}

	if err := s.Tickets.MarkCancelled(tx, ticket.ID); err != nil {
		return domain.InternalError{Msg: "failed to cancel ticket", Err: err}
	}

	if ticket.BerthID.Valid {
		switch ticket.Status {
		case domain.TicketConfirmed:
			if err := s.Berths.SetStatus(tx, ticket.BerthID.Int64, domain.BerthAvailable); err != nil {
				return domain.InternalError{Msg: "failed to free berth", Err: err}
			}
			if err := s.promoteAfterRelease(tx); err != nil {
				return err
			}
		case domain.TicketRAC:
			n, err := s.Tickets.ActiveRACCount(tx, ticket.BerthID.Int64)
			if err != nil {
				return domain.InternalError{Msg: "failed to count RAC occupancy", Err: err}
			}
			// The berth goes back to AVAILABLE only once its last RAC
			// occupant leaves.
			if n == 0 {
				if err := s.Berths.SetStatus(tx, ticket.BerthID.Int64, domain.BerthAvailable); err != nil {
					return domain.InternalError{Msg: "failed to free RAC berth", Err: err}
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "failed to commit cancellation", Err: err}
	}
	committed = true

	utils.LogEvent(s.RequestID, "cancellation", "cancel", fmt.Sprintf("ticket_id=%d prev_status=%s", ticket.ID, ticket.Status))
	return nil
}

// promoteAfterRelease runs at most one RAC promotion followed by at most
// one WAITING promotion. Capacity conflicts are swallowed after logging;
// storage failures propagate and roll the whole cancellation back.
func (s CancellationService) promoteAfterRelease(tx *sql.Tx) error {
	rac, err := s.Tickets.OldestRAC(tx)
	if err != nil {
		return domain.InternalError{Msg: "failed to scan RAC queue", Err: err}
	}
	if rac == nil {
		return nil
	}

	if err := s.promoteRAC(tx, rac); err != nil {
		if domain.IsConflict(err) {
			utils.LogEvent(s.RequestID, "cancellation", "rac_promotion_skipped", err.Error())
			return nil
		}
		return err
	}
	utils.LogEvent(s.RequestID, "cancellation", "rac_promoted", fmt.Sprintf("ticket_id=%d", rac.ID))

	waiting, err := s.Tickets.OldestWaiting(tx)
	if err != nil {
		return domain.InternalError{Msg: "failed to scan waiting queue", Err: err}
	}
	if waiting == nil {
		return nil
	}

	if err := s.promoteWaiting(tx, waiting); err != nil {
		if domain.IsConflict(err) {
			utils.LogEvent(s.RequestID, "cancellation", "waiting_promotion_skipped", err.Error())
			return nil
		}
		return err
	}
	utils.LogEvent(s.RequestID, "cancellation", "waiting_promoted", fmt.Sprintf("ticket_id=%d", waiting.ID))
	return nil
}

// promoteRAC moves the oldest RAC ticket onto the best free regular berth
// and frees its old SIDE_LOWER berth once no RAC occupant remains there.
func (s CancellationService) promoteRAC(tx *sql.Tx, rac *models.PromotionCandidate) error {
	berth, err := s.Berths.NextAvailableRegular(tx)
	if err != nil {
		return domain.InternalError{Msg: "failed to scan regular berths", Err: err}
	}
	if berth == nil {
		return domain.ConflictError{Resource: "promotion", Msg: "no berths available for RAC promotion"}
	}

	if err := s.Tickets.Promote(tx, rac.ID, domain.TicketConfirmed, berth.ID); err != nil {
		return domain.InternalError{Msg: "failed to promote RAC ticket", Err: err}
	}
	ok, err := s.Berths.UpdateStatusFrom(tx, berth.ID, domain.BerthAvailable, domain.BerthConfirmed)
	if err != nil {
		return domain.InternalError{Msg: "failed to claim promotion berth", Err: err}
	}
	if !ok {
		return domain.InternalError{Msg: "promotion berth changed status while locked"}
	}

	if rac.BerthID.Valid {
		n, err := s.Tickets.ActiveRACCount(tx, rac.BerthID.Int64)
		if err != nil {
			return domain.InternalError{Msg: "failed to count RAC occupancy", Err: err}
		}
		if n == 0 {
			if err := s.Berths.SetStatus(tx, rac.BerthID.Int64, domain.BerthAvailable); err != nil {
				return domain.InternalError{Msg: "failed to free vacated RAC berth", Err: err}
			}
		}
	}
	return nil
}

// promoteWaiting moves the oldest WAITING ticket into RAC using the same
// berth-acquisition rule as initial booking.
func (s CancellationService) promoteWaiting(tx *sql.Tx, waiting *models.PromotionCandidate) error {
	engine := AllocationEngine{Berths: s.Berths, Limits: s.limits()}
	berth, err := engine.AcquireRACBerth(tx)
	if err != nil {
		return err
	}
	if berth == nil {
		return domain.ConflictError{Resource: "promotion", Msg: "no RAC berths available for waiting list promotion"}
	}

	if berth.Status == domain.BerthAvailable {
		ok, err := s.Berths.UpdateStatusFrom(tx, berth.ID, domain.BerthAvailable, domain.BerthRAC)
		if err != nil {
			return domain.InternalError{Msg: "failed to convert berth to RAC", Err: err}
		}
		if !ok {
			return domain.InternalError{Msg: "RAC berth changed status while locked"}
		}
	}
	if err := s.Tickets.Promote(tx, waiting.ID, domain.TicketRAC, berth.ID); err != nil {
		return domain.InternalError{Msg: "failed to promote waiting ticket", Err: err}
	}
	return nil
}
