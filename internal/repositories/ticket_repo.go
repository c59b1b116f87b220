package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"railway/internal/domain"
	"railway/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

// TicketRepo holds ticket and passenger table queries.
type TicketRepo struct{}

// IsDuplicateKey reports whether err is a MySQL duplicate-entry violation,
// used to detect PNR collisions against the unique index.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// InsertPassenger creates the immutable person row.
func (r TicketRepo) InsertPassenger(q Queryer, name string, age int, gender string) (int64, error) {
	res, err := q.Exec(`INSERT INTO passengers (name, age, gender) VALUES (?, ?, ?)`, name, age, gender)
	if err != nil {
		return 0, fmt.Errorf("insert passenger: %w", err)
	}
	return res.LastInsertId()
}

// InsertTicket creates the ticket row. A nil berthID stores NULL (CHILD,
// WAITING). Duplicate-key errors are returned unwrapped for collision
// detection by the caller.
func (r TicketRepo) InsertTicket(q Queryer, pnr string, status domain.TicketStatus, ticketType domain.TicketType, passengerID int64, berthID *int64) (int64, error) {
	var berth any
	if berthID != nil {
		berth = *berthID
	}
	res, err := q.Exec(
		`INSERT INTO tickets (pnr_number, status, ticket_type, passenger_id, berth_id) VALUES (?, ?, ?, ?, ?)`,
		pnr, status, ticketType, passengerID, berth,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetForCancellation locks the target ticket together with its berth.
// Cancelled tickets are invisible here, so double cancellation surfaces as
// not-found.
func (r TicketRepo) GetForCancellation(q Queryer, ticketID int64) (models.CancellableTicket, error) {
	var t models.CancellableTicket
	err := q.QueryRow(`
		SELECT t.id, t.status, t.ticket_type, t.berth_id, b.berth_type
		FROM tickets t
		LEFT JOIN berths b ON t.berth_id = b.id
		WHERE t.id = ? AND t.status != 'CANCELLED'
		FOR UPDATE`, ticketID).Scan(&t.ID, &t.Status, &t.TicketType, &t.BerthID, &t.BerthType)
	if errors.Is(err, sql.ErrNoRows) {
		return t, domain.NotFoundError{Resource: "ticket"}
	}
	if err != nil {
		return t, fmt.Errorf("lock ticket %d: %w", ticketID, err)
	}
	return t, nil
}

// MarkCancelled flips the already-locked ticket to its terminal state.
func (r TicketRepo) MarkCancelled(q Queryer, ticketID int64) error {
	if _, err := q.Exec(`UPDATE tickets SET status = 'CANCELLED' WHERE id = ?`, ticketID); err != nil {
		return fmt.Errorf("cancel ticket %d: %w", ticketID, err)
	}
	return nil
}

// OldestRAC locks the RAC ticket first in line for promotion. FIFO order is
// a best-effort created_at scan, not a persistent queue.
func (r TicketRepo) OldestRAC(q Queryer) (*models.PromotionCandidate, error) {
	return scanCandidate(q.QueryRow(`
		SELECT id, berth_id
		FROM tickets
		WHERE status = 'RAC'
		ORDER BY created_at ASC, id ASC
		LIMIT 1
		FOR UPDATE`))
}

// OldestWaiting locks the WAITING ticket first in line for promotion.
func (r TicketRepo) OldestWaiting(q Queryer) (*models.PromotionCandidate, error) {
	return scanCandidate(q.QueryRow(`
		SELECT id, berth_id
		FROM tickets
		WHERE status = 'WAITING'
		ORDER BY created_at ASC, id ASC
		LIMIT 1
		FOR UPDATE`))
}

// Promote moves a ticket to its new status and berth in one statement.
func (r TicketRepo) Promote(q Queryer, ticketID int64, status domain.TicketStatus, berthID int64) error {
	if _, err := q.Exec(`UPDATE tickets SET status = ?, berth_id = ? WHERE id = ?`, status, berthID, ticketID); err != nil {
		return fmt.Errorf("promote ticket %d to %s: %w", ticketID, status, err)
	}
	return nil
}

// ActiveRACCount counts the remaining RAC occupants of a berth.
func (r TicketRepo) ActiveRACCount(q Queryer, berthID int64) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM tickets WHERE berth_id = ? AND status = 'RAC'`, berthID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("rac occupancy of berth %d: %w", berthID, err)
	}
	return n, nil
}

func scanCandidate(row *sql.Row) (*models.PromotionCandidate, error) {
	var c models.PromotionCandidate
	err := row.Scan(&c.ID, &c.BerthID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
