package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

// InventoryRepo serves the lock-free read model. Queries run straight on
// the pool and are eventually consistent with in-flight transactions.
type InventoryRepo struct {
	DB *sql.DB
}

// InventoryCounts is the raw aggregate backing the availability summary.
type InventoryCounts struct {
	RegularAvailable   int
	SideLowerAvailable int
	RACBerthsInUse     int
	ConfirmedBerths    int
	RACTickets         int
	WaitingTickets     int
}

// Counts reads the berth and ticket aggregates without locks.
func (r InventoryRepo) Counts() (InventoryCounts, error) {
	var c InventoryCounts
	err := r.DB.QueryRow(`
		SELECT
			COUNT(CASE WHEN status = 'AVAILABLE' AND berth_type != 'SIDE_LOWER' THEN 1 END) AS regular_available,
			COUNT(CASE WHEN status = 'AVAILABLE' AND berth_type = 'SIDE_LOWER' THEN 1 END) AS side_lower_available,
			COUNT(CASE WHEN status = 'RAC' THEN 1 END) AS rac_in_use,
			COUNT(CASE WHEN status = 'CONFIRMED' THEN 1 END) AS confirmed
		FROM berths`).Scan(&c.RegularAvailable, &c.SideLowerAvailable, &c.RACBerthsInUse, &c.ConfirmedBerths)
	if err != nil {
		return c, fmt.Errorf("berth aggregates: %w", err)
	}

	err = r.DB.QueryRow(`
		SELECT
			COUNT(CASE WHEN status = 'RAC' THEN 1 END) AS rac_tickets,
			COUNT(CASE WHEN status = 'WAITING' THEN 1 END) AS waiting_tickets
		FROM tickets`).Scan(&c.RACTickets, &c.WaitingTickets)
	if err != nil {
		return c, fmt.Errorf("ticket aggregates: %w", err)
	}
	return c, nil
}

// AvailableBerths lists free berths plus partially-filled SIDE_LOWER berths
// with their current RAC occupancy.
func (r InventoryRepo) AvailableBerths() ([]models.AvailableBerth, error) {
	rows, err := r.DB.Query(`
		SELECT
			berth_number,
			berth_type,
			CASE
				WHEN berth_type = 'SIDE_LOWER' THEN
					(SELECT COUNT(*) FROM tickets t WHERE t.berth_id = berths.id AND t.status = 'RAC')
				ELSE NULL
			END AS current_rac_passengers
		FROM berths
		WHERE status = 'AVAILABLE' OR (status = 'RAC' AND berth_type = 'SIDE_LOWER')
		ORDER BY ` + berthTypeRank + `, berth_number`)
	if err != nil {
		return nil, fmt.Errorf("available berths: %w", err)
	}
	defer rows.Close()

	var out []models.AvailableBerth
	for rows.Next() {
		var b models.AvailableBerth
		var occ sql.NullInt64
		if err := rows.Scan(&b.BerthNumber, &b.BerthType, &occ); err != nil {
			return nil, err
		}
		if occ.Valid {
			n := int(occ.Int64)
			b.CurrentRACPassengers = &n
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BookedTickets lists every non-cancelled ticket, newest first, with the
// derived priority category. Women-with-children detection correlates adult
// female tickets with a same-timestamp child co-booking.
func (r InventoryRepo) BookedTickets(seniorAge, childAgeLimit int) ([]models.BookedTicket, error) {
	rows, err := r.DB.Query(`
		SELECT
			t.id, t.pnr_number, t.status, t.ticket_type, t.created_at,
			p.name, p.age, p.gender,
			b.berth_number, b.berth_type,
			CASE
				WHEN p.age >= ? THEN 'SENIOR_CITIZEN'
				WHEN p.gender = 'F' AND p.age >= 18 AND EXISTS (
					SELECT 1
					FROM tickets t2
					JOIN passengers p2 ON t2.passenger_id = p2.id
					WHERE p2.age < ? AND t2.created_at = t.created_at AND t2.id != t.id
				) THEN 'WOMEN_WITH_CHILDREN'
				ELSE 'REGULAR'
			END AS priority_category
		FROM tickets t
		JOIN passengers p ON t.passenger_id = p.id
		LEFT JOIN berths b ON t.berth_id = b.id
		WHERE t.status != 'CANCELLED'
		ORDER BY t.created_at DESC, t.id DESC`, seniorAge, childAgeLimit)
	if err != nil {
		return nil, fmt.Errorf("booked tickets: %w", err)
	}
	defer rows.Close()

	var out []models.BookedTicket
	for rows.Next() {
		var t models.BookedTicket
		var num sql.NullInt64
		var typ sql.NullString
		if err := rows.Scan(
			&t.ID, &t.PNR, &t.Status, &t.TicketType, &t.CreatedAt,
			&t.PassengerName, &t.PassengerAge, &t.PassengerGender,
			&num, &typ, &t.PriorityCategory,
		); err != nil {
			return nil, err
		}
		if num.Valid {
			n := int(num.Int64)
			t.BerthNumber = &n
		}
		if typ.Valid {
			s := typ.String
			t.BerthType = &s
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ETicketData loads everything the PDF generator needs for one ticket.
func (r InventoryRepo) ETicketData(ticketID int64) (models.ETicketData, error) {
	var d models.ETicketData
	var num sql.NullInt64
	var typ sql.NullString
	err := r.DB.QueryRow(`
		SELECT
			t.id, t.pnr_number, t.status, t.ticket_type, t.created_at,
			p.name, p.age, p.gender,
			b.berth_number, b.berth_type
		FROM tickets t
		JOIN passengers p ON t.passenger_id = p.id
		LEFT JOIN berths b ON t.berth_id = b.id
		WHERE t.id = ? AND t.status != 'CANCELLED'`, ticketID).Scan(
		&d.TicketID, &d.PNR, &d.Status, &d.TicketType, &d.BookedAt,
		&d.PassengerName, &d.PassengerAge, &d.PassengerGender,
		&num, &typ,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return d, domain.NotFoundError{Resource: "ticket"}
	}
	if err != nil {
		return d, fmt.Errorf("e-ticket data for %d: %w", ticketID, err)
	}
	if num.Valid {
		n := int(num.Int64)
		d.BerthNumber = &n
	}
	if typ.Valid {
		s := typ.String
		d.BerthType = &s
	}
	return d, nil
}
