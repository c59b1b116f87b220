package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

// BerthRepo holds the berth-table queries. All locking reads must run on a
// transaction so the row locks live until commit.
type BerthRepo struct{}

// berthTypeRank orders the general allocation pool: LOWER before MIDDLE
// before UPPER, anything else last, ties broken by berth number.
const berthTypeRank = `CASE berth_type
			WHEN 'LOWER' THEN 1
			WHEN 'MIDDLE' THEN 2
			WHEN 'UPPER' THEN 3
			ELSE 4
		END`

// CountsForUpdate takes the capacity snapshot used by every allocation
// decision. Both reads lock their rows so concurrent capacity checks
// serialize on the same snapshot.
func (r BerthRepo) CountsForUpdate(q Queryer) (models.BerthCounts, error) {
	var c models.BerthCounts

	err := q.QueryRow(`
		SELECT
			COUNT(CASE WHEN status = 'AVAILABLE' AND berth_type != 'SIDE_LOWER' THEN 1 END) AS confirmed_available,
			COUNT(CASE WHEN status = 'AVAILABLE' AND berth_type = 'SIDE_LOWER' THEN 1 END) AS rac_available,
			COUNT(CASE WHEN status = 'CONFIRMED' THEN 1 END) AS confirmed_count
		FROM berths
		FOR UPDATE`).Scan(&c.ConfirmedAvailable, &c.RACAvailable, &c.Confirmed)
	if err != nil {
		return c, fmt.Errorf("berth counts: %w", err)
	}

	err = q.QueryRow(`
		SELECT
			COUNT(CASE WHEN status = 'RAC' THEN 1 END) AS rac_count,
			COUNT(CASE WHEN status = 'WAITING' THEN 1 END) AS waiting_count
		FROM tickets
		WHERE status IN ('RAC', 'WAITING')
		FOR UPDATE`).Scan(&c.RACTickets, &c.Waiting)
	if err != nil {
		return c, fmt.Errorf("ticket counts: %w", err)
	}
	return c, nil
}

// FirstAvailableLower serves the priority rule for seniors and women with
// young children. SKIP LOCKED keeps concurrent bookings from serializing on
// berth selection.
func (r BerthRepo) FirstAvailableLower(q Queryer) (*models.Berth, error) {
	return scanBerth(q.QueryRow(`
		SELECT id, berth_number, berth_type, status
		FROM berths
		WHERE status = 'AVAILABLE' AND berth_type = 'LOWER'
		ORDER BY berth_number
		LIMIT 1
		FOR UPDATE SKIP LOCKED`))
}

// NextAvailableRegular picks the general-pool berth: lowest type rank, then
// lowest number, excluding SIDE_LOWER.
func (r BerthRepo) NextAvailableRegular(q Queryer) (*models.Berth, error) {
	return scanBerth(q.QueryRow(`
		SELECT id, berth_number, berth_type, status
		FROM berths
		WHERE status = 'AVAILABLE' AND berth_type != 'SIDE_LOWER'
		ORDER BY `+berthTypeRank+`, berth_number
		LIMIT 1
		FOR UPDATE SKIP LOCKED`))
}

// PartiallyFilledRACBerth finds a SIDE_LOWER berth already in RAC status
// with room for one more shared passenger.
func (r BerthRepo) PartiallyFilledRACBerth(q Queryer, sharingLimit int) (*models.Berth, error) {
	return scanBerth(q.QueryRow(`
		SELECT b.id, b.berth_number, b.berth_type, b.status
		FROM berths b
		LEFT JOIN tickets t ON b.id = t.berth_id AND t.status = 'RAC'
		WHERE b.berth_type = 'SIDE_LOWER' AND b.status = 'RAC'
		GROUP BY b.id, b.berth_number, b.berth_type, b.status
		HAVING COUNT(t.id) < ?
		ORDER BY b.berth_number
		LIMIT 1
		FOR UPDATE`, sharingLimit))
}

// FirstAvailableSideLower finds an unused SIDE_LOWER berth to convert to RAC.
func (r BerthRepo) FirstAvailableSideLower(q Queryer) (*models.Berth, error) {
	return scanBerth(q.QueryRow(`
		SELECT id, berth_number, berth_type, status
		FROM berths
		WHERE status = 'AVAILABLE' AND berth_type = 'SIDE_LOWER'
		ORDER BY berth_number
		LIMIT 1
		FOR UPDATE`))
}

// CountAvailableRegular is the family pre-check: how many regular berths are
// still free before the one-by-one reservation loop starts.
func (r BerthRepo) CountAvailableRegular(q Queryer) (int, error) {
	var n int
	err := q.QueryRow(`
		SELECT COUNT(*) AS available_regular
		FROM berths
		WHERE status = 'AVAILABLE' AND berth_type != 'SIDE_LOWER'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count available regular: %w", err)
	}
	return n, nil
}

// ReserveNextRegular locks the best free regular berth not already reserved
// by this family booking. A blocking FOR UPDATE is deliberate here: family
// reservations must win or fail, not skip ahead.
func (r BerthRepo) ReserveNextRegular(q Queryer, excluded []int64) (*models.Berth, error) {
	if len(excluded) == 0 {
		excluded = []int64{0}
	}
	ph := make([]string, len(excluded))
	args := make([]any, len(excluded))
	for i, id := range excluded {
		ph[i] = "?"
		args[i] = id
	}
	return scanBerth(q.QueryRow(`
		SELECT id, berth_number, berth_type, status
		FROM berths
		WHERE status = 'AVAILABLE' AND berth_type != 'SIDE_LOWER'
			AND id NOT IN (`+strings.Join(ph, ", ")+`)
		ORDER BY `+berthTypeRank+`, berth_number
		LIMIT 1
		FOR UPDATE`, args...))
}

// UpdateStatusFrom applies the guarded status transition and reports whether
// the expected prior status still held. A false return means another request
// won the berth.
func (r BerthRepo) UpdateStatusFrom(q Queryer, id int64, from, to domain.BerthStatus) (bool, error) {
	res, err := q.Exec(`UPDATE berths SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("berth %d status %s->%s: %w", id, from, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetStatus updates a berth row already locked by the caller.
func (r BerthRepo) SetStatus(q Queryer, id int64, to domain.BerthStatus) error {
	if _, err := q.Exec(`UPDATE berths SET status = ? WHERE id = ?`, to, id); err != nil {
		return fmt.Errorf("berth %d status %s: %w", id, to, err)
	}
	return nil
}

func scanBerth(row *sql.Row) (*models.Berth, error) {
	var b models.Berth
	err := row.Scan(&b.ID, &b.BerthNumber, &b.BerthType, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
