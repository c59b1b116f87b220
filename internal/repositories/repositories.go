package repositories

import "database/sql"

// Queryer is satisfied by both *sql.DB and *sql.Tx. Locking reads only make
// sense on a *sql.Tx; read-model queries run straight on the pool.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
