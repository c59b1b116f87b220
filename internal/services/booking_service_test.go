package services

import (
	"context"
	"testing"

	"railway/internal/domain"
	"railway/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newBookingService(t *testing.T) (BookingService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := BookingService{DB: db, Limits: domain.DefaultLimits(), RequestID: "test"}
	return svc, mock, func() { db.Close() }
}

func expectCapacitySnapshot(mock sqlmock.Sqlmock, c models.BerthCounts) {
	mock.ExpectQuery("confirmed_available").
		WillReturnRows(sqlmock.NewRows([]string{"confirmed_available", "rac_available", "confirmed_count"}).
			AddRow(c.ConfirmedAvailable, c.RACAvailable, c.Confirmed))
	mock.ExpectQuery("rac_count").
		WillReturnRows(sqlmock.NewRows([]string{"rac_count", "waiting_count"}).
			AddRow(c.RACTickets, c.Waiting))
}

func berthRows(id int64, number int, berthType, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "berth_number", "berth_type", "status"}).
		AddRow(id, number, berthType, status)
}

func noBerthRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "berth_number", "berth_type", "status"})
}

func TestBookSeniorTakesLowerBerth(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{ConfirmedAvailable: 53, Confirmed: 10})
	mock.ExpectQuery("berth_type = 'LOWER'").
		WillReturnRows(berthRows(5, 1, "LOWER", "AVAILABLE"))
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("UPDATE berths SET status").
		WithArgs("CONFIRMED", int64(5), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	records, err := svc.Book(context.Background(), models.BookingRequest{Name: "Raghav Iyer", Age: 66, Gender: "M"})
	if err != nil {
		t.Fatalf("book error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Status != domain.TicketConfirmed {
		t.Errorf("status = %s, want CONFIRMED", rec.Status)
	}
	if rec.Berth == nil || rec.Berth.Type != domain.BerthLower || rec.Berth.Number != 1 {
		t.Errorf("berth = %+v, want lower berth 1", rec.Berth)
	}
	if rec.TicketID != 21 || len(rec.PNR) != 6 {
		t.Errorf("ticket_id=%d pnr=%q", rec.TicketID, rec.PNR)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookAdultTakesGeneralPool(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{ConfirmedAvailable: 50, Confirmed: 13})
	// Non-priority passengers never scan the lower-berth pool.
	mock.ExpectQuery("CASE berth_type").
		WillReturnRows(berthRows(14, 2, "MIDDLE", "AVAILABLE"))
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectExec("UPDATE berths SET status").
		WithArgs("CONFIRMED", int64(14), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	records, err := svc.Book(context.Background(), models.BookingRequest{Name: "Asha Rao", Age: 30, Gender: "F"})
	if err != nil {
		t.Fatalf("book error: %v", err)
	}
	if records[0].Berth == nil || records[0].Berth.Type != domain.BerthMiddle {
		t.Errorf("berth = %+v, want middle berth", records[0].Berth)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookFallsBackToRAC(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{Confirmed: 63, RACTickets: 4})
	// No shared SIDE_LOWER berth below the sharing limit, so a fresh one
	// gets converted.
	mock.ExpectQuery("HAVING COUNT").WithArgs(2).WillReturnRows(noBerthRows())
	mock.ExpectQuery("berth_type = 'SIDE_LOWER'").
		WillReturnRows(berthRows(70, 8, "SIDE_LOWER", "AVAILABLE"))
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(23, 1))
	mock.ExpectExec("UPDATE berths SET status").
		WithArgs("RAC", int64(70), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	records, err := svc.Book(context.Background(), models.BookingRequest{Name: "Vikram Shah", Age: 40, Gender: "M"})
	if err != nil {
		t.Fatalf("book error: %v", err)
	}
	if records[0].Status != domain.TicketRAC {
		t.Errorf("status = %s, want RAC", records[0].Status)
	}
	if records[0].Berth == nil || records[0].Berth.Type != domain.BerthSideLower {
		t.Errorf("berth = %+v, want side-lower berth", records[0].Berth)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookFallsBackToWaitingList(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{Confirmed: 63, RACTickets: 18, Waiting: 3})
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(24, 1))
	mock.ExpectCommit()

	records, err := svc.Book(context.Background(), models.BookingRequest{Name: "Nisha Gupta", Age: 28, Gender: "F"})
	if err != nil {
		t.Fatalf("book error: %v", err)
	}
	if records[0].Status != domain.TicketWaiting {
		t.Errorf("status = %s, want WAITING", records[0].Status)
	}
	if records[0].Berth != nil {
		t.Errorf("waiting ticket must not carry a berth, got %+v", records[0].Berth)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookRejectsWhenCapacityExhausted(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{Confirmed: 63, RACTickets: 18, Waiting: 10})
	mock.ExpectRollback()

	_, err := svc.Book(context.Background(), models.BookingRequest{Name: "Kiran Patel", Age: 35, Gender: "M"})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookRollsBackOnBerthRace(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{ConfirmedAvailable: 50, Confirmed: 13})
	mock.ExpectQuery("CASE berth_type").
		WillReturnRows(berthRows(14, 2, "MIDDLE", "AVAILABLE"))
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(22, 1))
	// Zero rows affected: another transaction claimed the berth first.
	mock.ExpectExec("UPDATE berths SET status").
		WithArgs("CONFIRMED", int64(14), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Book(context.Background(), models.BookingRequest{Name: "Asha Rao", Age: 30, Gender: "F"})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookRetriesOnPNRCollision(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{ConfirmedAvailable: 50, Confirmed: 13})
	mock.ExpectQuery("CASE berth_type").
		WillReturnRows(berthRows(14, 2, "MIDDLE", "AVAILABLE"))
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectExec("UPDATE berths SET status").
		WithArgs("CONFIRMED", int64(14), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	records, err := svc.Book(context.Background(), models.BookingRequest{Name: "Asha Rao", Age: 30, Gender: "F"})
	if err != nil {
		t.Fatalf("book error: %v", err)
	}
	if records[0].TicketID != 22 {
		t.Errorf("ticket_id = %d, want 22", records[0].TicketID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookFamilyReservesBerthsUpFront(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	req := models.BookingRequest{
		Name:                 "Anita Desai",
		Age:                  32,
		Gender:               "F",
		IsMotherWithChildren: true,
		Children: []models.ChildRequest{
			{Name: "Rohan Desai", Age: 8, Gender: "M"},
			{Name: "Meera Desai", Age: 3, Gender: "F"},
		},
	}

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{ConfirmedAvailable: 40, Confirmed: 23})
	// Mother plus the 8-year-old need berths; the 3-year-old travels free.
	mock.ExpectQuery("available_regular").
		WillReturnRows(sqlmock.NewRows([]string{"available_regular"}).AddRow(40))
	mock.ExpectQuery("NOT IN").WillReturnRows(berthRows(1, 1, "LOWER", "AVAILABLE"))
	mock.ExpectQuery("NOT IN").WillReturnRows(berthRows(4, 4, "LOWER", "AVAILABLE"))

	// Mother.
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(40, 1))
	mock.ExpectExec("UPDATE berths SET status").
		WithArgs("CONFIRMED", int64(1), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Older child.
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectExec("UPDATE berths SET status").
		WithArgs("CONFIRMED", int64(4), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Young child: ticket only, no berth.
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(32, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	records, err := svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("book error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Berth == nil || records[0].Berth.Number != 1 {
		t.Errorf("mother berth = %+v, want berth 1", records[0].Berth)
	}
	if records[1].Berth == nil || records[1].Berth.Number != 4 {
		t.Errorf("older child berth = %+v, want berth 4", records[1].Berth)
	}
	last := records[2]
	if last.Berth != nil || last.Status != domain.TicketConfirmed || last.Passenger.Type != domain.TicketChild {
		t.Errorf("young child record = %+v, want berth-less confirmed CHILD", last)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookFamilyRejectsPartialAvailability(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	req := models.BookingRequest{
		Name:                 "Anita Desai",
		Age:                  32,
		Gender:               "F",
		IsMotherWithChildren: true,
		Children: []models.ChildRequest{
			{Name: "Rohan Desai", Age: 8, Gender: "M"},
		},
	}

	mock.ExpectBegin()
	expectCapacitySnapshot(mock, models.BerthCounts{ConfirmedAvailable: 1, Confirmed: 62})
	mock.ExpectQuery("available_regular").
		WillReturnRows(sqlmock.NewRows([]string{"available_regular"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Book(context.Background(), req)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookRejectsInvalidRequest(t *testing.T) {
	svc, mock, done := newBookingService(t)
	defer done()

	_, err := svc.Book(context.Background(), models.BookingRequest{Name: "Asha Rao", Age: 30, Gender: "X"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected DB activity: %v", err)
	}
}
