package services

import (
	"errors"
	"testing"

	"railway/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAvailabilitySummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("regular_available").
		WillReturnRows(sqlmock.NewRows([]string{"regular_available", "side_lower_available", "rac_in_use", "confirmed"}).
			AddRow(40, 3, 6, 23))
	mock.ExpectQuery("rac_tickets").
		WillReturnRows(sqlmock.NewRows([]string{"rac_tickets", "waiting_tickets"}).
			AddRow(11, 2))
	mock.ExpectQuery("current_rac_passengers").
		WillReturnRows(sqlmock.NewRows([]string{"berth_number", "berth_type", "current_rac_passengers"}).
			AddRow(2, "MIDDLE", nil).
			AddRow(8, "SIDE_LOWER", 1))

	svc := InventoryService{DB: db, Limits: domain.DefaultLimits()}
	out, err := svc.Availability()
	if err != nil {
		t.Fatalf("availability error: %v", err)
	}

	s := out.Summary
	if s.RegularBerthsAvailable != 40 || s.RACBerthsAvailable != 3 || s.RACBerthsInUse != 6 {
		t.Errorf("berth summary = %+v", s)
	}
	if s.RACTicketsRemaining != 7 {
		t.Errorf("rac_tickets_remaining = %d, want 7", s.RACTicketsRemaining)
	}
	if s.WaitingListRemaining != 8 {
		t.Errorf("waiting_list_remaining = %d, want 8", s.WaitingListRemaining)
	}
	if s.TotalRegularBerths != 63 || s.TotalRACBerths != 9 {
		t.Errorf("totals = %d/%d, want 63/9", s.TotalRegularBerths, s.TotalRACBerths)
	}

	if len(out.AvailableBerths) != 2 {
		t.Fatalf("expected 2 berths, got %d", len(out.AvailableBerths))
	}
	if out.AvailableBerths[0].CurrentRACPassengers != nil {
		t.Errorf("regular berth must not report RAC occupancy")
	}
	if occ := out.AvailableBerths[1].CurrentRACPassengers; occ == nil || *occ != 1 {
		t.Errorf("side-lower occupancy = %v, want 1", occ)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookedTicketsWrapsStorageErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("priority_category").
		WillReturnError(errors.New("connection closed"))

	svc := InventoryService{DB: db, Limits: domain.DefaultLimits()}
	if _, err := svc.BookedTickets(); !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
