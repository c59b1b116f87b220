package services

import (
	"bytes"
	"testing"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

func TestGenerateETicketProducesPDF(t *testing.T) {
	num := 14
	berthType := "MIDDLE"
	svc := ETicketService{
		RequestID: "test",
		Loader: func(id int64) (models.ETicketData, error) {
			return models.ETicketData{
				TicketID:        id,
				PNR:             "AB12CD",
				Status:          domain.TicketConfirmed,
				TicketType:      domain.TicketAdult,
				PassengerName:   "Asha Rao",
				PassengerAge:    30,
				PassengerGender: "F",
				BerthNumber:     &num,
				BerthType:       &berthType,
				BookedAt:        time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
			}, nil
		},
	}

	pdf, filename, err := svc.GenerateETicket(9)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if filename != "ETICKET_AB12CD.pdf" {
		t.Errorf("filename = %q", filename)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF")
	}
	if len(pdf) < 500 {
		t.Errorf("pdf suspiciously small: %d bytes", len(pdf))
	}
}

func TestGenerateETicketPropagatesNotFound(t *testing.T) {
	svc := ETicketService{
		Loader: func(int64) (models.ETicketData, error) {
			return models.ETicketData{}, domain.NotFoundError{Resource: "ticket"}
		},
	}
	if _, _, err := svc.GenerateETicket(404); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
