package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	intconfig "railway/internal/config"
	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/repositories"
	"railway/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ETicketService renders a printable e-ticket PDF for one booked ticket.
type ETicketService struct {
	Inventory repositories.InventoryRepo
	RequestID string
	Loader    func(int64) (models.ETicketData, error)
}

func (s ETicketService) inventory() repositories.InventoryRepo {
	if s.Inventory.DB != nil {
		return s.Inventory
	}
	return repositories.InventoryRepo{DB: intconfig.DB}
}

func (s ETicketService) GenerateETicket(ticketID int64) ([]byte, string, error) {
	var (
		data models.ETicketData
		err  error
	)
	if s.Loader != nil {
		data, err = s.Loader(ticketID)
	} else {
		data, err = s.inventory().ETicketData(ticketID)
	}
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "eticket", "generate", fmt.Sprintf("ticket_id=%d pnr=%s", data.TicketID, data.PNR))
	return buildETicketPDF(data)
}

func buildETicketPDF(d models.ETicketData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RAILWAY E-TICKET")
	pdf.Ln(12)

	berth := "-"
	if d.BerthNumber != nil && d.BerthType != nil {
		berth = fmt.Sprintf("%d (%s)", *d.BerthNumber, *d.BerthType)
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("PNR            : %s", d.PNR),
		fmt.Sprintf("Passenger      : %s", strings.TrimSpace(d.PassengerName)),
		fmt.Sprintf("Age / Gender   : %d / %s", d.PassengerAge, d.PassengerGender),
		fmt.Sprintf("Ticket Type    : %s", d.TicketType),
		fmt.Sprintf("Status         : %s", d.Status),
		fmt.Sprintf("Berth          : %s", berth),
		fmt.Sprintf("Booked At      : %s", d.BookedAt.Format(time.RFC3339)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	switch d.Status {
	case domain.TicketRAC:
		pdf.MultiCell(0, 6, "RAC ticket: the side-lower berth is shared with one other passenger until a confirmed berth opens up.", "", "", false)
	case domain.TicketWaiting:
		pdf.MultiCell(0, 6, "Waiting-list ticket: no berth is assigned yet. You will be promoted automatically as cancellations come in.", "", "", false)
	default:
		pdf.MultiCell(0, 6, "Please carry a valid ID along with this e-ticket during the journey.", "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("ETICKET_%s.pdf", d.PNR), nil
}
