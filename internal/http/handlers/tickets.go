package handlers

import (
	"net/http"
	"strconv"

	intconfig "railway/internal/config"
	"railway/internal/domain/models"
	"railway/internal/http/middleware"
	"railway/internal/services"

	"github.com/gin-gonic/gin"
)

// BookTicket books a single passenger or a mother+children family.
// Family bookings return the full ticket list; single bookings echo one
// ticket object, matching the shape clients already consume.
func BookTicket(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", "request payload is not valid JSON")
		return
	}

	svc := services.BookingService{
		Limits:    intconfig.TicketLimits(),
		RequestID: middleware.GetRequestID(c),
	}
	records, err := svc.Book(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	var data any = records[0]
	if req.IsMotherWithChildren {
		data = gin.H{"tickets": records}
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Created",
		"data":    data,
	})
}

// CancelTicket cancels one ticket and triggers the promotion cascade.
func CancelTicket(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("ticketId"), 10, 64)
	if err != nil || ticketID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_ticket_id", "ticket id must be a positive integer")
		return
	}

	svc := services.CancellationService{
		Limits:    intconfig.TicketLimits(),
		RequestID: middleware.GetRequestID(c),
	}
	if err := svc.Cancel(c.Request.Context(), ticketID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OK",
		"data":    gin.H{"message": "Ticket cancelled successfully"},
	})
}

// GetBookedTickets lists all non-cancelled tickets with priority category.
func GetBookedTickets(c *gin.Context) {
	svc := services.InventoryService{Limits: intconfig.TicketLimits()}
	tickets, err := svc.BookedTickets()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OK",
		"data":    tickets,
	})
}

// GetAvailableTickets returns the capacity summary and berth snapshot.
func GetAvailableTickets(c *gin.Context) {
	svc := services.InventoryService{Limits: intconfig.TicketLimits()}
	availability, err := svc.Availability()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OK",
		"data":    availability,
	})
}

// GetTicketETicketPDF returns the printable e-ticket (inline PDF).
func GetTicketETicketPDF(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("ticketId"), 10, 64)
	if err != nil || ticketID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_ticket_id", "ticket id must be a positive integer")
		return
	}

	svc := services.ETicketService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateETicket(ticketID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
