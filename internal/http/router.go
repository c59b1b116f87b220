package api

import (
	"log"
	stdhttp "net/http"

	intconfig "railway/internal/config"
	h "railway/internal/http/handlers"
	"railway/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	_ = env

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
	}

	tickets := r.Group("/api/v1/tickets")
	{
		tickets.POST("/book", h.BookTicket)
		tickets.POST("/cancel/:ticketId", h.CancelTicket)
		tickets.GET("/booked", h.GetBookedTickets)
		tickets.GET("/available", h.GetAvailableTickets)
		tickets.GET("/:ticketId/e-ticket", h.GetTicketETicketPDF)
	}

	return r
}
