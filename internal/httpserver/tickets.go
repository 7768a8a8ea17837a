package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ticketHandler struct {
	purchases PurchaseService
}

func (h *ticketHandler) mine(c *gin.Context) {
	tickets, err := h.purchases.TicketsByPurchaser(c.Request.Context(), currentUser(c).Email)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, toTicketDTOs(tickets))
}

func (h *ticketHandler) get(c *gin.Context) {
	t, err := h.purchases.TicketByCode(c.Request.Context(), c.Param("code"), *currentUser(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, toTicketDTO(*t))
}

func (h *ticketHandler) list(c *gin.Context) {
	tickets, err := h.purchases.AllTickets(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, toTicketDTOs(tickets))
}
