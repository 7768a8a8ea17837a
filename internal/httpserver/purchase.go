package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type purchaseHandler struct {
	purchases PurchaseService
}

// purchase runs the checkout for the cart in the path on behalf of the caller.
// 200 when at least one line committed, 400 when none did.
func (h *purchaseHandler) purchase(c *gin.Context) {
	u := currentUser(c)
	result, err := h.purchases.ProcessPurchase(c.Request.Context(), c.Param("cid"), u.Email)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	data := toPurchaseData(*result)
	if !result.Success {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": result.Message, "data": data})
		return
	}
	status := "success"
	if len(result.FailedProducts) > 0 {
		status = "partial_success"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "message": result.Message, "data": data})
}
