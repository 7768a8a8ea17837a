package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type cartHandler struct {
	carts CartService
}

type addProductRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *cartHandler) get(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), c.Param("cid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, toCartDTO(*cart))
}

func (h *cartHandler) addProduct(c *gin.Context) {
	var req addProductRequest
	// An empty body adds a single unit.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	cart, err := h.carts.AddProduct(c.Request.Context(), c.Param("cid"), c.Param("pid"), qty)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, toCartDTO(*cart))
}

func (h *cartHandler) removeProduct(c *gin.Context) {
	cart, err := h.carts.RemoveProduct(c.Request.Context(), c.Param("cid"), c.Param("pid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, toCartDTO(*cart))
}

func (h *cartHandler) clear(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), c.Param("cid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, toCartDTO(*cart))
}
