package httpserver

import (
	"net/http"
	"strings"

	productsvc "ecommerce-backend/internal/service/product"
	"github.com/gin-gonic/gin"
)

type productHandler struct {
	products ProductService
}

func (h *productHandler) list(c *gin.Context) {
	items, err := h.products.List(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, items)
}

func (h *productHandler) get(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("pid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, p)
}

func (h *productHandler) create(c *gin.Context) {
	var in productsvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.products.Create(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusCreated, p)
}

func (h *productHandler) update(c *gin.Context) {
	var in productsvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.products.Update(c.Request.Context(), c.Param("pid"), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, p)
}

func (h *productHandler) remove(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("pid")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
