package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	petsvc "ecommerce-backend/internal/service/pet"
	"github.com/gin-gonic/gin"
)

type petHandler struct {
	pets PetService
}

func (h *petHandler) list(c *gin.Context) {
	var adopted *bool
	if raw := strings.TrimSpace(c.Query("adopted")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "adopted must be true or false")
			return
		}
		adopted = &v
	}
	pets, err := h.pets.List(c.Request.Context(), adopted)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, pets)
}

func (h *petHandler) create(c *gin.Context) {
	var in petsvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.pets.Create(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusCreated, p)
}

func (h *petHandler) adopt(c *gin.Context) {
	p, err := h.pets.Adopt(c.Request.Context(), c.Param("uid"), c.Param("pid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusCreated, p)
}

func (h *petHandler) adoptions(c *gin.Context) {
	pets, err := h.pets.Adoptions(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, pets)
}

func (h *petHandler) adoption(c *gin.Context) {
	p, err := h.pets.Adoption(c.Request.Context(), c.Param("pid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, p)
}
