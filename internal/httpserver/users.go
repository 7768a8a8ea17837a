package httpserver

import (
	"net/http"

	usersvc "ecommerce-backend/internal/service/user"
	"github.com/gin-gonic/gin"
)

type userHandler struct {
	users UserService
}

func (h *userHandler) list(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, users)
}

func (h *userHandler) get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, u)
}

func (h *userHandler) update(c *gin.Context) {
	var in usersvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("uid"), in, *currentUser(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, u)
}

func (h *userHandler) remove(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("uid")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
