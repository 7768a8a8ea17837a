package httpserver

import (
	"net/http"

	usersvc "ecommerce-backend/internal/service/user"
	"github.com/gin-gonic/gin"
)

type sessionHandler struct {
	users UserService
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *sessionHandler) register(c *gin.Context) {
	var req usersvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusCreated, u)
}

func (h *sessionHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "email and password are required")
		return
	}
	u, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeData(c, http.StatusOK, gin.H{
		"token":     token,
		"tokenType": "Bearer",
		"expiresIn": h.users.AccessTTLSeconds(),
		"user":      u,
	})
}

func (h *sessionHandler) current(c *gin.Context) {
	writeData(c, http.StatusOK, currentUser(c))
}

func (h *sessionHandler) logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), bearerToken(c.GetHeader("Authorization"))); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
