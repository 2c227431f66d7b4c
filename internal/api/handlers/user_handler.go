// server/internal/api/handlers/user_handler.go
package handlers

import (
	"log"
	"net/http"
	"time"

	"port-ops-api-server/internal/api/middleware"
	"port-ops-api-server/internal/services"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Store    *store.Store
	Accounts *services.Accounts
	TokenTTL time.Duration
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Nom      string `json:"nom"`
	Role     string `json:"role"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	token, user, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"tokenType": "Bearer",
		"expiresIn": int64(h.TokenTTL.Seconds()),
		"user":      user,
	})
}

// Me returns the account behind the bearer token.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Store.UserByEmail(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPassword always answers 200. There is no mailer: the token is logged.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bind(c, &req) {
		return
	}
	token, err := h.Accounts.ForgotPassword(c.Request.Context(), req.Email)
	switch {
	case err != nil:
		log.Printf("forgot password: email=%s error=%v", req.Email, err)
	case token != "":
		log.Printf("password reset requested: email=%s token=%s", req.Email, token)
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset link has been issued"})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Accounts.Register(c.Request.Context(), req.Email, req.Password, req.Nom, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) ListUsers(c *gin.Context) { listAll(c, h.Store.Users) }

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	u, err := h.Store.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Store.Users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *UserHandler) UnlockUser(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	u, err := h.Accounts.Unlock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
