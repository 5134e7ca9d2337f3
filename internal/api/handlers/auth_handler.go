package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyonchat/halcyon/internal/api/middleware"
	"github.com/halcyonchat/halcyon/internal/services"
	"github.com/halcyonchat/halcyon/internal/utils"
)

type AuthHandler struct {
	users services.UserService
}

func NewAuthHandler(users services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type SignupRequest struct {
	ID       string `json:"id" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Signup", "invalid request body", err))
		return
	}

	u, err := h.users.Signup(c.Request.Context(), req.ID, req.Email, req.Name, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"user": u}
	if req.Password != "" {
		token, err := utils.MintSessionToken(u.ID)
		if err != nil {
			writeError(c, utils.E(utils.CodeInternal, "AuthHandler.Signup", "failed to issue session token", err))
			return
		}
		h.setSessionCookie(c, token)
		resp["token"] = token
	}

	c.JSON(http.StatusOK, resp)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Login", "invalid request body", err))
		return
	}

	u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := utils.MintSessionToken(u.ID)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "AuthHandler.Login", "failed to issue session token", err))
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.ChangePassword", "invalid request body", err))
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	// expire the cookie so the dead session is not resent
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.SessionCookie, token, int(utils.SessionTokenTTL.Seconds()), "/", "", false, true)
}
