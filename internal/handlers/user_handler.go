package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecanteen/internal/models"
	"ecanteen/internal/services"
)

type UserHandler struct {
	users       services.UserService
	credentials services.CredentialService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func NewUserHandler(users services.UserService, credentials services.CredentialService) *UserHandler {
	return &UserHandler{users: users, credentials: credentials}
}

// @Summary      Get profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.users.GetUserByID(c.Request.Context(), currentViewer(c).UserID)
	if err != nil {
		respondError(c, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile retrieved successfully", "data": u})
}

// @Summary      Update profile
// @Description  Only the fields present in the body are changed. Avatar is a stored file path.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.ProfileUpdate  true  "Profile fields"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), currentViewer(c).UserID, req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "data": u})
}

// @Summary      Change password
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /users/change-password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.credentials.ChangePassword(c.Request.Context(), currentViewer(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
