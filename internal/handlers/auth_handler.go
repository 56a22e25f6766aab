package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecanteen/internal/models"
	"ecanteen/internal/services"
)

type AuthHandler struct {
	credentials services.CredentialService
	users       services.UserService
}

func NewAuthHandler(credentials services.CredentialService, users services.UserService) *AuthHandler {
	return &AuthHandler{credentials: credentials, users: users}
}

type registerRequest struct {
	Fullname string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	OTP      string `json:"otp" binding:"omitempty,otp"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type codeRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,otp"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,otp"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func authBody(message string, res *services.AuthResult) gin.H {
	return gin.H{
		"message":   message,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	}
}

// @Summary      Register
// @Description  Without an OTP a verification code is emailed and nothing is created. With a valid OTP the account is created verified and a session token is returned.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration data"
// @Success      200   {object}  map[string]interface{}
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.credentials.Register(c.Request.Context(), services.RegisterInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		OTP:      req.OTP,
	})
	if err != nil {
		respondError(c, err, "Server error during registration")
		return
	}

	if res.RequiresOTP {
		c.JSON(http.StatusOK, gin.H{
			"message":     "OTP sent to your email. Please verify to complete registration.",
			"requiresOtp": true,
			"email":       res.Email,
		})
		return
	}
	c.JSON(http.StatusCreated, authBody("User registered successfully", res.Auth))
}

// @Summary      Login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.credentials.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err, "Server error during login")
		return
	}
	c.JSON(http.StatusOK, authBody("Login successful", res))
}

// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.users.GetUserByID(c.Request.Context(), currentViewer(c).UserID)
	if err != nil {
		respondError(c, err, "Server error retrieving user profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User profile retrieved successfully", "user": u})
}

// @Summary      Forgot password
// @Description  Emails a password reset OTP valid for 10 minutes.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	h.sendResetCode(c, "OTP sent to your email", "Failed to process forgot password request")
}

// @Summary      Resend password reset OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	h.sendResetCode(c, "OTP resent to your email", "Failed to resend OTP")
}

func (h *AuthHandler) sendResetCode(c *gin.Context, message, failure string) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.credentials.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, failure)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "expiresIn": "10 minutes"})
}

// @Summary      Check a password reset OTP
// @Description  Validates the code without using it up.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      codeRequest  true  "Email and OTP"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.credentials.CheckResetCode(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, err, "Failed to verify OTP")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

// @Summary      Reset password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Email, OTP and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.credentials.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respondError(c, err, "Failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// @Summary      Verify email
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      codeRequest  true  "Email and OTP"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.credentials.VerifyEmail(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, err, "Failed to verify email")
		return
	}
	c.JSON(http.StatusOK, authBody("Email verified successfully", res))
}

// @Summary      Resend verification OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.credentials.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "Failed to resend verification email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification OTP resent to your email", "expiresIn": "10 minutes"})
}
