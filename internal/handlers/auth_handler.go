package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// AuthHandler handles registration, login, logout, and profile requests.
type AuthHandler struct {
	userService   services.UserServicer
	budgetService services.BudgetServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer, budgetService services.BudgetServicer) *AuthHandler {
	return &AuthHandler{userService: userService, budgetService: budgetService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Email          string `json:"email" binding:"required,email,max=255"`
	Password       string `json:"password" binding:"required,min=8,max=128"`
	ProfilePicture string `json:"profile_picture" binding:"omitempty,max=255"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries the new total budget for reconciliation.
type UpdateProfileRequest struct {
	TotalBudget *float64 `json:"total_budget" binding:"required"`
}

// userProjection is the public view of a user, without the password hash.
func userProjection(user *models.User) gin.H {
	return gin.H{
		"id":               user.ID,
		"name":             user.Name,
		"email":            user.Email,
		"profile_picture":  user.ProfilePicture,
		"total_budget":     user.TotalBudget,
		"remaining_budget": user.RemainingBudget,
	}
}

// Register creates a new user, issues a session cookie, and returns the
// public user projection. Duplicate emails are rejected with a conflict.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Name, req.Email, req.Password, req.ProfilePicture)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	middleware.SetSessionCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"user":    userProjection(user),
	})
}

// Login authenticates a user and issues a session cookie. Unknown emails and
// wrong passwords produce the same generic failure.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	middleware.SetSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in successfully",
		"user":    userProjection(user),
	})
}

// Logout expires the session cookie. Sessions are short-lived signed tokens,
// so no server-side revocation list is kept.
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Profile returns the authenticated user's current projection.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userProjection(user),
	})
}

// UpdateProfile overwrites the total budget and recomputes the remaining
// budget from the full expense history.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Total budget is required"))
		return
	}

	user, err := h.budgetService.SetBudget(userID, *req.TotalBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    userProjection(user),
	})
}
