package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/utils"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email        string              `json:"email" validate:"required,email"`
	Password     string              `json:"password" validate:"required,min=6"`
	Name         string              `json:"name" validate:"required"`
	Organization models.Organization `json:"organization" validate:"required,oneof=Magnova Nova"`
	Role         models.Role         `json:"role" validate:"omitempty,oneof=Admin Approver User"`
}

// TokenResponse is returned by login and register
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func (r *Router) issue(w http.ResponseWriter, req *http.Request, status int, user *models.User) {
	token, err := utils.GenerateToken(user, r.cfg.JWTSecret, r.cfg.TokenTTL)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, status, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// register handles user registration
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var body RegisterRequest
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	var n int64
	if err := r.db.WithContext(req.Context()).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		r.respondError(w, req, err)
		return
	}
	if n > 0 {
		respondDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hashedPassword, err := utils.HashPassword(body.Password)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	user := models.User{
		Email:        email,
		Password:     hashedPassword,
		Name:         body.Name,
		Organization: body.Organization,
		Role:         body.Role,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := r.db.WithContext(req.Context()).Create(&user).Error; err != nil {
		r.respondError(w, req, err)
		return
	}

	r.log.Info("user registered", zap.String("email", user.Email), zap.String("organization", string(user.Organization)))
	r.issue(w, req, http.StatusOK, &user)
}

// login handles user login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body LoginRequest
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}

	var user models.User
	err := r.db.WithContext(req.Context()).Where("email = ?", strings.ToLower(strings.TrimSpace(body.Email))).First(&user).Error
	if err != nil || !utils.CheckPasswordHash(body.Password, user.Password) {
		respondDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	r.db.WithContext(req.Context()).Model(&user).Update("last_login", now)

	r.issue(w, req, http.StatusOK, &user)
}

// me returns the stored profile of the caller
func (r *Router) me(w http.ResponseWriter, req *http.Request) {
	var user models.User
	err := r.db.WithContext(req.Context()).Where("id = ?", actor(req).UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondDetail(w, http.StatusUnauthorized, "User not found")
		return
	}
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
