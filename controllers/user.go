package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-tote-store/middleware"
	"go-tote-store/models"
	"go-tote-store/repository"
	"go-tote-store/utils"
)

// UserController handles user-related requests
type UserController struct {
	Users repository.UserStore
	Log   *zap.Logger
}

func NewUserController(users repository.UserStore, log *zap.Logger) *UserController {
	return &UserController{Users: users, Log: log}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || len(in.Password) < 8 {
		utils.WriteStatus(w, http.StatusBadRequest, "Email and a password of at least 8 characters are required")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.Log.Error("hash password", zap.Error(err))
		utils.WriteStatus(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	user, err := uc.Users.Create(ctx, models.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Password:  string(hashedPassword),
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		utils.WriteStatus(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		uc.Log.Error("create user", zap.Error(err))
		utils.WriteStatus(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		utils.WriteStatus(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	respond(w, r, http.StatusCreated, authResponse{User: user, Token: token})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	user, err := uc.Users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteStatus(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		uc.Log.Error("find user", zap.Error(err))
		utils.WriteStatus(w, http.StatusInternalServerError, "Error finding user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		utils.WriteStatus(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		utils.WriteStatus(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	respond(w, r, http.StatusOK, authResponse{User: user, Token: token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		utils.WriteStatus(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	user, err := uc.Users.FindByEmail(ctx, claims.Email)
	if err != nil {
		utils.WriteStatus(w, http.StatusNotFound, "User not found")
		return
	}
	respond(w, r, http.StatusOK, user)
}
