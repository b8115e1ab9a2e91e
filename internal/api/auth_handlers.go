package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/psisco/zakladki/internal/auth"
	"github.com/psisco/zakladki/internal/database"
	"github.com/psisco/zakladki/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"password123"`
	Username string `json:"username,omitempty" example:"alice"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"password123"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

const minPasswordLength = 6

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// @Summary      Register a new user
// @Description  Creates an account and returns the user with an access/refresh token pair. The username defaults to the local part of the email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "Registration data"
// @Success      201              {object}  AuthResponse
// @Failure      409              {object}  ErrorResponse "Email or username already taken"
// @Failure      422              {object}  ErrorResponse "Validation failure"
// @Failure      500              {object}  ErrorResponse
// @Router       /auth/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if !validEmail(req.Email) {
		respondError(w, http.StatusUnprocessableEntity, "Invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusUnprocessableEntity, "Password must be at least 6 characters")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username, _, _ = strings.Cut(req.Email, "@")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("ERROR: Failed to hash password: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := s.store.RegisterUser(r.Context(), database.CreateUserParams{
		ID:           uuid.New(),
		Username:     username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		if errors.Is(err, database.ErrUsernameTaken) {
			respondError(w, http.StatusConflict, "Username already taken")
			return
		}
		log.Printf("ERROR: Failed to register user: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	s.respondWithTokens(w, http.StatusCreated, user)
}

// @Summary      Log a user in
// @Description  Authenticates by email and password and returns a fresh token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login credentials"
// @Success      200           {object}  AuthResponse
// @Failure      401           {object}  ErrorResponse "Incorrect email or password"
// @Failure      500           {object}  ErrorResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("ERROR: Failed to look up user: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	s.respondWithTokens(w, http.StatusOK, user)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// @Summary      Refresh the token pair
// @Description  Exchanges a valid refresh token for a new access/refresh token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        refreshTokenRequest  body      RefreshTokenRequest  true  "Refresh token"
// @Success      200                  {object}  AuthResponse
// @Failure      401                  {object}  ErrorResponse "Invalid or expired refresh token"
// @Failure      500                  {object}  ErrorResponse
// @Router       /auth/refresh [post]
func (s *Server) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondError(w, http.StatusUnprocessableEntity, "Refresh token is required")
		return
	}

	userID, err := auth.VerifyToken(req.RefreshToken, auth.TokenTypeRefresh, s.config.JWT.Secret)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR: Failed to look up user: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	s.respondWithTokens(w, http.StatusOK, user)
}

func (s *Server) respondWithTokens(w http.ResponseWriter, status int, user *models.User) {
	accessToken, refreshToken, err := auth.GenerateTokenPair(user.ID, s.config.JWT.Secret)
	if err != nil {
		log.Printf("ERROR: Failed to generate tokens for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}

	respondJSON(w, status, AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
