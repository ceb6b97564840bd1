package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	accountRepo    repository.AccountRepo
	profileRepo    repository.ProfileRepo
	devProfileRepo repository.DeveloperProfileRepo
	jwtSecret      string
	tokenDuration  time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ar repository.AccountRepo, pr repository.ProfileRepo, dr repository.DeveloperProfileRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{accountRepo: ar, profileRepo: pr, devProfileRepo: dr, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, "missing fields", http.StatusBadRequest)
		return
	}
	if req.Role != models.RoleClient && req.Role != models.RoleDeveloper {
		writeError(w, "role must be client or developer", http.StatusBadRequest)
		return
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	account := models.Account{
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: string(hash),
	}
	accountID, err := h.accountRepo.CreateAccount(ctx, &account)
	if errors.Is(err, repository.ErrDuplicate) {
		writeError(w, "email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		writeError(w, "error creating account", http.StatusInternalServerError)
		return
	}

	// Create the profile row linked to the new account id; developer accounts
	// also get an empty developer profile.
	profile := models.Profile{
		AccountID:    accountID,
		DisplayName:  req.Name,
		ContactEmail: req.Email,
	}
	if _, err := h.profileRepo.CreateProfile(ctx, &profile); err != nil {
		writeError(w, "error creating profile", http.StatusInternalServerError)
		return
	}
	if req.Role == models.RoleDeveloper {
		dev := models.DeveloperProfile{AccountID: accountID}
		if _, err := h.devProfileRepo.CreateDeveloperProfile(ctx, &dev); err != nil {
			writeError(w, "error creating developer profile", http.StatusInternalServerError)
			return
		}
	}

	tokenStr, err := h.issueToken(accountID, req.Email, req.Role)
	if err != nil {
		writeError(w, "error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr}, http.StatusOK)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, "missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	account, err := h.accountRepo.GetAccountByEmail(ctx, req.Email)
	if err != nil || account == nil {
		writeError(w, "credentials not found", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, "credentials not found", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(account.ID, account.Email, account.Role)
	if err != nil {
		writeError(w, "error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr}, http.StatusOK)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}

func (h *AuthHandler) issueToken(accountID int64, email, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": accountID,
		"email":      email,
		"role":       role,
		"exp":        time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
