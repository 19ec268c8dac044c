package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/estately/api/internal/api/middleware"
	"github.com/estately/api/internal/config"
	"github.com/estately/api/internal/repositories"
	"github.com/estately/api/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	users    *repositories.UserRepository
	listings *repositories.ListingRepository
	cfg      *config.Config
}

func NewUserHandler(users *repositories.UserRepository, listings *repositories.ListingRepository, cfg *config.Config) *UserHandler {
	return &UserHandler{users: users, listings: listings, cfg: cfg}
}

// GET /api/user/{id}
// Public profile, used by listing pages to resolve the contact email.
// The password hash is never serialized.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorResponse(w, http.StatusNotFound, "User not found")
			return
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Data:    user,
	})
}

// POST /api/user/update/{id}
// Self-service profile update: username, email, password, avatar.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, ok := h.authorizeSelf(w, r)
	if !ok {
		return
	}

	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Avatar   string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := h.users.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorResponse(w, http.StatusNotFound, "User not found")
			return
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if v := strings.TrimSpace(input.Username); v != "" {
		user.Username = v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		user.Email = v
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		user.Password = string(hashed)
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			utils.ErrorResponse(w, http.StatusBadRequest, "Username or email already in use")
			return
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database update failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "User updated successfully",
		Data:    user,
	})
}

// DELETE /api/user/delete/{id}
// Deletes the account and, in the same transaction, every listing it
// owns. Clears the auth cookie so the deleted session ends immediately.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, ok := h.authorizeSelf(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorResponse(w, http.StatusNotFound, "User not found")
			return
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database delete failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.cfg.IsProd(),
		HttpOnly: true,
	})

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "User has been deleted",
	})
}

// GET /api/user/listings/{id}
// Lists every listing owned by the authenticated user.
func (h *UserHandler) Listings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeSelf(w, r)
	if !ok {
		return
	}

	listings, err := h.listings.ByOwner(r.Context(), id)
	if err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Data:    listings,
	})
}

// authorizeSelf resolves the {id} path segment and enforces that the
// caller only operates on their own account.
func (h *UserHandler) authorizeSelf(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	caller, ok := middleware.UserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid user id")
		return uuid.Nil, false
	}

	if id != caller {
		utils.ErrorResponse(w, http.StatusForbidden, "You can only manage your own account")
		return uuid.Nil, false
	}
	return id, true
}
