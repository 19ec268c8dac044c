package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/estately/api/internal/api/middleware"
	"github.com/estately/api/internal/api/services"
	"github.com/estately/api/internal/config"
	"github.com/estately/api/internal/models"
	"github.com/estately/api/internal/repositories"
	"github.com/estately/api/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

const tokenLifetime = 24 * time.Hour

// Claims carried by the access token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type AuthHandler struct {
	users *repositories.UserRepository
	oauth *oauth2.Config
	cfg   *config.Config
}

func NewAuthHandler(users *repositories.UserRepository, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		users: users,
		oauth: services.NewGoogleOAuth(cfg.Google),
		cfg:   cfg,
	}
}

// POST /api/auth/signup
// Signup godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid input")
		return
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Email == "" || input.Password == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	if _, err := h.users.ByUsername(r.Context(), input.Username); err == nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Username is already taken")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	if _, err := h.users.ByEmail(r.Context(), input.Email); err == nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "User already exists with this email")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashed),
	}
	if err := h.users.Create(r.Context(), &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			utils.ErrorResponse(w, http.StatusBadRequest, "User already exists")
			return
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database insert failed")
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
		Data:    user,
	})
}

// POST /api/auth/signin
// Signin godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/auth/signin [post]
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || input.Password == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.ByEmail(r.Context(), input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.issueToken(w, user.ID); err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to create token")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Signin successful",
		Data:    user,
	})
}

// GET /api/auth/signout
// Signout godoc
// @Summary Clear the auth cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /api/auth/signout [get]
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // maxAge < 0 deletes the cookie
		Secure:   h.cfg.IsProd(),
		HttpOnly: true,
		SameSite: h.sameSite(),
	})

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Signed out successfully",
	})
}

// GET /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := GenerateState(map[string]string{"from": r.URL.Query().Get("from")})
	if err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate OAuth state")
		return
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if _, err := DecodeState(r.FormValue("state")); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	token, err := h.oauth.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		log.Println("OAuth code exchange failed:", err)
		utils.ErrorResponse(w, http.StatusInternalServerError, "Code exchange failed")
		return
	}

	client := h.oauth.Client(r.Context(), token)
	resp, err := client.Get(services.GoogleUserInfoURL)
	if err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to get user info")
		return
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	var googleUser struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(data, &googleUser); err != nil || googleUser.Email == "" {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to parse user info")
		return
	}

	user, err := h.users.ByEmail(r.Context(), googleUser.Email)
	switch {
	case err == nil:
		// already registered, fall through to issuing a token
	case errors.Is(err, repositories.ErrNotFound):
		user, err = h.createGoogleUser(r, googleUser.Name, googleUser.Email, googleUser.Picture)
		if err != nil {
			utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
	default:
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.issueToken(w, user.ID); err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to create token")
		return
	}

	http.Redirect(w, r, h.cfg.ClientURL, http.StatusTemporaryRedirect)
}

// createGoogleUser registers a first-time OAuth user. The account gets a
// random password hash so it can never be signed into locally until the
// user sets one.
func (h *AuthHandler) createGoogleUser(r *http.Request, name, email, picture string) (*models.User, error) {
	secret, err := utils.GenerateSecureToken(16)
	if err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Usernames are unique; derive one from the display name plus a
	// short random suffix like the original marketplace does.
	suffix, err := utils.GenerateSecureToken(4)
	if err != nil {
		return nil, err
	}
	username := strings.ToLower(strings.ReplaceAll(name, " ", "")) + suffix

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Avatar:   picture,
	}
	if err := h.users.Create(r.Context(), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// issueToken signs a fresh access token for the user and sets it as the
// HTTP-only auth cookie.
func (h *AuthHandler) issueToken(w http.ResponseWriter, userID uuid.UUID) error {
	expiration := time.Now().Add(tokenLifetime)
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(time.Until(expiration).Seconds()),
		Secure:   h.cfg.IsProd(),
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
	return nil
}

// sameSite picks the cookie policy: cross-site (None+Secure) in
// production where the frontend lives on another origin, Lax locally.
func (h *AuthHandler) sameSite() http.SameSite {
	if h.cfg.IsProd() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
