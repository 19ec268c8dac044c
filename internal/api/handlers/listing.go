package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/estately/api/internal/api/middleware"
	"github.com/estately/api/internal/models"
	"github.com/estately/api/internal/repositories"
	"github.com/estately/api/internal/search"
	"github.com/estately/api/internal/utils"
	"github.com/google/uuid"
)

type ListingHandler struct {
	listings *repositories.ListingRepository
}

func NewListingHandler(listings *repositories.ListingRepository) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// listingInput is the client-supplied portion of a listing. The owner
// reference is deliberately absent: it always derives from the
// authenticated identity, never from the body.
type listingInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Price       int64    `json:"price"`
	Type        string   `json:"type"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Furnished   bool     `json:"furnished"`
	Parking     bool     `json:"parking"`
	Offer       bool     `json:"offer"`
	ImageURLs   []string `json:"imageUrls"`
}

func (in *listingInput) validate() string {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return "Name is required"
	case in.Price <= 0:
		return "Price must be a positive integer"
	case !models.ValidType(in.Type):
		return "Type must be 'sell' or 'rent'"
	case in.Bedrooms <= 0 || in.Bathrooms <= 0:
		return "Bedrooms and bathrooms must be positive"
	case len(in.ImageURLs) == 0:
		return "At least one image is required"
	case len(in.ImageURLs) > models.MaxListingImages:
		return "At most 10 images are allowed"
	}
	return ""
}

func (in *listingInput) apply(l *models.Listing) {
	l.Name = in.Name
	l.Description = in.Description
	l.Address = in.Address
	l.Price = in.Price
	l.Type = in.Type
	l.Bedrooms = in.Bedrooms
	l.Bathrooms = in.Bathrooms
	l.Furnished = in.Furnished
	l.Parking = in.Parking
	l.Offer = in.Offer
	l.ImageURLs = in.ImageURLs
}

// POST /api/listing/create
// CreateListing godoc
// @Summary Create a listing owned by the authenticated user
// @Tags Listings
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/listing/create [post]
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	owner, ok := middleware.UserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input listingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if msg := input.validate(); msg != "" {
		utils.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	listing := models.Listing{UserRef: owner}
	input.apply(&listing)

	if err := h.listings.Create(r.Context(), &listing); err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database insert failed")
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Listing created",
		Data:    listing,
	})
}

// POST /api/listing/update/{id}
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	listing, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	var input listingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if msg := input.validate(); msg != "" {
		utils.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	input.apply(listing)
	if err := h.listings.Update(r.Context(), listing); err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database update failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Listing updated",
		Data:    listing,
	})
}

// DELETE /api/listing/delete/{id}
// DeleteListing godoc
// @Summary Delete a listing owned by the authenticated user
// @Tags Listings
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/listing/delete/{id} [delete]
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	listing, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	if err := h.listings.Delete(r.Context(), listing.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorResponse(w, http.StatusNotFound, "Listing not found")
			return
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database delete failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Listing has been deleted",
	})
}

// GET /api/listing/get/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid listing id")
		return
	}

	listing, err := h.listings.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorResponse(w, http.StatusNotFound, "Listing not found")
			return
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Data:    listing,
	})
}

// GET /api/listing/get?searchTerm=&type=&parking=&furnished=&sort=&order=&limit=&startIndex=
// SearchListings godoc
// @Summary Search listings with filters, sort and pagination
// @Tags Listings
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /api/listing/get [get]
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	descriptor := search.Normalize(r.URL.Query())

	listings, hasMore, err := h.listings.Search(r.Context(), descriptor)
	if err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Data: map[string]any{
			"listings": listings,
			"hasMore":  hasMore,
		},
	})
}

// authorizeOwner loads the target listing and enforces the mutation gate:
// 400 on a malformed id, 401 without an identity, 404 when the listing is
// missing and 403 when the caller does not own it.
func (h *ListingHandler) authorizeOwner(w http.ResponseWriter, r *http.Request) (*models.Listing, bool) {
	caller, ok := middleware.UserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid listing id")
		return nil, false
	}

	listing, err := h.listings.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorResponse(w, http.StatusNotFound, "Listing not found")
			return nil, false
		}
		utils.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}

	if listing.UserRef != caller {
		utils.ErrorResponse(w, http.StatusForbidden, "You can only manage your own listings")
		return nil, false
	}
	return listing, true
}
