package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/estately/api/internal/api/middleware"
	"github.com/estately/api/internal/repositories"
	"github.com/estately/api/internal/utils"
)

const presignLifetime = 15 * time.Minute

type UploadHandler struct {
	images *repositories.ImageStore
}

func NewUploadHandler(images *repositories.ImageStore) *UploadHandler {
	return &UploadHandler{images: images}
}

// POST /api/listing/upload-url
// PresignUpload godoc
// @Summary Request a presigned upload URL for a listing image
// @Tags Listings
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/listing/upload-url [post]
func (h *UploadHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	owner, ok := middleware.UserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.images == nil {
		utils.ErrorResponse(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	var input struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Filename == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "Filename is required")
		return
	}

	uploadURL, publicURL, err := h.images.PresignUpload(r.Context(), owner, input.Filename, presignLifetime)
	if err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to presign upload")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Data: map[string]any{
			"uploadUrl": uploadURL,
			"publicUrl": publicURL,
			"expiresIn": int(presignLifetime.Seconds()),
		},
	})
}
