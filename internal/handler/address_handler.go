package handler

import (
	"encoding/json"
	"net/http"

	"foodcourt/internal/model"
	"foodcourt/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AddressHandler handles delivery address HTTP requests.
type AddressHandler struct {
	service service.AddressService
	logger  zerolog.Logger
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(service service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "address").Logger(),
	}
}

// List handles GET /api/addresses requests.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	addresses, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, addresses)
}

// Create handles POST /api/addresses requests.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	address, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, address)
}

// SetDefault handles PUT /api/addresses/{id}/default requests.
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	addressID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeValidation(w, "Invalid address ID")
		return
	}

	if err := h.service.SetDefault(r.Context(), user.ID, addressID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/addresses/{id} requests.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	addressID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeValidation(w, "Invalid address ID")
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, addressID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
