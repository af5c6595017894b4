package v1

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"partshub-backend/internal/domain"
	"partshub-backend/internal/usecase"
	"partshub-backend/pkg/utils"
)

type AddressHandler struct {
	addressUC *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{addressUC: uc}
}

func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	book, err := h.addressUC.ListAddresses(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load addresses")
		return
	}
	utils.WriteJSON(w, http.StatusOK, book)
}

func (h *AddressHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req domain.Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	addr, err := h.addressUC.AddAddress(r.Context(), user.ID, req)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			utils.WriteError(w, http.StatusUnprocessableEntity, vErr.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save address")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, addr)
}

func (h *AddressHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	addressID := r.PathValue("id")
	if addressID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Address ID required")
		return
	}

	if err := h.addressUC.SelectAddress(r.Context(), user.ID, addressID); err != nil {
		if errors.Is(err, domain.ErrAddressNotFound) {
			utils.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to select address")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"selectedAddressId": addressID})
}
