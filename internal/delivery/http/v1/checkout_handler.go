package v1

import (
	"errors"
	"net/http"

	"partshub-backend/internal/domain"
	"partshub-backend/internal/usecase"
	"partshub-backend/pkg/utils"
)

type CheckoutHandler struct {
	checkoutUC *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkoutUC: uc}
}

// Checkout runs the checkout state machine. Cash-on-delivery completes in
// one call; the hosted branch returns the gateway URL for the caller to
// redirect the shopper to.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := h.checkoutUC.ProceedToCheckout(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCartEmpty):
			utils.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrAddressRequired):
			utils.WriteJSON(w, http.StatusUnprocessableEntity, res)
		case errors.Is(err, domain.ErrGatewayTimeout), errors.Is(err, domain.ErrGatewayFailed):
			utils.WriteJSON(w, http.StatusBadGateway, res)
		default:
			utils.WriteError(w, http.StatusInternalServerError, "Checkout failed")
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// PaymentSuccess is the gateway's success redirect. It translates the
// callback into a PaymentConfirmed event and finalizes the pending order.
func (h *CheckoutHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ev := domain.PaymentConfirmed{SessionID: r.URL.Query().Get("session_id")}
	res, err := h.checkoutUC.HandlePaymentConfirmed(r.Context(), user, ev)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentSession) {
			utils.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to finalize payment")
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// PaymentFailed is the gateway's cancel/failure redirect. The cart is left
// untouched for a retry.
func (h *CheckoutHandler) PaymentFailed(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ev := domain.PaymentFailed{SessionID: r.URL.Query().Get("session_id")}
	utils.WriteJSON(w, http.StatusOK, h.checkoutUC.HandlePaymentFailed(user, ev))
}
