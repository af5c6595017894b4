package v1

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"partshub-backend/internal/domain"
	"partshub-backend/internal/usecase"
	"partshub-backend/pkg/utils"
)

type CartHandler struct {
	cartUC   *usecase.CartUsecase
	couponUC *usecase.CouponUsecase
}

func NewCartHandler(cartUC *usecase.CartUsecase, couponUC *usecase.CouponUsecase) *CartHandler {
	return &CartHandler{
		cartUC:   cartUC,
		couponUC: couponUC,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.cartUC.GetCart(user.ID))
}

type addItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.ProductID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Product ID required")
		return
	}

	cart, err := h.cartUC.AddItem(r.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	productID := r.PathValue("productId")
	if productID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Product ID required")
		return
	}
	var req updateQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	utils.WriteJSON(w, http.StatusOK, h.cartUC.UpdateQuantity(user.ID, productID, req.Quantity))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	productID := r.PathValue("productId")
	if productID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Product ID required")
		return
	}

	utils.WriteJSON(w, http.StatusOK, h.cartUC.RemoveItem(user.ID, productID))
}

type applyCouponReq struct {
	Code string `json:"code"`
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req applyCouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	cart, err := h.couponUC.ApplyCoupon(r.Context(), user.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCouponNotFound):
			utils.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrCouponExpired), errors.Is(err, domain.ErrCouponExhausted):
			utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			utils.WriteError(w, http.StatusInternalServerError, "Failed to apply coupon")
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

type shippingOptionReq struct {
	Option string `json:"option"`
}

func (h *CartHandler) SetShippingOption(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req shippingOptionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	cart, err := h.cartUC.SetShippingOption(user.ID, req.Option)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

type paymentMethodReq struct {
	Method string `json:"method"`
}

func (h *CartHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req paymentMethodReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	cart, err := h.cartUC.SetPaymentMethod(user.ID, req.Method)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// GetFlash drains the one-read UI messages (coupon banner, removal
// confirmations) for the session.
func (h *CartHandler) GetFlash(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	msgs := h.cartUC.PopFlash(user.ID)
	if msgs == nil {
		msgs = map[string]string{}
	}
	utils.WriteJSON(w, http.StatusOK, msgs)
}
