package v1

import (
	"net/http"

	"partshub-backend/internal/domain"
	"partshub-backend/internal/usecase"
	"partshub-backend/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc}
}

// RelatedProducts serves the suggestion strip on the cart page.
func (h *CatalogHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	products, err := h.catalogUC.RelatedProducts(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load related products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	utils.WriteJSON(w, http.StatusOK, products)
}
