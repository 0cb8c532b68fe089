package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendora/backend/internal/services"
	"go.uber.org/zap"
)

type QRHandler struct {
	service *services.QRService
	logger  *zap.Logger
}

func NewQRHandler(service *services.QRService, logger *zap.Logger) *QRHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QRHandler{
		service: service,
		logger:  logger.Named("qr_handler"),
	}
}

// ProductLabel renders a QR label pointing at the product's buy endpoint
// @Summary Product QR label
// @Description Generate a QR code (base64 PNG) encoding the purchase URL of a product
// @Tags QR
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} services.ProductLabel
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /product/{id}/qr [get]
func (h *QRHandler) ProductLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	label, err := h.service.GenerateProductLabel(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			services.SendErrorResponse(w, fmt.Sprintf("No product with id %s was found", id), http.StatusNotFound, nil)
			return
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, label)
}
