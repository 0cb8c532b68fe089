package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendora/backend/internal/models"
	"github.com/vendora/backend/internal/services"
	"go.uber.org/zap"
)

type ProductHandler struct {
	engine    *services.Engine
	validator *services.ValidationHelper
	logger    *zap.Logger
}

// CreateProductRequest represents the product creation payload
// @Description Product creation structure
type CreateProductRequest struct {
	Name            string `json:"product_name" validate:"required,max=128" example:"Cola"`
	Cost            *int64 `json:"cost" validate:"required" example:"10"`
	AmountAvailable *int64 `json:"amount_available" validate:"required" example:"5"`
}

// UpdateProductRequest carries the fields to change; omitted fields keep their value.
// @Description Product update structure
type UpdateProductRequest struct {
	Name            *string `json:"product_name,omitempty" validate:"omitempty,max=128" example:"Diet Cola"`
	Cost            *int64  `json:"cost,omitempty" example:"15"`
	AmountAvailable *int64  `json:"amount_available,omitempty" example:"3"`
}

func NewProductHandler(engine *services.Engine, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{
		engine:    engine,
		validator: services.NewValidationHelper(),
		logger:    logger.Named("product_handler"),
	}
}

// Create adds a product owned by the calling seller
// @Summary Create product
// @Tags product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProductRequest true "Product"
// @Success 201 {object} models.Product
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /product [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req CreateProductRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	product, err := h.engine.CreateProduct(r.Context(), req.Name, *req.Cost, *req.AmountAvailable, claims.Username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update changes a product owned by the calling seller
// @Summary Update product
// @Tags product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body UpdateProductRequest true "Fields to change"
// @Success 200 {object} models.Product
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /product/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	patch := models.ProductPatch{Name: req.Name, Price: req.Cost, Stock: req.AmountAvailable}
	product, err := h.engine.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch, claims.Username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete soft-deletes a product owned by the calling seller
// @Summary Delete product
// @Tags product
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} services.ErrorResponse
// @Router /product/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := h.engine.SoftDeleteProduct(r.Context(), chi.URLParam(r, "id"), claims.Username); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get returns a product by id, deleted products included
// @Summary Get product
// @Tags product
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} services.ErrorResponse
// @Router /product/{id} [get]
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.engine.FindProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			services.SendErrorResponse(w, fmt.Sprintf("No product with id %s was found", id), http.StatusNotFound, nil)
			return
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Buy purchases one unit with the caller's whole balance
// @Summary Buy product
// @Description Spends the whole deposit; the surplus is returned as coins, largest first
// @Tags product
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} models.PurchaseResult
// @Failure 409 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /product/buy/{id} [post]
func (h *ProductHandler) Buy(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "id")
	result, err := h.engine.Purchase(r.Context(), productID, claims.Username)
	if err != nil {
		h.logger.Info("purchase rejected",
			zap.String("buyer", claims.Username),
			zap.String("product_id", productID),
			zap.Error(err))
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
