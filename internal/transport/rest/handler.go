// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/productdesk/internal/errors"
	"github.com/abgdnv/productdesk/internal/service"
	plog "github.com/abgdnv/productdesk/pkg/logger"
	"github.com/abgdnv/productdesk/pkg/web"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 16

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  plog.Component(logger, "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product catalog.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// ListAll returns every product.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(ctx, "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(ctx, "Received request to create product", "name", input.Name)

	created, err := h.service.Create(ctx, input)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(ctx, "Product created successfully", "ID", created.Product.ID, "Name", created.Product.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// Update replaces name and price of the product in the path.
// An unknown id is not an error; the listing simply comes back unchanged.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(ctx, "Received request to update product", "ID", id)

	listing, err := h.service.Update(ctx, id, input)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	h.logger.InfoContext(ctx, "Product update applied", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, listing)
}

// DeleteByID deletes the product in the path.
// An unknown id is not an error; the listing simply comes back unchanged.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(ctx, "Received request to delete product", "ID", id)

	listing, err := h.service.DeleteByID(ctx, id)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	h.logger.InfoContext(ctx, "Product delete applied", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, listing)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var input service.ProductInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return input, false
	}
	return input, true
}

// respondServiceError maps validation failures to 400 and everything else to 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	ctx := r.Context()
	if errors.Is(err, perrors.ErrValidation) {
		if fields, ok := web.ValidationFields(err); ok {
			h.logger.WarnContext(ctx, "Validation errors occurred", "errors", fields)
			web.RespondValidation(w, h.logger, fields)
			return
		}
		var vErr *perrors.ValidationError
		if errors.As(err, &vErr) {
			h.logger.WarnContext(ctx, "Validation error occurred", "field", vErr.Field, "reason", vErr.Reason)
			web.RespondValidation(w, h.logger, map[string]string{vErr.Field: vErr.Reason})
			return
		}
	}
	h.logger.ErrorContext(ctx, failure, "error", err)
	web.RespondError(w, h.logger, http.StatusInternalServerError, failure)
}
