package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/google/uuid"

	"github.com/squiirlabs/marketplace/internal/api"
	"github.com/squiirlabs/marketplace/internal/auth"
	"github.com/squiirlabs/marketplace/internal/domain"
	"github.com/squiirlabs/marketplace/internal/storage"
)

const (
	maxImageBytes = 8 << 20
	recentLimit   = 5
)

type ProductStore interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id, ownerID string, update ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id, ownerID string) error
	List(ctx context.Context) ([]domain.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error)
	ListRecentByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Product, error)
}

type Handler struct {
	store  ProductStore
	blobs  storage.BlobStore
	logger *slog.Logger
}

func NewHandler(store ProductStore, blobs storage.BlobStore, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		blobs:  blobs,
		logger: logger,
	}
}

type productForm struct {
	name        string
	description string
	price       int64
}

func parseProductForm(r *http.Request) (productForm, bool) {
	form := productForm{
		name:        r.FormValue("name"),
		description: r.FormValue("description"),
	}
	if form.name == "" || form.description == "" {
		return form, false
	}

	price, err := strconv.ParseInt(r.FormValue("price"), 10, 64)
	if err != nil || price < 0 {
		return form, false
	}
	form.price = price

	return form, true
}

// HandleCreate lists a new product for the authenticated seller. The body is
// multipart form data: name, description, price (minor units) and an image
// file, which lands in blob storage.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	form, ok := parseProductForm(r)
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "name, description and a non-negative price are required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "product image is required")
		return
	}
	defer func() { _ = file.Close() }()

	key := "products/" + uuid.New().String() + path.Ext(header.Filename)
	imageURL, err := h.blobs.Put(r.Context(), key, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("failed to store product image", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	product := &domain.Product{
		Name:        form.name,
		Description: form.description,
		Price:       form.price,
		OwnerID:     identity.UserID,
		ImageURL:    imageURL,
	}
	if err := h.store.Create(r.Context(), product); err != nil {
		h.logger.Error("failed to create product", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "owner_id", identity.UserID)
	api.WriteJSON(w, http.StatusCreated, product)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "missing product id")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	form, ok := parseProductForm(r)
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "name, description and a non-negative price are required")
		return
	}

	update := ProductUpdate{
		Name:        form.name,
		Description: form.description,
		Price:       form.price,
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer func() { _ = file.Close() }()

		key := "products/" + uuid.New().String() + path.Ext(header.Filename)
		url, err := h.blobs.Put(r.Context(), key, header.Header.Get("Content-Type"), file)
		if err != nil {
			h.logger.Error("failed to store product image", "error", err)
			api.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		update.ImageURL = url
	}

	product, err := h.store.Update(r.Context(), id, identity.UserID, update)
	if err != nil {
		if status, ok := api.ClientStatus(err); ok {
			api.WriteError(w, status, "product not found")
			return
		}
		h.logger.Error("failed to update product", "error", err, "product_id", id)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("product updated", "product_id", id)
	api.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "missing product id")
		return
	}

	if err := h.store.Delete(r.Context(), id, identity.UserID); err != nil {
		if status, ok := api.ClientStatus(err); ok {
			api.WriteError(w, status, "product not found")
			return
		}
		h.logger.Error("failed to delete product", "error", err, "product_id", id)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	api.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	products, err := h.store.ListByOwner(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("failed to list seller products", "error", err, "owner_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	api.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	products, err := h.store.ListRecentByOwner(r.Context(), identity.UserID, recentLimit)
	if err != nil {
		h.logger.Error("failed to list recent products", "error", err, "owner_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	api.WriteJSON(w, http.StatusOK, products)
}
