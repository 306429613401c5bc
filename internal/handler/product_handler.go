package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/internal/pagination"
	"github.com/kitandahub/kitanda/internal/storage"
	"github.com/kitandahub/kitanda/pkg/database"
	"github.com/kitandahub/kitanda/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// ProductHandler serves the product catalog of the caller's store
type ProductHandler struct {
	objects storage.ObjectStorage
}

// NewProductHandler wires the product endpoints with the object storage
func NewProductHandler(objects storage.ObjectStorage) *ProductHandler {
	return &ProductHandler{objects: objects}
}

// ListProducts returns one page of the store's products, newest first
func (h *ProductHandler) ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	var params pagination.Params
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pagination parameters"})
	}

	tx := database.GetDB().Model(&model.Product{}).Where("store_id = ?", store.ID)
	page, err := pagination.Query[model.Product](c.Request().Context(), tx, params)
	if err != nil {
		log.Error("Failed to list products",
			zap.Uint("store_id", store.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, page)
}

// GetProduct retrieves a single product belonging to the caller's store
func (h *ProductHandler) GetProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	var product model.Product
	if result := database.GetDB().Where("store_id = ?", store.ID).First(&product, id); result.Error != nil {
		log.Warn("Product not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct adds a product to the caller's store
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse product creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	product := model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		StoreID:     store.ID,
	}

	if result := database.GetDB().Create(&product); result.Error != nil {
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product creation failed"})
	}

	recordActivity(c, store.ID, model.ActionCreate, "product",
		fmt.Sprintf("Produto %q adicionado", product.Name))

	log.Info("Product created",
		zap.Uint("id", product.ID),
		zap.String("name", product.Name),
		zap.Uint("store_id", store.ID))

	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct modifies a product belonging to the caller's store
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	var product model.Product
	if result := database.GetDB().Where("store_id = ?", store.ID).First(&product, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Stock = req.Stock
	product.Category = req.Category
	product.ImageURL = req.ImageURL

	if result := database.GetDB().Save(&product); result.Error != nil {
		log.Error("Failed to update product",
			zap.Uint64("id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product update failed"})
	}

	recordActivity(c, store.ID, model.ActionUpdate, "product",
		fmt.Sprintf("Produto %q atualizado", product.Name))

	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product and its image from the caller's store
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	var product model.Product
	if result := database.GetDB().Where("store_id = ?", store.ID).First(&product, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	if result := database.GetDB().Delete(&product); result.Error != nil {
		log.Error("Failed to delete product",
			zap.Uint64("id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product deletion failed"})
	}

	if product.ImageURL != "" {
		if err := h.objects.Remove(c.Request().Context(), product.ImageURL); err != nil {
			log.Warn("Failed to remove product image",
				zap.String("url", product.ImageURL),
				zap.Error(err))
		}
	}

	recordActivity(c, store.ID, model.ActionDelete, "product",
		fmt.Sprintf("Produto %q removido", product.Name))

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

// UploadProductImage validates and stores an image, returning its public URL
func (h *ProductHandler) UploadProductImage(c echo.Context) error {
	log := logger.FromEcho(c)

	if _, err := currentStore(c); err != nil {
		return storeResolutionError(c, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}

	src, err := file.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	url, err := h.objects.Upload(c.Request().Context(), contentType, file.Size, src)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrFileTooLarge) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		log.Error("Failed to store uploaded image", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}
