package handler

import (
	"net/http"

	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/internal/pagination"
	"github.com/kitandahub/kitanda/pkg/database"
	"github.com/kitandahub/kitanda/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListActivities returns one page of the caller's store activity feed,
// newest first
func ListActivities(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	var params pagination.Params
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pagination parameters"})
	}

	tx := database.GetDB().Model(&model.Activity{}).Where("store_id = ?", store.ID)
	page, err := pagination.Query[model.Activity](c.Request().Context(), tx, params)
	if err != nil {
		log.Error("Failed to list activities",
			zap.Uint("store_id", store.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve activities"})
	}

	return c.JSON(http.StatusOK, page)
}

// storeResolutionError maps store-resolution failures onto HTTP responses
func storeResolutionError(c echo.Context, err error) error {
	switch err {
	case errNotAuthenticated:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	case errStoreNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	default:
		logger.FromEcho(c).Error("Failed to resolve store", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve store"})
	}
}
