package handler

import (
	"net/http"

	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/pkg/database"
	"github.com/kitandahub/kitanda/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListPlans returns the subscription plans, cheapest first
func ListPlans(c echo.Context) error {
	log := logger.FromEcho(c)

	var plans []model.Plan
	if result := database.GetDB().Order("price ASC").Find(&plans); result.Error != nil {
		log.Error("Failed to list plans", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve plans"})
	}

	return c.JSON(http.StatusOK, plans)
}
