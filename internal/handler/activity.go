package handler

import (
	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/pkg/database"
	"github.com/kitandahub/kitanda/pkg/logger"
	"github.com/kitandahub/kitanda/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// recordActivity appends an entry to the store activity feed. The feed is
// advisory: a write failure is counted and logged but never fails the
// request that triggered it.
func recordActivity(c echo.Context, storeID uint, actionType, resourceType, description string) {
	log := logger.FromEcho(c)

	activity := model.Activity{
		StoreID:      storeID,
		ActionType:   actionType,
		ResourceType: resourceType,
		Description:  description,
	}
	if claims, err := currentClaims(c); err == nil {
		activity.UserID = claims.IdentityID
		activity.UserName = claims.Email
	}

	if result := database.GetDB().Create(&activity); result.Error != nil {
		log.Warn("Failed to write activity entry",
			zap.Uint("store_id", storeID),
			zap.String("action_type", actionType),
			zap.String("resource_type", resourceType),
			zap.Error(result.Error))
		metrics.AuditWriteFailureCounter.Inc()
	}
}
