package handler

import (
	"fmt"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/pkg/database"
	"github.com/kitandahub/kitanda/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListStoreUsers returns the dashboard users of the caller's store
func ListStoreUsers(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	var users []model.StoreUser
	if result := database.GetDB().Where("store_id = ?", store.ID).Order("created_at ASC").Find(&users); result.Error != nil {
		log.Error("Failed to list store users",
			zap.Uint("store_id", store.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve store users"})
	}

	return c.JSON(http.StatusOK, users)
}

// AddStoreUser adds a user to the caller's store
func AddStoreUser(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
	}
	if req.Role == "" {
		req.Role = model.RoleMember
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleMember {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin or member"})
	}

	var count int64
	database.GetDB().Model(&model.StoreUser{}).
		Where("store_id = ? AND email = ?", store.ID, req.Email).
		Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists in this store"})
	}

	user := model.StoreUser{
		Name:    req.Name,
		Email:   req.Email,
		Role:    req.Role,
		StoreID: store.ID,
	}

	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create store user",
			zap.Uint("store_id", store.ID),
			zap.String("email", req.Email),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store user creation failed"})
	}

	recordActivity(c, store.ID, model.ActionCreate, "user",
		fmt.Sprintf("Usuário %s adicionado", user.Email))

	log.Info("Store user added",
		zap.Uint("store_id", store.ID),
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role))

	return c.JSON(http.StatusCreated, user)
}

// RemoveStoreUser removes a user from the caller's store. The last admin
// can never be removed: every store keeps at least one admin.
func RemoveStoreUser(c echo.Context) error {
	log := logger.FromEcho(c)

	store, err := currentStore(c)
	if err != nil {
		return storeResolutionError(c, err)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var user model.StoreUser
	if result := database.GetDB().Where("store_id = ?", store.ID).First(&user, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store user not found"})
	}

	if user.Role == model.RoleAdmin {
		var admins int64
		database.GetDB().Model(&model.StoreUser{}).
			Where("store_id = ? AND role = ?", store.ID, model.RoleAdmin).
			Count(&admins)
		if admins <= 1 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot remove the last admin"})
		}
	}

	if result := database.GetDB().Delete(&user); result.Error != nil {
		log.Error("Failed to remove store user",
			zap.Uint("store_id", store.ID),
			zap.Uint64("user_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store user removal failed"})
	}

	recordActivity(c, store.ID, model.ActionDelete, "user",
		fmt.Sprintf("Usuário %s removido", user.Email))

	return c.JSON(http.StatusOK, echo.Map{"message": "Store user removed successfully"})
}
