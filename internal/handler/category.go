package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AndreCode112/FinanceMartins/internal/middleware"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryHandler serves per-user payable categories.
type CategoryHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewCategoryHandler(db *gorm.DB, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{DB: db, Log: log}
}

type categoryReq struct {
	Name  string `form:"name" json:"name" binding:"required,max=80"`
	Color string `form:"color" json:"color" binding:"max=7"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req categoryReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parametros invalidos.")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"name": {"Informe o nome da categoria."},
		})
		return
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = "#5D7084"
	}

	category := models.PayableCategory{
		OwnerID: user.ID,
		Name:    name,
		Color:   color,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PayableCategory{}).
			Where("owner_id = ? AND name = ?", user.ID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return util.NewValidationError("name", "Ja existe uma categoria com este nome.")
		}
		slug, err := uniqueCategorySlug(tx, user.ID, name)
		if err != nil {
			return err
		}
		category.Slug = slug
		return tx.Create(&category).Error
	})
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	util.Success(c, util.Response{"category": serializeCategory(&category)})
}

func uniqueCategorySlug(tx *gorm.DB, ownerID uint, name string) (string, error) {
	base := util.Slugify(name)
	if base == "" {
		base = "categoria"
	}
	slug := base
	for counter := 2; ; counter++ {
		var count int64
		if err := tx.Model(&models.PayableCategory{}).
			Where("owner_id = ? AND slug = ?", ownerID, slug).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// Delete removes a category. Payables pointing at it are detached, never
// deleted.
func (h *CategoryHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var category models.PayableCategory
		if err := tx.Where("id = ? AND owner_id = ?", categoryID, user.ID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&models.Payable{}).Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	util.Success(c, util.Response{"deleted_id": categoryID})
}
