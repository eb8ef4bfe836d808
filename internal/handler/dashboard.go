package handler

import (
	"errors"
	"net/http"

	"github.com/AndreCode112/FinanceMartins/internal/clock"
	"github.com/AndreCode112/FinanceMartins/internal/middleware"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/payable"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultBanks are seeded for every new user on first dashboard load.
var defaultBanks = []models.Bank{
	{Name: "Nubank", Slug: "nubank", Color: "#8A05BE", Icon: "ph-credit-card"},
	{Name: "Itau", Slug: "itau", Color: "#EC7000", Icon: "ph-bank"},
	{Name: "Inter", Slug: "inter", Color: "#FF7A00", Icon: "ph-wallet"},
}

// dashboardWidgetIDs is the canonical widget set, in default order.
var dashboardWidgetIDs = []string{
	"summary_cards",
	"reminders",
	"reconciliation",
	"monthly_chart",
	"search_filters",
	"reports",
	"transactions_table",
}

// DashboardHandler assembles the full dashboard payload and stores the
// per-user widget layout.
type DashboardHandler struct {
	DB       *gorm.DB
	Payables *payable.Service
	Clock    clock.Clock
	Log      *zap.Logger
}

func NewDashboardHandler(db *gorm.DB, svc *payable.Service, clk clock.Clock, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{DB: db, Payables: svc, Clock: clk, Log: log}
}

// Overview returns everything the dashboard needs in one roundtrip. It
// also runs the first-load side effects: seeding default banks and
// normalizing legacy ungrouped installments.
func (h *DashboardHandler) Overview(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.ensureDefaultBanks(user.ID); err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	if err := h.Payables.NormalizeLegacy(user.ID); err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	var banks []models.Bank
	if err := h.DB.Where("owner_id = ?", user.ID).Order("id").Find(&banks).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	var categories []models.PayableCategory
	if err := h.DB.Where("owner_id = ?", user.ID).Order("id").Find(&categories).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	var transactions []models.Transaction
	if err := h.DB.Preload("Bank").Where("owner_id = ?", user.ID).
		Order("transaction_date, id").Find(&transactions).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	payables, err := h.Payables.List(user.ID)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	var events []models.Event
	if err := h.DB.Where("owner_id = ?", user.ID).Order("starts_at, id").Find(&events).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	widgetOrder, err := h.widgetOrder(user.ID)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	bankList := make([]gin.H, 0, len(banks))
	for i := range banks {
		bankList = append(bankList, serializeBank(&banks[i]))
	}
	categoryList := make([]gin.H, 0, len(categories))
	for i := range categories {
		categoryList = append(categoryList, serializeCategory(&categories[i]))
	}
	transactionList := make([]gin.H, 0, len(transactions))
	for i := range transactions {
		transactionList = append(transactionList, serializeTransaction(&transactions[i]))
	}
	eventList := make([]gin.H, 0, len(events))
	for i := range events {
		eventList = append(eventList, serializeEvent(&events[i]))
	}

	util.Success(c, util.Response{
		"banks":                  bankList,
		"categories":             categoryList,
		"transactions":           transactionList,
		"payables":               serializePayables(payables),
		"events":                 eventList,
		"today":                  h.Clock.Today().Format(util.DateLayout),
		"dashboard_widget_order": widgetOrder,
	})
}

func (h *DashboardHandler) ensureDefaultBanks(ownerID uint) error {
	var count int64
	if err := h.DB.Model(&models.Bank{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	banks := make([]models.Bank, len(defaultBanks))
	copy(banks, defaultBanks)
	for i := range banks {
		banks[i].OwnerID = ownerID
	}
	return h.DB.Create(&banks).Error
}

func (h *DashboardHandler) widgetOrder(userID uint) ([]string, error) {
	var layout models.DashboardLayout
	err := h.DB.Where("user_id = ?", userID).First(&layout).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		order := make([]string, len(dashboardWidgetIDs))
		copy(order, dashboardWidgetIDs)
		return order, nil
	}
	if err != nil {
		return nil, err
	}
	return normalizeWidgetOrder(layout.WidgetOrder), nil
}

// normalizeWidgetOrder drops unknown and duplicate ids and appends any
// missing widget in default order, so stale layouts always round-trip to
// a complete list.
func normalizeWidgetOrder(order []string) []string {
	known := map[string]bool{}
	for _, id := range dashboardWidgetIDs {
		known[id] = true
	}
	normalized := make([]string, 0, len(dashboardWidgetIDs))
	seen := map[string]bool{}
	for _, id := range order {
		if known[id] && !seen[id] {
			seen[id] = true
			normalized = append(normalized, id)
		}
	}
	for _, id := range dashboardWidgetIDs {
		if !seen[id] {
			normalized = append(normalized, id)
		}
	}
	return normalized
}

type layoutReq struct {
	Order []string `json:"order"`
}

// SaveLayout persists the user's widget ordering.
func (h *DashboardHandler) SaveLayout(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req layoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"layout": {"Payload invalido."},
		})
		return
	}

	normalized := normalizeWidgetOrder(req.Order)
	var layout models.DashboardLayout
	err := h.DB.Where("user_id = ?", user.ID).First(&layout).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeServiceError(c, h.Log, err)
		return
	}
	layout.UserID = user.ID
	layout.WidgetOrder = normalized
	if err := h.DB.Save(&layout).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	util.Success(c, util.Response{"order": normalized})
}
