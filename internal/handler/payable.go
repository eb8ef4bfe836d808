package handler

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/AndreCode112/FinanceMartins/internal/middleware"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/payable"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PayableHandler exposes the payable engine over HTTP. All domain rules
// live in payable.Service; this layer only parses and serializes.
type PayableHandler struct {
	DB       *gorm.DB
	Payables *payable.Service
	Log      *zap.Logger
}

func NewPayableHandler(db *gorm.DB, svc *payable.Service, log *zap.Logger) *PayableHandler {
	return &PayableHandler{DB: db, Payables: svc, Log: log}
}

type payableReq struct {
	BankID            *uint  `form:"bank" json:"bank"`
	CategoryID        *uint  `form:"category" json:"category"`
	Title             string `form:"title" json:"title" binding:"required,max=120"`
	Description       string `form:"description" json:"description" binding:"max=255"`
	PayableType       string `form:"payable_type" json:"payable_type" binding:"required"`
	Status            string `form:"status" json:"status"`
	Amount            string `form:"amount" json:"amount" binding:"required"`
	DueDate           string `form:"due_date" json:"due_date" binding:"required"`
	PaymentDate       string `form:"payment_date" json:"payment_date"`
	PaymentNote       string `form:"payment_note" json:"payment_note" binding:"max=255"`
	InstallmentNumber *int   `form:"installment_number" json:"installment_number"`
	InstallmentTotal  *int   `form:"installment_total" json:"installment_total"`
	IsRecurring       bool   `form:"is_recurring" json:"is_recurring"`
}

func (h *PayableHandler) parse(c *gin.Context) (*payableReq, *payable.Input, bool) {
	var req payableReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parametros invalidos.")
		return nil, nil, false
	}

	verr := &util.ValidationError{}

	payableType := models.PayableType(req.PayableType)
	if !payableType.Valid() {
		verr.Add("payable_type", "Tipo de conta invalido.")
	}
	status := models.PayableStatus(req.Status)
	if req.Status == "" {
		status = models.StatusPending
	} else if !status.Valid() {
		verr.Add("status", "Status invalido.")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.Sign() <= 0 {
		verr.Add("amount", "Informe um valor positivo.")
	}
	dueDate, err := util.ParseDate(req.DueDate)
	if err != nil {
		verr.Add("due_date", "Data de vencimento invalida.")
	}
	paymentDate, err := util.ParseOptionalDate(req.PaymentDate)
	if err != nil {
		verr.Add("payment_date", "Data de pagamento invalida.")
	}

	if !verr.Empty() {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Fields)
		return nil, nil, false
	}

	in := &payable.Input{
		BankID:            req.BankID,
		CategoryID:        req.CategoryID,
		Title:             strings.TrimSpace(req.Title),
		Description:       strings.TrimSpace(req.Description),
		PayableType:       payableType,
		Status:            status,
		Amount:            amount.Round(2),
		DueDate:           dueDate,
		PaymentDate:       paymentDate,
		PaymentNote:       strings.TrimSpace(req.PaymentNote),
		InstallmentNumber: req.InstallmentNumber,
		InstallmentTotal:  req.InstallmentTotal,
		IsRecurring:       req.IsRecurring,
	}
	return &req, in, true
}

// Create inserts one payable, or expands an installment plan when the
// type is installment.
func (h *PayableHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	_, in, ok := h.parse(c)
	if !ok {
		return
	}

	if in.PayableType == models.PayableInstallment {
		number := 1
		if in.InstallmentNumber != nil {
			number = *in.InstallmentNumber
		}
		total := 0
		if in.InstallmentTotal != nil {
			total = *in.InstallmentTotal
		}
		created, err := h.Payables.CreatePlan(user.ID, payable.PlanInput{
			BankID:            in.BankID,
			CategoryID:        in.CategoryID,
			Title:             in.Title,
			Description:       in.Description,
			TotalAmount:       in.Amount,
			DueDate:           in.DueDate,
			InstallmentNumber: number,
			InstallmentTotal:  total,
			Status:            in.Status,
			PaymentDate:       in.PaymentDate,
			PaymentNote:       in.PaymentNote,
		})
		if err != nil {
			writeServiceError(c, h.Log, err)
			return
		}
		util.Success(c, util.Response{"payables": serializePayables(created)})
		return
	}

	created, err := h.Payables.Create(user.ID, *in)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"payable": serializePayable(created)})
}

func (h *PayableHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payables, err := h.Payables.List(user.ID)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"payables": serializePayables(payables)})
}

func (h *PayableHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payableID, ok := pathID(c, "id")
	if !ok {
		return
	}
	_, in, ok := h.parse(c)
	if !ok {
		return
	}

	updated, warnings, err := h.Payables.Update(user.ID, payableID, *in)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"payable":  serializePayable(updated),
		"warnings": warnings,
	})
}

func (h *PayableHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payableID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, warnings, err := h.Payables.Delete(user.ID, payableID)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	resp := util.Response{
		"deleted_ids": result.DeletedIDs,
		"warnings":    warnings,
	}
	if result.DeletedGroup != nil {
		resp["deleted_group"] = *result.DeletedGroup
	}
	util.Success(c, resp)
}

type statusReq struct {
	Status      string  `form:"status" json:"status" binding:"required"`
	PaymentDate string  `form:"payment_date" json:"payment_date"`
	PaymentNote *string `form:"payment_note" json:"payment_note"`
}

// UpdateStatus transitions one payable between pending and paid.
func (h *PayableHandler) UpdateStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payableID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req statusReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parametros invalidos.")
		return
	}
	paymentDate, err := util.ParseOptionalDate(req.PaymentDate)
	if err != nil {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"payment_date": {"Data de pagamento invalida."},
		})
		return
	}
	if req.PaymentNote != nil {
		trimmed := strings.TrimSpace(*req.PaymentNote)
		req.PaymentNote = &trimmed
	}

	status := models.PayableStatus(req.Status)
	change := payable.StatusChange{
		Status:      status,
		PaymentDate: paymentDate,
		PaymentNote: req.PaymentNote,
	}
	if status == models.StatusPending {
		change.ClearReceipt = true
	}

	updated, _, warnings, err := h.Payables.UpdateStatus(user.ID, payableID, change)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"payable":  serializePayable(updated),
		"warnings": warnings,
	})
}

type groupBulkReq struct {
	Action           string `form:"action" json:"action" binding:"required"`
	UntilInstallment *int   `form:"until_installment" json:"until_installment"`
	PaymentDate      string `form:"payment_date" json:"payment_date"`
	PaymentNote      string `form:"payment_note" json:"payment_note"`
}

// GroupBulkUpdate applies pay_until/pay_all/reopen_all to the whole
// installment group of the referenced payable.
func (h *PayableHandler) GroupBulkUpdate(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payableID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req groupBulkReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parametros invalidos.")
		return
	}
	paymentDate, err := util.ParseOptionalDate(req.PaymentDate)
	if err != nil {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"payment_date": {"Data de pagamento invalida."},
		})
		return
	}

	payables, warnings, err := h.Payables.GroupBulkUpdate(user.ID, payableID, payable.GroupBulkInput{
		Action:           req.Action,
		UntilInstallment: req.UntilInstallment,
		PaymentDate:      paymentDate,
		PaymentNote:      strings.TrimSpace(req.PaymentNote),
	})
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	resp := util.Response{
		"payables": serializePayables(payables),
		"warnings": warnings,
	}
	if len(payables) > 0 && payables[0].InstallmentGroup != nil {
		resp["group"] = *payables[0].InstallmentGroup
	}
	util.Success(c, resp)
}

type bulkActionReq struct {
	Action      string `json:"action" binding:"required"`
	PayableIDs  []uint `json:"payable_ids" binding:"required"`
	PaymentDate string `json:"payment_date"`
	PaymentNote string `json:"payment_note"`
}

// BulkAction applies mark_paid/mark_pending/delete to a selection.
func (h *PayableHandler) BulkAction(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req bulkActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Payload invalido.")
		return
	}
	if len(req.PayableIDs) == 0 {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"payable_ids": {"Selecione ao menos uma conta."},
		})
		return
	}
	paymentDate, err := util.ParseOptionalDate(req.PaymentDate)
	if err != nil {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"payment_date": {"Data de pagamento invalida."},
		})
		return
	}

	result, warnings, err := h.Payables.BulkAction(user.ID, payable.BulkActionInput{
		Action:      req.Action,
		PayableIDs:  req.PayableIDs,
		PaymentDate: paymentDate,
		PaymentNote: strings.TrimSpace(req.PaymentNote),
	})
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	resp := util.Response{
		"action":   result.Action,
		"warnings": warnings,
	}
	if result.Action == payable.BulkDelete {
		resp["deleted_ids"] = result.DeletedIDs
	} else {
		resp["payables"] = serializePayables(result.Payables)
	}
	util.Success(c, resp)
}

// History lists the newest audit entries of one payable.
func (h *PayableHandler) History(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payableID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.Payables.History(user.ID, payableID)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	usernames, err := h.changerNames(entries)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for i := range entries {
		name := ""
		if entries[i].ChangedByID != nil {
			name = usernames[*entries[i].ChangedByID]
		}
		out = append(out, serializeHistoryItem(&entries[i], name))
	}
	util.Success(c, util.Response{
		"payable_id": payableID,
		"history":    out,
	})
}

func (h *PayableHandler) changerNames(entries []models.PayableStatusHistory) (map[uint]string, error) {
	ids := make([]uint, 0, len(entries))
	seen := map[uint]bool{}
	for i := range entries {
		if entries[i].ChangedByID != nil && !seen[*entries[i].ChangedByID] {
			seen[*entries[i].ChangedByID] = true
			ids = append(ids, *entries[i].ChangedByID)
		}
	}
	names := map[uint]string{}
	if len(ids) == 0 {
		return names, nil
	}
	var users []models.User
	if err := h.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		names[users[i].ID] = users[i].Username
	}
	return names, nil
}

// UploadReceipt attaches a proof-of-payment file to a paid payable.
func (h *PayableHandler) UploadReceipt(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payableID, ok := pathID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"receipt": {"Selecione um arquivo de comprovante."},
		})
		return
	}
	f, err := file.Open()
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	defer f.Close()

	updated, warnings, err := h.Payables.AttachReceipt(user.ID, payableID, f, file.Filename, file.Size)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"payable":  serializePayable(updated),
		"warnings": warnings,
	})
}

// DeleteReceipt detaches and removes the receipt of a payable.
func (h *PayableHandler) DeleteReceipt(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payableID, ok := pathID(c, "id")
	if !ok {
		return
	}

	updated, warnings, err := h.Payables.DeleteReceipt(user.ID, payableID)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"payable":  serializePayable(updated),
		"warnings": warnings,
	})
}

// ViewReceipt streams the receipt inline with its stored filename.
func (h *PayableHandler) ViewReceipt(c *gin.Context) {
	user := middleware.CurrentUser(c)
	payableID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reader, name, err := h.Payables.OpenReceipt(user.ID, payableID)
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}
