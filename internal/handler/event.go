package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/middleware"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventHandler serves calendar events, including bulk import from JSON
// dumps.
type EventHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewEventHandler(db *gorm.DB, log *zap.Logger) *EventHandler {
	return &EventHandler{DB: db, Log: log}
}

type eventReq struct {
	Title                 string `form:"title" json:"title" binding:"required,max=140"`
	CreatorName           string `form:"creator_name" json:"creator_name" binding:"max=120"`
	StartsAt              string `form:"starts_at" json:"starts_at" binding:"required"`
	EndsAt                string `form:"ends_at" json:"ends_at"`
	Description           string `form:"description" json:"description" binding:"max=500"`
	Location              string `form:"location" json:"location" binding:"max=120"`
	Color                 string `form:"color" json:"color" binding:"max=7"`
	Status                string `form:"status" json:"status"`
	Importance            string `form:"importance" json:"importance"`
	ReminderMinutesBefore *int   `form:"reminder_minutes_before" json:"reminder_minutes_before"`
	AllDay                bool   `form:"all_day" json:"all_day"`
}

func (h *EventHandler) parse(c *gin.Context, user *models.User) (*models.Event, bool) {
	var req eventReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parametros invalidos.")
		return nil, false
	}

	verr := &util.ValidationError{}

	startsAt, err := parseEventTime(req.StartsAt)
	if err != nil {
		verr.Add("starts_at", "Data de inicio invalida.")
	}
	var endsAt *time.Time
	if req.EndsAt != "" {
		t, err := parseEventTime(req.EndsAt)
		if err != nil {
			verr.Add("ends_at", "Data de termino invalida.")
		} else {
			endsAt = &t
		}
	}

	status := models.EventStatus(req.Status)
	if req.Status == "" {
		status = models.EventPending
	} else if !status.Valid() {
		verr.Add("status", "Status invalido.")
	}
	importance := models.EventImportance(req.Importance)
	if req.Importance == "" {
		importance = models.ImportanceMedium
	} else if !importance.Valid() {
		verr.Add("importance", "Importancia invalida.")
	}

	if !verr.Empty() {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Fields)
		return nil, false
	}

	creator := strings.TrimSpace(req.CreatorName)
	if creator == "" {
		creator = user.Username
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = "#4F46E5"
	}
	reminder := 60
	if req.ReminderMinutesBefore != nil {
		reminder = *req.ReminderMinutesBefore
	}

	return &models.Event{
		OwnerID:               user.ID,
		Title:                 strings.TrimSpace(req.Title),
		CreatorName:           creator,
		StartsAt:              startsAt,
		EndsAt:                endsAt,
		Description:           strings.TrimSpace(req.Description),
		Location:              strings.TrimSpace(req.Location),
		Color:                 color,
		Status:                status,
		Importance:            importance,
		ReminderMinutesBefore: reminder,
		AllDay:                req.AllDay,
	}, true
}

func parseEventTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", util.DateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", raw)
}

func (h *EventHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var events []models.Event
	if err := h.DB.Where("owner_id = ?", user.ID).Order("starts_at, id").Find(&events).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	out := make([]gin.H, 0, len(events))
	for i := range events {
		out = append(out, serializeEvent(&events[i]))
	}
	util.Success(c, util.Response{"events": out})
}

func (h *EventHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	event, ok := h.parse(c, user)
	if !ok {
		return
	}

	if err := h.DB.Create(event).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"event": serializeEvent(event)})
}

func (h *EventHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var existing models.Event
	if err := h.DB.Where("id = ? AND owner_id = ?", eventID, user.ID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeServiceError(c, h.Log, util.ErrNotFound)
		} else {
			writeServiceError(c, h.Log, err)
		}
		return
	}

	event, ok := h.parse(c, user)
	if !ok {
		return
	}
	event.ID = existing.ID
	event.CreatedAt = existing.CreatedAt
	event.LastRemindedAt = existing.LastRemindedAt

	if err := h.DB.Save(event).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"event": serializeEvent(event)})
}

func (h *EventHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result := h.DB.Where("id = ? AND owner_id = ?", eventID, user.ID).Delete(&models.Event{})
	if result.Error != nil {
		writeServiceError(c, h.Log, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		writeServiceError(c, h.Log, util.ErrNotFound)
		return
	}
	util.Success(c, util.Response{"deleted_id": eventID})
}

// importedEvent is one entry of a JSON event dump: {"fields": {...}}.
type importedEvent struct {
	Fields struct {
		Title       string `json:"title"`
		CreatorName string `json:"creator_name"`
		EventDate   string `json:"event_date"`
		Description string `json:"description"`
		Color       string `json:"color"`
		Status      string `json:"status"`
	} `json:"fields"`
}

// ImportJSON loads events in bulk from an uploaded JSON dump. Invalid
// items are skipped and reported, never aborting the whole import.
func (h *EventHandler) ImportJSON(c *gin.Context) {
	user := middleware.CurrentUser(c)

	file, err := c.FormFile("json_file")
	if err != nil {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"json_file": {"Envie um arquivo JSON."},
		})
		return
	}
	f, err := file.Open()
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	defer f.Close()

	var items []importedEvent
	if err := json.NewDecoder(f).Decode(&items); err != nil {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"json_file": {"Formato invalido. Esperado uma lista de objetos."},
		})
		return
	}

	var imported, skipped int
	var importErrors []string
	note := func(idx int, msg string) {
		skipped++
		if len(importErrors) < 100 {
			importErrors = append(importErrors, "Item "+strconv.Itoa(idx)+": "+msg)
		}
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for idx, item := range items {
			title := strings.TrimSpace(item.Fields.Title)
			if title == "" {
				note(idx+1, "titulo vazio.")
				continue
			}

			startsAt := time.Now()
			if item.Fields.EventDate != "" {
				if t, err := parseEventTime(item.Fields.EventDate); err == nil {
					startsAt = t
				}
			}
			status := models.EventStatus(item.Fields.Status)
			if !status.Valid() {
				status = models.EventPending
			}
			color := item.Fields.Color
			if color == "" {
				color = "#4F46E5"
			}

			event := models.Event{
				OwnerID:               user.ID,
				Title:                 truncate(title, 140),
				CreatorName:           truncate(strings.TrimSpace(item.Fields.CreatorName), 120),
				StartsAt:              startsAt,
				Description:           truncate(strings.TrimSpace(item.Fields.Description), 500),
				Color:                 truncate(color, 7),
				Status:                status,
				Importance:            models.ImportanceMedium,
				ReminderMinutesBefore: 60,
			}
			if err := tx.Create(&event).Error; err != nil {
				note(idx+1, "erro ao salvar: "+err.Error())
				continue
			}
			imported++
		}
		return nil
	})
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	util.Success(c, util.Response{
		"message":  fmt.Sprintf("Importacao concluida. Importados: %d | Ignorados: %d", imported, skipped),
		"imported": imported,
		"skipped":  skipped,
		"errors":   importErrors,
	})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
