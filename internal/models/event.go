package models

import "time"

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventCompleted EventStatus = "completed"
	EventCanceled  EventStatus = "canceled"
)

func (s EventStatus) Valid() bool {
	return s == EventPending || s == EventCompleted || s == EventCanceled
}

type EventImportance string

const (
	ImportanceLow      EventImportance = "low"
	ImportanceMedium   EventImportance = "medium"
	ImportanceHigh     EventImportance = "high"
	ImportanceCritical EventImportance = "critical"
)

func (i EventImportance) Valid() bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceCritical:
		return true
	}
	return false
}

// Event is a calendar entry shown on the dashboard.
type Event struct {
	ID                    uint            `gorm:"primaryKey"`
	OwnerID               uint            `gorm:"index;not null"`
	Title                 string          `gorm:"size:140;not null"`
	CreatorName           string          `gorm:"size:120"`
	StartsAt              time.Time       `gorm:"index;not null"`
	EndsAt                *time.Time      ``
	Description           string          `gorm:"size:500"`
	Location              string          `gorm:"size:120"`
	Color                 string          `gorm:"size:7;default:#4F46E5"`
	Status                EventStatus     `gorm:"size:12;default:pending"`
	Importance            EventImportance `gorm:"size:12;default:medium"`
	ReminderMinutesBefore int             `gorm:"default:60"`
	AllDay                bool            ``
	LastRemindedAt        *time.Time      ``
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
