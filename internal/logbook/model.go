package logbook

import (
	"time"

	"github.com/SlpAus/plantify-backend/internal/user"
)

// 日志分类
const (
	CategoryWatering    = "watering"
	CategoryFertilizing = "fertilizing"
	CategoryTreatment   = "treatment"
	CategoryObservation = "observation"
	CategoryOther       = "other"
)

// 提醒频率
const (
	FrequencyOnce    = "once"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// LogEntry 是一条养护记录
type LogEntry struct {
	ID          uint      `gorm:"primarykey"`
	UserID      uint      `gorm:"index;not null"`
	User        user.User `gorm:"constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"size:255;not null"`
	Note        string    `gorm:"type:text"`
	PerformedAt time.Time `gorm:"index"`
	Category    string    `gorm:"size:20;not null;default:observation"`
	CreatedAt   time.Time
}

// Reminder 是一条养护提醒
type Reminder struct {
	ID          uint      `gorm:"primarykey"`
	UserID      uint      `gorm:"index;not null"`
	User        user.User `gorm:"constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"size:200;not null"`
	ScheduledAt time.Time `gorm:"index"`
	Description string    `gorm:"type:text"`
	Frequency   string    `gorm:"size:20;not null;default:once"`
	CreatedAt   time.Time
}

type LogEntryCreate struct {
	Title       string    `json:"title" binding:"required"`
	Note        string    `json:"note"`
	PerformedAt time.Time `json:"performedAt" binding:"required"`
	Category    string    `json:"category" binding:"required,oneof=watering fertilizing treatment observation other"`
}

type LogEntryUpdate struct {
	Title       *string    `json:"title" binding:"omitempty,min=1"`
	Note        *string    `json:"note"`
	PerformedAt *time.Time `json:"performedAt"`
	Category    *string    `json:"category" binding:"omitempty,oneof=watering fertilizing treatment observation other"`
}

type ReminderCreate struct {
	Title        string    `json:"title" binding:"required"`
	ScheduledFor time.Time `json:"scheduledFor" binding:"required"`
	Description  *string   `json:"description"`
	Frequency    string    `json:"frequency" binding:"required,oneof=once weekly monthly"`
}

type ReminderUpdate struct {
	Title        *string    `json:"title" binding:"omitempty,min=1"`
	ScheduledFor *time.Time `json:"scheduledFor"`
	Description  *string    `json:"description"`
	Frequency    *string    `json:"frequency" binding:"omitempty,oneof=once weekly monthly"`
}

// LogEntrySchema 是养护记录的响应体
type LogEntrySchema struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Note        string    `json:"note"`
	PerformedAt time.Time `json:"performedAt"`
	Category    string    `json:"category"`
}

// ReminderSchema 是提醒的响应体
type ReminderSchema struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	ScheduledFor time.Time `json:"scheduledFor"`
	Description  string    `json:"description"`
	Frequency    string    `json:"frequency"`
}

func toLogSchema(e *LogEntry) LogEntrySchema {
	return LogEntrySchema{ID: e.ID, Title: e.Title, Note: e.Note, PerformedAt: e.PerformedAt, Category: e.Category}
}

func toReminderSchema(r *Reminder) ReminderSchema {
	return ReminderSchema{ID: r.ID, Title: r.Title, ScheduledFor: r.ScheduledAt, Description: r.Description, Frequency: r.Frequency}
}
