package logbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/user"
	"gorm.io/gorm"
)

// Service 实现养护记录和提醒的增删改查，所有操作只作用于调用者自己的数据
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// firstOwned 读取属于调用者的一条记录，不存在和不属于调用者都返回404
func firstOwned(db *gorm.DB, p user.Principal, id uint, dest any, notFound string) error {
	err := db.Where("id = ? AND user_id = ?", id, p.UserID).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFound)
	}
	return err
}

// deleteOwned 删除属于调用者的一条记录
func deleteOwned(db *gorm.DB, p user.Principal, id uint, model any, notFound string) error {
	res := db.Where("id = ? AND user_id = ?", id, p.UserID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

// ListLogs 按执行时间倒序返回养护记录
func (s *Service) ListLogs(ctx context.Context, p user.Principal) ([]LogEntrySchema, error) {
	var entries []LogEntry
	err := s.db.WithContext(ctx).Where("user_id = ?", p.UserID).
		Order("performed_at DESC").Order("id DESC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("查询养护记录失败: %w", err)
	}
	out := make([]LogEntrySchema, 0, len(entries))
	for i := range entries {
		out = append(out, toLogSchema(&entries[i]))
	}
	return out, nil
}

func (s *Service) CreateLog(ctx context.Context, p user.Principal, in LogEntryCreate) (LogEntrySchema, error) {
	entry := LogEntry{
		UserID:      p.UserID,
		Title:       in.Title,
		Note:        in.Note,
		PerformedAt: in.PerformedAt,
		Category:    in.Category,
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(&entry).Error; err != nil {
		return LogEntrySchema{}, fmt.Errorf("创建养护记录失败: %w", err)
	}
	return toLogSchema(&entry), nil
}

func (s *Service) UpdateLog(ctx context.Context, p user.Principal, id uint, in LogEntryUpdate) (LogEntrySchema, error) {
	db := s.db.WithContext(ctx)
	var entry LogEntry
	if err := firstOwned(db, p, id, &entry, "Log entry not found."); err != nil {
		return LogEntrySchema{}, err
	}
	if in.Title != nil {
		entry.Title = *in.Title
	}
	if in.Note != nil {
		entry.Note = *in.Note
	}
	if in.PerformedAt != nil {
		entry.PerformedAt = *in.PerformedAt
	}
	if in.Category != nil {
		entry.Category = *in.Category
	}
	if err := db.Omit("User").Save(&entry).Error; err != nil {
		return LogEntrySchema{}, fmt.Errorf("更新养护记录失败: %w", err)
	}
	return toLogSchema(&entry), nil
}

func (s *Service) DeleteLog(ctx context.Context, p user.Principal, id uint) error {
	return deleteOwned(s.db.WithContext(ctx), p, id, &LogEntry{}, "Log entry not found.")
}

// ListReminders 按计划时间倒序返回提醒
func (s *Service) ListReminders(ctx context.Context, p user.Principal) ([]ReminderSchema, error) {
	var reminders []Reminder
	err := s.db.WithContext(ctx).Where("user_id = ?", p.UserID).
		Order("scheduled_at DESC").Order("id DESC").Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("查询提醒失败: %w", err)
	}
	out := make([]ReminderSchema, 0, len(reminders))
	for i := range reminders {
		out = append(out, toReminderSchema(&reminders[i]))
	}
	return out, nil
}

func (s *Service) CreateReminder(ctx context.Context, p user.Principal, in ReminderCreate) (ReminderSchema, error) {
	r := Reminder{
		UserID:      p.UserID,
		Title:       in.Title,
		ScheduledAt: in.ScheduledFor,
		Frequency:   in.Frequency,
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(&r).Error; err != nil {
		return ReminderSchema{}, fmt.Errorf("创建提醒失败: %w", err)
	}
	return toReminderSchema(&r), nil
}

func (s *Service) UpdateReminder(ctx context.Context, p user.Principal, id uint, in ReminderUpdate) (ReminderSchema, error) {
	db := s.db.WithContext(ctx)
	var r Reminder
	if err := firstOwned(db, p, id, &r, "Reminder not found."); err != nil {
		return ReminderSchema{}, err
	}
	if in.Title != nil {
		r.Title = *in.Title
	}
	if in.ScheduledFor != nil {
		r.ScheduledAt = *in.ScheduledFor
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Frequency != nil {
		r.Frequency = *in.Frequency
	}
	if err := db.Omit("User").Save(&r).Error; err != nil {
		return ReminderSchema{}, fmt.Errorf("更新提醒失败: %w", err)
	}
	return toReminderSchema(&r), nil
}

func (s *Service) DeleteReminder(ctx context.Context, p user.Principal, id uint) error {
	return deleteOwned(s.db.WithContext(ctx), p, id, &Reminder{}, "Reminder not found.")
}
