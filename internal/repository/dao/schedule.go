package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day       time.Time `gorm:"type:date;not null;index"`
	StartTime string    `gorm:"not null"`
	EndTime   string
	Title     string `gorm:"not null"`
	Speaker   string
	Origin    string
	Location  string
	Position  int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *ScheduleSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ScheduleDAO struct {
	db *gorm.DB
}

func NewScheduleDAO(db *gorm.DB) *ScheduleDAO {
	return &ScheduleDAO{
		db: db,
	}
}

func (d *ScheduleDAO) ListAll(ctx context.Context) ([]ScheduleSession, error) {
	var sessions []ScheduleSession

	result := d.db.WithContext(ctx).
		Order("day ASC, position ASC, start_time ASC").
		Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}

	return sessions, nil
}

// ReplaceAll swaps the whole agenda in one transaction.
func (d *ScheduleDAO) ReplaceAll(ctx context.Context, sessions []ScheduleSession) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ScheduleSession{}).Error; err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}
		return tx.Create(&sessions).Error
	})
}
