package model

import "time"

type Session struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	StartTime string    `gorm:"type:varchar(64);not null"`
	StartedAt time.Time `gorm:"not null;index"`
	Location  string    `gorm:"type:varchar(255)"`
	CloudId   *string   `gorm:"type:varchar(64);uniqueIndex"`
	Title     *string   `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
