package model

import "time"

type Question struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	SessionId uint      `gorm:"not null;index"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null;index"`
	Session   *Session  `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}
