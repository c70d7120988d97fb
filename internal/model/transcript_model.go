package model

import "time"

type Transcript struct {
	Id         uint      `gorm:"primaryKey;autoIncrement"`
	SessionId  uint      `gorm:"not null;index"`
	Timestamp  string    `gorm:"type:varchar(16)"`
	RecordedAt time.Time `gorm:"not null"`
	Text       string    `gorm:"type:text;not null"`
	Session    *Session  `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (Transcript) TableName() string {
	return "transcripts"
}
