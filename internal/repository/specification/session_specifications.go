package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByCloudID struct {
	CloudID string
}

func (s ByCloudID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("cloud_id = ?", s.CloudID)
}

type BySessionID struct {
	SessionID uint
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// StartedBetween matches sessions whose canonical start falls in [From, To).
type StartedBetween struct {
	From time.Time
	To   time.Time
}

func (s StartedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("started_at >= ? AND started_at < ?", s.From, s.To)
}
