package model

type Summary struct {
	SessionId uint     `gorm:"primaryKey;autoIncrement:false"`
	Summary   string   `gorm:"type:text"`
	Title     string   `gorm:"type:varchar(255)"`
	Session   *Session `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (Summary) TableName() string {
	return "summaries"
}
