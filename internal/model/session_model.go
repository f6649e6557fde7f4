package model

import (
	"time"
)

type Session struct {
	UserId            int64     `gorm:"primaryKey;autoIncrement:false"`
	Email             *string   `gorm:"type:varchar(255)"`
	VerificationCode  *string   `gorm:"type:varchar(16)"`
	ConversationState string    `gorm:"type:varchar(50);not null"`
	CaseText          *string   `gorm:"type:text"`
	IssuesText        *string   `gorm:"type:text"`
	AspectsText       *string   `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
