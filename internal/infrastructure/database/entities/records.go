package entities

import (
	"time"

	"gorm.io/datatypes"
)

// PromptRecord is a stored prompt generation or revision.
type PromptRecord struct {
	ID              string         `gorm:"type:varchar(40);primaryKey"`
	Username        string         `gorm:"type:varchar(255);not null;index"`
	OriginalPrompt  string         `gorm:"type:text;not null"`
	ImprovedPrompt  string         `gorm:"type:text"`
	MainDifferences string         `gorm:"type:text"`
	Tags            datatypes.JSON `gorm:"type:jsonb"`
	PointOfView     string         `gorm:"type:varchar(255)"`
	PointOfViews    datatypes.JSON `gorm:"type:jsonb"`
	ImageStyle      string         `gorm:"type:varchar(255)"`
	ImageStyles     datatypes.JSON `gorm:"type:jsonb"`
	ConversationID  string         `gorm:"type:varchar(40);index"`
	Timestamp       time.Time      `gorm:"not null"`
}

func (PromptRecord) TableName() string {
	return "prompt_records"
}

// ImageRecord is one stored image generation attempt.
type ImageRecord struct {
	ID              string         `gorm:"type:varchar(40);primaryKey"`
	Username        string         `gorm:"type:varchar(255);not null;index:idx_image_owner_error"`
	HasError        bool           `gorm:"not null;index:idx_image_owner_error"`
	Timestamp       time.Time      `gorm:"not null;index"`
	RequestPayload  datatypes.JSON `gorm:"type:jsonb"`
	ResponsePayload datatypes.JSON `gorm:"type:jsonb"`
	PromptID        string         `gorm:"type:varchar(40);index"`
	Prompt          string         `gorm:"type:text"`
	URL             string         `gorm:"type:text"`
	SmallURL        string         `gorm:"type:text"`
	MediumURL       string         `gorm:"type:text"`
	LargeURL        string         `gorm:"type:text"`
}

func (ImageRecord) TableName() string {
	return "image_records"
}

// ChatRecord is the envelope of one chat backend call.
type ChatRecord struct {
	ID           string         `gorm:"type:varchar(40);primaryKey"`
	Username     string         `gorm:"type:varchar(255);not null;index"`
	TimestampUTC time.Time      `gorm:"column:timestamp_utc;not null"`
	Request      datatypes.JSON `gorm:"type:jsonb"`
	Response     datatypes.JSON `gorm:"type:jsonb"`
	Error        string         `gorm:"type:text"`
}

func (ChatRecord) TableName() string {
	return "chat_records"
}
