package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission is one product entry with its uploaded media URLs. Records are
// created once and never updated or deleted by the API.
type Submission struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProductNumber int    `gorm:"default:1" json:"productNumber"`
	UserName      string `gorm:"size:255;not null;index:idx_submissions_user" json:"userName"`
	UserEmail     string `gorm:"size:255;not null;index:idx_submissions_user" json:"userEmail"`
	Ingredients   string `gorm:"not null" json:"ingredients"`
	Size          string `gorm:"size:64;not null" json:"size"`

	Image1URL    string `gorm:"not null" json:"image1Url"`
	Image2URL    string `json:"image2Url,omitempty"`
	Image3URL    string `json:"image3Url,omitempty"`
	Image4URL    string `json:"image4Url,omitempty"`
	VideoURL     string `json:"videoUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	// Cost is stored as text, matching what the form submits.
	Cost        string    `gorm:"size:64;not null" json:"cost"`
	Server      string    `gorm:"size:255;not null" json:"server"`
	Description string    `gorm:"not null" json:"description"`
	Date        time.Time `json:"date"`

	// Assets keeps the raw upload receipts (object key, etag, content type)
	// per attachment slot.
	Assets datatypes.JSON `json:"assets,omitempty"`
}
