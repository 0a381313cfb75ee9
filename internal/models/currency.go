package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Currency is a tradable asset used as one side of a pool. The core only
// ever checks existence; catalog management lives outside this service.
type Currency struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Symbol    string    `json:"symbol" gorm:"size:10;uniqueIndex;not null"`
	NameEn    string    `json:"name_en" gorm:"size:100;not null"`
	NameHe    string    `json:"name_he" gorm:"size:100;not null"`
	ImageURL  string    `json:"image_url,omitempty" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
}

func (Currency) TableName() string {
	return "currencies"
}

func (c *Currency) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
