package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeAdmin  UserType = "admin"
	UserTypePlayer UserType = "player"
)

// User is the shared identity for admins and players. Role-specific data
// lives on AdminUser / PlayerUser, keyed by the same id.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username  string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	UserType  UserType  `json:"user_type" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// AdminUser creates and manages experiments.
type AdminUser struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

func (a *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// PlayerUser participates in experiments as a member of one group.
type PlayerUser struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	GroupID          *uuid.UUID       `json:"group_id" gorm:"type:uuid;index"`
	PaymentAmountILS *decimal.Decimal `json:"payment_amount_ils,omitempty" gorm:"type:numeric(10,2)"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (PlayerUser) TableName() string {
	return "player_users"
}

func (p *PlayerUser) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
