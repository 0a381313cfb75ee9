package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SwapDirection string

const (
	SwapXForY SwapDirection = "x_for_y"
	SwapYForX SwapDirection = "y_for_x"
)

// Transaction is the immutable record of one executed swap. Rows are only
// ever appended; nothing updates or deletes them short of deleting the
// whole experiment.
type Transaction struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ExperimentRoundID uuid.UUID       `json:"experiment_round_id" gorm:"type:uuid;not null;index"`
	PlayerID          uuid.UUID       `json:"player_id" gorm:"type:uuid;not null;index"`
	CurrencyInID      uuid.UUID       `json:"currency_in_id" gorm:"type:uuid;not null;index"`
	AmountIn          decimal.Decimal `json:"amount_in" gorm:"type:numeric(20,8);not null"`
	CurrencyOutID     uuid.UUID       `json:"currency_out_id" gorm:"type:uuid;not null;index"`
	AmountOut         decimal.Decimal `json:"amount_out" gorm:"type:numeric(20,8);not null"`
	PriceRatio        decimal.Decimal `json:"price_ratio" gorm:"type:numeric(20,8);not null"`
	HasCompleted      bool            `json:"has_completed" gorm:"not null;default:true;index"`
	CreatedAt         time.Time       `json:"created_at" gorm:"index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
