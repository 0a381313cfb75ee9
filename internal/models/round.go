package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Round is the immutable template shared by all groups: currency pair,
// external reference prices, initial reserves and timing. It holds no live
// reserves itself; those live on the per-group ExperimentRound instances.
type Round struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ExperimentID    uuid.UUID       `json:"experiment_id" gorm:"type:uuid;not null;index"`
	RoundNumber     int             `json:"round_number" gorm:"not null"`
	IsTrainingRound bool            `json:"is_training_round" gorm:"not null;index"`
	CountsForPayment bool           `json:"counts_for_payment" gorm:"not null;index"`
	DurationMinutes int             `json:"duration_minutes" gorm:"not null"`
	CurrencyXID     uuid.UUID       `json:"currency_x_id" gorm:"type:uuid;not null;index"`
	CurrencyYID     uuid.UUID       `json:"currency_y_id" gorm:"type:uuid;not null;index"`
	ExternalPriceX  decimal.Decimal `json:"external_price_x" gorm:"type:numeric(20,8);not null"`
	ExternalPriceY  decimal.Decimal `json:"external_price_y" gorm:"type:numeric(20,8);not null"`
	InitialReserveX decimal.Decimal `json:"initial_reserve_x" gorm:"type:numeric(20,8);not null"`
	InitialReserveY decimal.Decimal `json:"initial_reserve_y" gorm:"type:numeric(20,8);not null"`
	CreatedAt       time.Time       `json:"created_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
}

func (Round) TableName() string {
	return "rounds"
}

func (r *Round) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ExperimentRound is the live constant-product pool for one group in one
// round. Reserves carry 8 fractional digits; KConstant carries 16 so the
// division step of a swap does not truncate the invariant.
//
// Whenever IsActive is true: ReserveX > 0, ReserveY > 0 and
// ReserveX * ReserveY == KConstant within 1e-8.
type ExperimentRound struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	RoundID    uuid.UUID       `json:"round_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_round_group"`
	GroupID    uuid.UUID       `json:"group_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_round_group"`
	ReserveX   decimal.Decimal `json:"reserve_x" gorm:"type:numeric(20,8);not null"`
	ReserveY   decimal.Decimal `json:"reserve_y" gorm:"type:numeric(20,8);not null"`
	KConstant  decimal.Decimal `json:"k_constant" gorm:"type:numeric(40,16);not null"`
	FeePercent decimal.Decimal `json:"fee_percent" gorm:"type:numeric(5,2);not null;default:0"`
	IsActive   bool            `json:"is_active" gorm:"not null;default:false;index"`
	StartedAt  *time.Time      `json:"started_at,omitempty" gorm:"index"`
	EndedAt    *time.Time      `json:"ended_at,omitempty" gorm:"index"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (ExperimentRound) TableName() string {
	return "experiment_rounds"
}

func (er *ExperimentRound) BeforeCreate(tx *gorm.DB) error {
	if er.ID == uuid.Nil {
		er.ID = uuid.New()
	}
	return nil
}
