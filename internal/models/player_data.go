package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlayerBalance tracks one player's holdings of one currency inside one
// experiment round. Balances never go negative; swaps that would overdraw
// are rejected before anything commits.
type PlayerBalance struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	PlayerID          uuid.UUID       `json:"player_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_player_round_currency"`
	ExperimentRoundID uuid.UUID       `json:"experiment_round_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_player_round_currency"`
	CurrencyID        uuid.UUID       `json:"currency_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_player_round_currency"`
	Balance           decimal.Decimal `json:"balance" gorm:"type:numeric(20,8);not null;default:0"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (PlayerBalance) TableName() string {
	return "player_balances"
}

func (pb *PlayerBalance) BeforeCreate(tx *gorm.DB) error {
	if pb.ID == uuid.Nil {
		pb.ID = uuid.New()
	}
	return nil
}

// PlayerCurrencyKnowledge records the single currency whose external
// reference price a player may observe during one experiment round. Written
// once at round start and immutable for the round's duration.
type PlayerCurrencyKnowledge struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PlayerID           uuid.UUID `json:"player_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_player_round_knowledge"`
	ExperimentRoundID  uuid.UUID `json:"experiment_round_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_player_round_knowledge"`
	RevealedCurrencyID uuid.UUID `json:"revealed_currency_id" gorm:"type:uuid;not null;index"`
	CreatedAt          time.Time `json:"created_at"`
}

func (PlayerCurrencyKnowledge) TableName() string {
	return "player_currency_knowledge"
}

func (pk *PlayerCurrencyKnowledge) BeforeCreate(tx *gorm.DB) error {
	if pk.ID == uuid.Nil {
		pk.ID = uuid.New()
	}
	return nil
}

// FeedbackItems is the free-form per-round summary shown to a player,
// stored as a JSON column.
type FeedbackItems struct {
	TradeCount    int               `json:"trade_count"`
	FinalBalances map[string]string `json:"final_balances"` // currency id -> amount
}

// Scan implements the Scanner interface for GORM
func (fi *FeedbackItems) Scan(value interface{}) error {
	if value == nil {
		*fi = FeedbackItems{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into FeedbackItems", value)
	}

	if len(bytes) == 0 {
		*fi = FeedbackItems{}
		return nil
	}

	return json.Unmarshal(bytes, fi)
}

// Value implements the Valuer interface for GORM
func (fi FeedbackItems) Value() (driver.Value, error) {
	return json.Marshal(fi)
}

// UserFeedback is generated automatically for every player when their round
// ends.
type UserFeedback struct {
	ID                uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	PlayerID          uuid.UUID     `json:"player_id" gorm:"type:uuid;not null;index"`
	ExperimentRoundID uuid.UUID     `json:"experiment_round_id" gorm:"type:uuid;not null;index"`
	FeedbackItems     FeedbackItems `json:"feedback_items" gorm:"type:json;not null"`
	CreatedAt         time.Time     `json:"created_at"`
}

func (UserFeedback) TableName() string {
	return "user_feedbacks"
}

func (uf *UserFeedback) BeforeCreate(tx *gorm.DB) error {
	if uf.ID == uuid.Nil {
		uf.ID = uuid.New()
	}
	return nil
}
