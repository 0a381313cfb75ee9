package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Experiment is the top-level configuration: how many rounds, players and
// groups a session has. StartedAt/EndedAt are set at most once each and
// EndedAt requires StartedAt.
type Experiment struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name                string     `json:"name" gorm:"size:200;not null"`
	AdminID             uuid.UUID  `json:"admin_id" gorm:"type:uuid;not null;index"`
	NumRounds           int        `json:"num_rounds" gorm:"not null"`
	NumTrainingRounds   int        `json:"num_training_rounds" gorm:"not null"`
	NumRoundsForPayment int        `json:"num_rounds_for_payment" gorm:"not null"`
	NumPlayers          int        `json:"num_players" gorm:"not null"`
	NumGroups           int        `json:"num_groups" gorm:"not null"`
	CreatedAt           time.Time  `json:"created_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	EndedAt             *time.Time `json:"ended_at,omitempty"`
}

func (Experiment) TableName() string {
	return "experiments"
}

func (e *Experiment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Group is a set of players sharing one pool per round. Groups are created
// together with their experiment, numbered 1..NumGroups, and never added
// afterwards.
type Group struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ExperimentID uuid.UUID `json:"experiment_id" gorm:"type:uuid;not null;index"`
	GroupNumber  int       `json:"group_number" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Group) TableName() string {
	return "groups"
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
