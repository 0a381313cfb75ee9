package rounds

import (
	"errors"
	"fmt"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoundDAO handles database operations for round templates
type RoundDAO struct {
	db *gorm.DB
}

// RoundDAOInterface defines the contract for round data access
type RoundDAOInterface interface {
	Create(round *models.Round) error
	GetByID(roundID uuid.UUID) (*models.Round, error)
	GetByExperiment(experimentID uuid.UUID) ([]models.Round, error)
	Save(round *models.Round) error
	SaveWithTx(tx *gorm.DB, round *models.Round) error
	DeleteByExperimentWithTx(tx *gorm.DB, experimentID uuid.UUID) error
}

// NewRoundDAO creates a new round DAO instance
func NewRoundDAO(db *gorm.DB) RoundDAOInterface {
	return &RoundDAO{
		db: db,
	}
}

// Create creates a new round record
func (dao *RoundDAO) Create(round *models.Round) error {
	if err := dao.db.Create(round).Error; err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// GetByID retrieves a round by ID
func (dao *RoundDAO) GetByID(roundID uuid.UUID) (*models.Round, error) {
	var round models.Round
	if err := dao.db.First(&round, "id = ?", roundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: round %s", apperrors.ErrNotFound, roundID)
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return &round, nil
}

// GetByExperiment gets all rounds of an experiment ordered by round number
func (dao *RoundDAO) GetByExperiment(experimentID uuid.UUID) ([]models.Round, error) {
	var rounds []models.Round
	if err := dao.db.Where("experiment_id = ?", experimentID).Order("round_number").Find(&rounds).Error; err != nil {
		return nil, fmt.Errorf("failed to get rounds: %w", err)
	}
	return rounds, nil
}

// Save persists changes to an existing round record
func (dao *RoundDAO) Save(round *models.Round) error {
	if err := dao.db.Save(round).Error; err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

// SaveWithTx persists changes to an existing round record within a transaction
func (dao *RoundDAO) SaveWithTx(tx *gorm.DB, round *models.Round) error {
	if err := tx.Save(round).Error; err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

// DeleteByExperimentWithTx deletes all rounds of an experiment within a transaction
func (dao *RoundDAO) DeleteByExperimentWithTx(tx *gorm.DB, experimentID uuid.UUID) error {
	if err := tx.Where("experiment_id = ?", experimentID).Delete(&models.Round{}).Error; err != nil {
		return fmt.Errorf("failed to delete rounds: %w", err)
	}
	return nil
}
