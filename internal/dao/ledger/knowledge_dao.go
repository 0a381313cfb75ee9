package ledger

import (
	"errors"
	"fmt"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KnowledgeDAO handles database operations for currency-knowledge
// assignments
type KnowledgeDAO struct {
	db *gorm.DB
}

// KnowledgeDAOInterface defines the contract for knowledge data access
type KnowledgeDAOInterface interface {
	CreateWithTx(tx *gorm.DB, knowledge *models.PlayerCurrencyKnowledge) error
	Get(playerID, poolID uuid.UUID) (*models.PlayerCurrencyKnowledge, error)
	GetByPool(poolID uuid.UUID) ([]models.PlayerCurrencyKnowledge, error)
	DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error
}

// NewKnowledgeDAO creates a new knowledge DAO instance
func NewKnowledgeDAO(db *gorm.DB) KnowledgeDAOInterface {
	return &KnowledgeDAO{
		db: db,
	}
}

// CreateWithTx creates a new knowledge record within a transaction
func (dao *KnowledgeDAO) CreateWithTx(tx *gorm.DB, knowledge *models.PlayerCurrencyKnowledge) error {
	if err := tx.Create(knowledge).Error; err != nil {
		return fmt.Errorf("failed to create currency knowledge: %w", err)
	}
	return nil
}

// Get gets one player's assignment for one pool
func (dao *KnowledgeDAO) Get(playerID, poolID uuid.UUID) (*models.PlayerCurrencyKnowledge, error) {
	var knowledge models.PlayerCurrencyKnowledge
	err := dao.db.Where("player_id = ? AND experiment_round_id = ?", playerID, poolID).First(&knowledge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: currency knowledge for player %s", apperrors.ErrNotFound, playerID)
		}
		return nil, fmt.Errorf("failed to get currency knowledge: %w", err)
	}
	return &knowledge, nil
}

// GetByPool gets all assignments of one pool
func (dao *KnowledgeDAO) GetByPool(poolID uuid.UUID) ([]models.PlayerCurrencyKnowledge, error) {
	var knowledge []models.PlayerCurrencyKnowledge
	if err := dao.db.Where("experiment_round_id = ?", poolID).Find(&knowledge).Error; err != nil {
		return nil, fmt.Errorf("failed to get currency knowledge: %w", err)
	}
	return knowledge, nil
}

// DeleteByPoolsWithTx deletes all assignments of the given pools within a transaction
func (dao *KnowledgeDAO) DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error {
	if len(poolIDs) == 0 {
		return nil
	}
	if err := tx.Where("experiment_round_id IN ?", poolIDs).Delete(&models.PlayerCurrencyKnowledge{}).Error; err != nil {
		return fmt.Errorf("failed to delete currency knowledge: %w", err)
	}
	return nil
}
