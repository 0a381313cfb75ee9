package ledger

import (
	"fmt"

	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackDAO handles database operations for auto-generated round feedback
type FeedbackDAO struct {
	db *gorm.DB
}

// FeedbackDAOInterface defines the contract for feedback data access
type FeedbackDAOInterface interface {
	CreateWithTx(tx *gorm.DB, feedback *models.UserFeedback) error
	GetByPlayerAndPool(playerID, poolID uuid.UUID) ([]models.UserFeedback, error)
	DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error
}

// NewFeedbackDAO creates a new feedback DAO instance
func NewFeedbackDAO(db *gorm.DB) FeedbackDAOInterface {
	return &FeedbackDAO{
		db: db,
	}
}

// CreateWithTx creates a new feedback record within a transaction
func (dao *FeedbackDAO) CreateWithTx(tx *gorm.DB, feedback *models.UserFeedback) error {
	if err := tx.Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// GetByPlayerAndPool gets a player's feedback for one pool
func (dao *FeedbackDAO) GetByPlayerAndPool(playerID, poolID uuid.UUID) ([]models.UserFeedback, error) {
	var feedbacks []models.UserFeedback
	if err := dao.db.Where("player_id = ? AND experiment_round_id = ?", playerID, poolID).Find(&feedbacks).Error; err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return feedbacks, nil
}

// DeleteByPoolsWithTx deletes all feedback of the given pools within a transaction
func (dao *FeedbackDAO) DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error {
	if len(poolIDs) == 0 {
		return nil
	}
	if err := tx.Where("experiment_round_id IN ?", poolIDs).Delete(&models.UserFeedback{}).Error; err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}
