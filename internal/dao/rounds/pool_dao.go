package rounds

import (
	"errors"
	"fmt"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PoolDAO handles database operations for experiment rounds (live pool
// instances)
type PoolDAO struct {
	db *gorm.DB
}

// PoolDAOInterface defines the contract for pool instance data access
type PoolDAOInterface interface {
	CreateWithTx(tx *gorm.DB, pool *models.ExperimentRound) error
	GetByID(poolID uuid.UUID) (*models.ExperimentRound, error)
	GetByRound(roundID uuid.UUID) ([]models.ExperimentRound, error)
	GetByRoundAndGroup(roundID, groupID uuid.UUID) (*models.ExperimentRound, error)
	CountByRound(roundID uuid.UUID) (int64, error)
	SaveWithTx(tx *gorm.DB, pool *models.ExperimentRound) error
	DeleteByRoundsWithTx(tx *gorm.DB, roundIDs []uuid.UUID) error
}

// NewPoolDAO creates a new pool DAO instance
func NewPoolDAO(db *gorm.DB) PoolDAOInterface {
	return &PoolDAO{
		db: db,
	}
}

// CreateWithTx creates a new pool instance within a transaction
func (dao *PoolDAO) CreateWithTx(tx *gorm.DB, pool *models.ExperimentRound) error {
	if err := tx.Create(pool).Error; err != nil {
		return fmt.Errorf("failed to create experiment round: %w", err)
	}
	return nil
}

// GetByID retrieves a pool instance by ID
func (dao *PoolDAO) GetByID(poolID uuid.UUID) (*models.ExperimentRound, error) {
	var pool models.ExperimentRound
	if err := dao.db.First(&pool, "id = ?", poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: experiment round %s", apperrors.ErrNotFound, poolID)
		}
		return nil, fmt.Errorf("failed to get experiment round: %w", err)
	}
	return &pool, nil
}

// GetByRound gets all pool instances belonging to a round
func (dao *PoolDAO) GetByRound(roundID uuid.UUID) ([]models.ExperimentRound, error) {
	var pools []models.ExperimentRound
	if err := dao.db.Where("round_id = ?", roundID).Find(&pools).Error; err != nil {
		return nil, fmt.Errorf("failed to get experiment rounds: %w", err)
	}
	return pools, nil
}

// GetByRoundAndGroup gets the single pool instance of one group in one round
func (dao *PoolDAO) GetByRoundAndGroup(roundID, groupID uuid.UUID) (*models.ExperimentRound, error) {
	var pool models.ExperimentRound
	err := dao.db.Where("round_id = ? AND group_id = ?", roundID, groupID).First(&pool).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: experiment round for round %s group %s", apperrors.ErrNotFound, roundID, groupID)
		}
		return nil, fmt.Errorf("failed to get experiment round: %w", err)
	}
	return &pool, nil
}

// CountByRound counts the pool instances already created for a round
func (dao *PoolDAO) CountByRound(roundID uuid.UUID) (int64, error) {
	var count int64
	if err := dao.db.Model(&models.ExperimentRound{}).Where("round_id = ?", roundID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count experiment rounds: %w", err)
	}
	return count, nil
}

// SaveWithTx persists changes to an existing pool instance within a transaction
func (dao *PoolDAO) SaveWithTx(tx *gorm.DB, pool *models.ExperimentRound) error {
	if err := tx.Save(pool).Error; err != nil {
		return fmt.Errorf("failed to save experiment round: %w", err)
	}
	return nil
}

// DeleteByRoundsWithTx deletes all pool instances of the given rounds within a transaction
func (dao *PoolDAO) DeleteByRoundsWithTx(tx *gorm.DB, roundIDs []uuid.UUID) error {
	if len(roundIDs) == 0 {
		return nil
	}
	if err := tx.Where("round_id IN ?", roundIDs).Delete(&models.ExperimentRound{}).Error; err != nil {
		return fmt.Errorf("failed to delete experiment rounds: %w", err)
	}
	return nil
}
