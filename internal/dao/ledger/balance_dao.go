package ledger

import (
	"errors"
	"fmt"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BalanceDAO handles database operations for player balances
type BalanceDAO struct {
	db *gorm.DB
}

// BalanceDAOInterface defines the contract for balance data access
type BalanceDAOInterface interface {
	CreateWithTx(tx *gorm.DB, balance *models.PlayerBalance) error
	GetWithTx(tx *gorm.DB, playerID, poolID, currencyID uuid.UUID) (*models.PlayerBalance, error)
	SaveWithTx(tx *gorm.DB, balance *models.PlayerBalance) error
	GetByPlayerAndPool(playerID, poolID uuid.UUID) ([]models.PlayerBalance, error)
	GetByPool(poolID uuid.UUID, skip, limit int) ([]models.PlayerBalance, error)
	DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error
}

// NewBalanceDAO creates a new balance DAO instance
func NewBalanceDAO(db *gorm.DB) BalanceDAOInterface {
	return &BalanceDAO{
		db: db,
	}
}

// CreateWithTx creates a new balance record within a transaction
func (dao *BalanceDAO) CreateWithTx(tx *gorm.DB, balance *models.PlayerBalance) error {
	if err := tx.Create(balance).Error; err != nil {
		return fmt.Errorf("failed to create player balance: %w", err)
	}
	return nil
}

// GetWithTx gets one (player, pool, currency) balance row within a transaction
func (dao *BalanceDAO) GetWithTx(tx *gorm.DB, playerID, poolID, currencyID uuid.UUID) (*models.PlayerBalance, error) {
	var balance models.PlayerBalance
	err := tx.Where("player_id = ? AND experiment_round_id = ? AND currency_id = ?", playerID, poolID, currencyID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: balance for player %s currency %s", apperrors.ErrNotFound, playerID, currencyID)
		}
		return nil, fmt.Errorf("failed to get player balance: %w", err)
	}
	return &balance, nil
}

// SaveWithTx persists changes to an existing balance record within a transaction
func (dao *BalanceDAO) SaveWithTx(tx *gorm.DB, balance *models.PlayerBalance) error {
	if err := tx.Save(balance).Error; err != nil {
		return fmt.Errorf("failed to save player balance: %w", err)
	}
	return nil
}

// GetByPlayerAndPool gets a player's balances in one pool
func (dao *BalanceDAO) GetByPlayerAndPool(playerID, poolID uuid.UUID) ([]models.PlayerBalance, error) {
	var balances []models.PlayerBalance
	if err := dao.db.Where("player_id = ? AND experiment_round_id = ?", playerID, poolID).Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to get player balances: %w", err)
	}
	return balances, nil
}

// GetByPool gets all balances of one pool with pagination
func (dao *BalanceDAO) GetByPool(poolID uuid.UUID, skip, limit int) ([]models.PlayerBalance, error) {
	var balances []models.PlayerBalance
	query := dao.db.Where("experiment_round_id = ?", poolID)

	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}

	return balances, nil
}

// DeleteByPoolsWithTx deletes all balances of the given pools within a transaction
func (dao *BalanceDAO) DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error {
	if len(poolIDs) == 0 {
		return nil
	}
	if err := tx.Where("experiment_round_id IN ?", poolIDs).Delete(&models.PlayerBalance{}).Error; err != nil {
		return fmt.Errorf("failed to delete balances: %w", err)
	}
	return nil
}
