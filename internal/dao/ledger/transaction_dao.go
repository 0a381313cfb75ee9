package ledger

import (
	"fmt"

	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionDAO handles database operations for swap transactions. The
// table is append-only: there is no update path here on purpose.
type TransactionDAO struct {
	db *gorm.DB
}

// TransactionDAOInterface defines the contract for transaction data access
type TransactionDAOInterface interface {
	CreateWithTx(tx *gorm.DB, txn *models.Transaction) error
	GetByPool(poolID uuid.UUID, skip, limit int) ([]models.Transaction, error)
	GetByPlayer(playerID, poolID uuid.UUID, skip, limit int) ([]models.Transaction, error)
	CountByPlayerWithTx(tx *gorm.DB, playerID, poolID uuid.UUID) (int64, error)
	DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error
}

// NewTransactionDAO creates a new transaction DAO instance
func NewTransactionDAO(db *gorm.DB) TransactionDAOInterface {
	return &TransactionDAO{
		db: db,
	}
}

// CreateWithTx appends a new transaction record within a transaction
func (dao *TransactionDAO) CreateWithTx(tx *gorm.DB, txn *models.Transaction) error {
	if err := tx.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByPool gets all transactions of one pool, newest first
func (dao *TransactionDAO) GetByPool(poolID uuid.UUID, skip, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	query := dao.db.Where("experiment_round_id = ?", poolID).Order("created_at DESC")

	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return txns, nil
}

// GetByPlayer gets all transactions of one player in one pool, newest first
func (dao *TransactionDAO) GetByPlayer(playerID, poolID uuid.UUID, skip, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	query := dao.db.Where("player_id = ? AND experiment_round_id = ?", playerID, poolID).Order("created_at DESC")

	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return txns, nil
}

// CountByPlayerWithTx counts a player's transactions in one pool within a transaction
func (dao *TransactionDAO) CountByPlayerWithTx(tx *gorm.DB, playerID, poolID uuid.UUID) (int64, error) {
	var count int64
	if err := tx.Model(&models.Transaction{}).Where("player_id = ? AND experiment_round_id = ?", playerID, poolID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// DeleteByPoolsWithTx deletes all transactions of the given pools within a transaction
func (dao *TransactionDAO) DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error {
	if len(poolIDs) == 0 {
		return nil
	}
	if err := tx.Where("experiment_round_id IN ?", poolIDs).Delete(&models.Transaction{}).Error; err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}
