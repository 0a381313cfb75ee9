package registry

import (
	"errors"
	"fmt"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurrencyDAO handles currency lookups. The catalog itself is managed by an
// external collaborator; the core only checks existence.
type CurrencyDAO struct {
	db *gorm.DB
}

// CurrencyDAOInterface defines the contract for currency data access
type CurrencyDAOInterface interface {
	GetByID(currencyID uuid.UUID) (*models.Currency, error)
	List(skip, limit int) ([]models.Currency, error)
}

// NewCurrencyDAO creates a new currency DAO instance
func NewCurrencyDAO(db *gorm.DB) CurrencyDAOInterface {
	return &CurrencyDAO{
		db: db,
	}
}

// GetByID retrieves a currency by ID
func (dao *CurrencyDAO) GetByID(currencyID uuid.UUID) (*models.Currency, error) {
	var currency models.Currency
	if err := dao.db.First(&currency, "id = ?", currencyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: currency %s", apperrors.ErrNotFound, currencyID)
		}
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &currency, nil
}

// List retrieves currencies with pagination
func (dao *CurrencyDAO) List(skip, limit int) ([]models.Currency, error) {
	var currencies []models.Currency
	query := dao.db.Order("symbol")

	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&currencies).Error; err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}

	return currencies, nil
}
