package experiments

import (
	"errors"
	"fmt"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExperimentDAO handles database operations for experiments
type ExperimentDAO struct {
	db *gorm.DB
}

// ExperimentDAOInterface defines the contract for experiment data access
type ExperimentDAOInterface interface {
	CreateWithTx(tx *gorm.DB, experiment *models.Experiment) error
	GetByID(experimentID uuid.UUID) (*models.Experiment, error)
	List(skip, limit int) ([]models.Experiment, error)
	Save(experiment *models.Experiment) error
	DeleteWithTx(tx *gorm.DB, experimentID uuid.UUID) error
}

// NewExperimentDAO creates a new experiment DAO instance
func NewExperimentDAO(db *gorm.DB) ExperimentDAOInterface {
	return &ExperimentDAO{
		db: db,
	}
}

// CreateWithTx creates a new experiment record within a transaction
func (dao *ExperimentDAO) CreateWithTx(tx *gorm.DB, experiment *models.Experiment) error {
	if err := tx.Create(experiment).Error; err != nil {
		return fmt.Errorf("failed to create experiment: %w", err)
	}
	return nil
}

// GetByID retrieves an experiment by ID
func (dao *ExperimentDAO) GetByID(experimentID uuid.UUID) (*models.Experiment, error) {
	var experiment models.Experiment
	if err := dao.db.First(&experiment, "id = ?", experimentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: experiment %s", apperrors.ErrNotFound, experimentID)
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return &experiment, nil
}

// List retrieves experiments with skip/limit pagination
func (dao *ExperimentDAO) List(skip, limit int) ([]models.Experiment, error) {
	var experiments []models.Experiment
	query := dao.db.Order("created_at DESC")

	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&experiments).Error; err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}

	return experiments, nil
}

// Save persists changes to an existing experiment record
func (dao *ExperimentDAO) Save(experiment *models.Experiment) error {
	if err := dao.db.Save(experiment).Error; err != nil {
		return fmt.Errorf("failed to save experiment: %w", err)
	}
	return nil
}

// DeleteWithTx deletes an experiment record within a transaction
func (dao *ExperimentDAO) DeleteWithTx(tx *gorm.DB, experimentID uuid.UUID) error {
	if err := tx.Delete(&models.Experiment{}, "id = ?", experimentID).Error; err != nil {
		return fmt.Errorf("failed to delete experiment: %w", err)
	}
	return nil
}
