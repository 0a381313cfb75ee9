package experiments

import (
	"errors"
	"fmt"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupDAO handles database operations for player groups
type GroupDAO struct {
	db *gorm.DB
}

// GroupDAOInterface defines the contract for group data access
type GroupDAOInterface interface {
	CreateWithTx(tx *gorm.DB, group *models.Group) error
	GetByID(groupID uuid.UUID) (*models.Group, error)
	GetByExperiment(experimentID uuid.UUID) ([]models.Group, error)
	DeleteByExperimentWithTx(tx *gorm.DB, experimentID uuid.UUID) error
}

// NewGroupDAO creates a new group DAO instance
func NewGroupDAO(db *gorm.DB) GroupDAOInterface {
	return &GroupDAO{
		db: db,
	}
}

// CreateWithTx creates a new group record within a transaction
func (dao *GroupDAO) CreateWithTx(tx *gorm.DB, group *models.Group) error {
	if err := tx.Create(group).Error; err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetByID retrieves a group by ID
func (dao *GroupDAO) GetByID(groupID uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := dao.db.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

// GetByExperiment gets all groups of an experiment ordered by group number
func (dao *GroupDAO) GetByExperiment(experimentID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	if err := dao.db.Where("experiment_id = ?", experimentID).Order("group_number").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	return groups, nil
}

// DeleteByExperimentWithTx deletes all groups of an experiment within a transaction
func (dao *GroupDAO) DeleteByExperimentWithTx(tx *gorm.DB, experimentID uuid.UUID) error {
	if err := tx.Where("experiment_id = ?", experimentID).Delete(&models.Group{}).Error; err != nil {
		return fmt.Errorf("failed to delete groups: %w", err)
	}
	return nil
}
