package registry

import (
	"errors"
	"fmt"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserDAO handles identity lookups for admins and players. Registration and
// authentication live outside this service.
type UserDAO struct {
	db *gorm.DB
}

// UserDAOInterface defines the contract for user data access
type UserDAOInterface interface {
	GetAdminByID(adminID uuid.UUID) (*models.AdminUser, error)
	GetPlayerByID(playerID uuid.UUID) (*models.PlayerUser, error)
	GetPlayersByGroup(groupID uuid.UUID) ([]models.PlayerUser, error)
}

// NewUserDAO creates a new user DAO instance
func NewUserDAO(db *gorm.DB) UserDAOInterface {
	return &UserDAO{
		db: db,
	}
}

// GetAdminByID retrieves an admin user by ID
func (dao *UserDAO) GetAdminByID(adminID uuid.UUID) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := dao.db.First(&admin, "id = ?", adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: admin %s", apperrors.ErrNotFound, adminID)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

// GetPlayerByID retrieves a player user by ID
func (dao *UserDAO) GetPlayerByID(playerID uuid.UUID) (*models.PlayerUser, error) {
	var player models.PlayerUser
	if err := dao.db.First(&player, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: player %s", apperrors.ErrNotFound, playerID)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &player, nil
}

// GetPlayersByGroup gets all players assigned to a group
func (dao *UserDAO) GetPlayersByGroup(groupID uuid.UUID) ([]models.PlayerUser, error) {
	var players []models.PlayerUser
	if err := dao.db.Where("group_id = ?", groupID).Find(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	return players, nil
}
