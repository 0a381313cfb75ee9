package database

import (
	"log"

	"ammlab/internal/models"
)

func AutoMigrate() error {
	err := DB.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.PlayerUser{},
		&models.Currency{},
		&models.Experiment{},
		&models.Group{},
		&models.Round{},
		&models.ExperimentRound{},
		&models.Transaction{},
		&models.PlayerBalance{},
		&models.PlayerCurrencyKnowledge{},
		&models.UserFeedback{},
	)

	if err != nil {
		log.Printf("Failed to auto-migrate: %v", err)
		return err
	}

	log.Println("Database migration completed successfully")
	return nil
}
