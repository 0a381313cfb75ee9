package database

import "gorm.io/gorm"

// TxManager runs a function inside one database transaction. Services
// depend on this interface rather than *gorm.DB directly so tests can swap
// in an in-memory implementation.
type TxManager interface {
	Transaction(fn func(tx *gorm.DB) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager wraps a gorm connection as a TxManager.
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Transaction(fn func(tx *gorm.DB) error) error {
	return m.db.Transaction(fn)
}
