package server

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/gerfey/planit/pkg/logger"
)

// NewPostgresRepositoryTest оборачивает готовое соединение (sqlmock, testcontainers).
func NewPostgresRepositoryTest(db *sql.DB, logger logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     sqlx.NewDb(db, "postgres"),
		logger: logger,
	}
}
