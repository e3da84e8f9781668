package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // драйвер "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gerfey/planit/internal/models"
	"github.com/gerfey/planit/pkg/logger"
)

const (
	pingTimeout   = 5 * time.Second
	schemaTimeout = 10 * time.Second

	uniqueViolationCode = "23505"
)

var (
	ErrUserNotFound = errors.New("пользователь не найден")
	ErrTaskNotFound = errors.New("задача не найдена")
	ErrDuplicate    = errors.New("нарушение уникальности")
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type PostgresRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewPostgresRepository открывает пул соединений; driver - "postgres" (lib/pq) или "pgx".
func NewPostgresRepository(driver, dsn string, pool PoolConfig, logger logger.Logger) (*PostgresRepository, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()

		return nil, pingErr
	}

	return &PostgresRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// DB отдает пул для сбора статистики соединений.
func (r *PostgresRepository) DB() *sql.DB {
	return r.db.DB
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) InitSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("создание таблицы users: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			due_date DATE NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Completed')),
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, title)
		)
	`)
	if err != nil {
		return fmt.Errorf("создание таблицы tasks: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks (user_id, created_at DESC)`)
	if err != nil {
		return fmt.Errorf("создание индекса tasks: %w", err)
	}

	r.logger.Infof("Схема базы данных инициализирована")

	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at, updated_at
	`, username, passwordHash)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}

		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, username, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1
	`, username)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("поиск пользователя по имени: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, username, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("поиск пользователя по id: %w", err)
	}

	return &user, nil
}

const taskColumns = `id, title, description, due_date, status, user_id, created_at, updated_at`

func (r *PostgresRepository) CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error) {
	var created models.Task
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO tasks (title, description, due_date, status, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taskColumns,
		task.Title, task.Description, task.DueDate, string(task.Status), task.UserID)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}

		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	return &created, nil
}

func (r *PostgresRepository) ListTasks(ctx context.Context, userID int64, status *models.TaskStatus) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}

	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}

	query += ` ORDER BY created_at DESC, id DESC`

	tasks := make([]*models.Task, 0)
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("список задач: %w", err)
	}

	return tasks, nil
}

func (r *PostgresRepository) GetTaskOwner(ctx context.Context, id int64) (int64, error) {
	var userID int64
	err := r.db.GetContext(ctx, &userID, `SELECT user_id FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTaskNotFound
		}

		return 0, fmt.Errorf("владелец задачи: %w", err)
	}

	return userID, nil
}

// UpdateTask меняет только переданные поля; условие по user_id защищает от смены владельца между проверкой и записью.
func (r *PostgresRepository) UpdateTask(ctx context.Context, id, userID int64, update models.TaskUpdate) (*models.Task, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.DueDate != nil {
		add("due_date", *update.DueDate)
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}

	if len(sets) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id, userID)

	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), taskColumns,
	)

	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, args...); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrTaskNotFound
		case isUniqueViolation(err):
			return nil, ErrDuplicate
		}

		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	return &task, nil
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, id, userID int64) (*models.Task, error) {
	var task models.Task
	err := r.db.GetContext(ctx, &task, `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns, id, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		return nil, fmt.Errorf("удаление задачи: %w", err)
	}

	return &task, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	return false
}
