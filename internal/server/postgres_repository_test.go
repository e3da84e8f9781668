package server_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gerfey/planit/internal/models"
	"github.com/gerfey/planit/internal/server"
	"github.com/gerfey/planit/pkg/logger"
)

var (
	userColumns = []string{"id", "username", "password_hash", "created_at", "updated_at"}
	taskColumns = []string{"id", "title", "description", "due_date", "status", "user_id", "created_at", "updated_at"}
)

func newMockRepo(t *testing.T) (*server.PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctrl := gomock.NewController(t)
	mockLogger := logger.NewMockLogger(ctrl)
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()

	return server.NewPostgresRepositoryTest(db, mockLogger), mock
}

func TestRepo_InitSchema(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS tasks (.+) UNIQUE \(user_id, title\)`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_tasks_user_created").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.InitSchema())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_InitSchema_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("permission denied"))

	err := repo.InitSchema()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users")
}

func TestRepo_CreateUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "hash").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", "hash", now, now))

	user, err := repo.CreateUser(t.Context(), "alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hash", user.Password)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_CreateUser_UniqueViolation(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{name: "lib/pq", err: &pq.Error{Code: "23505", Message: "duplicate key value"}},
		{name: "pgx", err: &pgconn.PgError{Code: "23505", Message: "duplicate key value"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectQuery("INSERT INTO users").
				WithArgs("alice", "hash").
				WillReturnError(tc.err)

			_, err := repo.CreateUser(t.Context(), "alice", "hash")
			assert.ErrorIs(t, err, server.ErrDuplicate)
		})
	}
}

func TestRepo_CreateUser_OtherError(t *testing.T) {
	repo, mock := newMockRepo(t)
	dbErr := &pq.Error{Code: "23514", Message: "check violation"}

	mock.ExpectQuery("INSERT INTO users").WillReturnError(dbErr)

	_, err := repo.CreateUser(t.Context(), "alice", "hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, server.ErrDuplicate)
	assert.ErrorIs(t, err, dbErr)
}

func TestRepo_GetByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username = ").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", "hash", now, now))

	user, err := repo.GetByUsername(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hash", user.Password)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_GetByUsername_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.GetByUsername(t.Context(), "ghost")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, server.ErrUserNotFound)
}

func TestRepo_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(5, "bob", "hash", now, now))

	user, err := repo.GetByID(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ").
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = repo.GetByID(t.Context(), 6)
	assert.ErrorIs(t, err, server.ErrUserNotFound)
}

func TestRepo_CreateTask(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	due := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	description := "milk"

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs("Buy groceries", description, due, "Pending", int64(1)).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(10, "Buy groceries", description, due, "Pending", 1, now, now))

	task, err := repo.CreateTask(t.Context(), models.NewTask{
		Title:       "Buy groceries",
		Description: &description,
		DueDate:     due,
		Status:      models.TaskPending,
		UserID:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), task.ID)
	assert.Equal(t, models.TaskPending, task.Status)
	require.NotNil(t, task.Description)
	assert.Equal(t, "milk", *task.Description)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_CreateTask_NullDescription(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	due := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs("Call mom", nil, due, "Completed", int64(1)).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(11, "Call mom", nil, due, "Completed", 1, now, now))

	task, err := repo.CreateTask(t.Context(), models.NewTask{
		Title:   "Call mom",
		DueDate: due,
		Status:  models.TaskCompleted,
		UserID:  1,
	})
	require.NoError(t, err)
	assert.Nil(t, task.Description)
}

func TestRepo_CreateTask_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO tasks").WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateTask(t.Context(), models.NewTask{Title: "a", Status: models.TaskPending, UserID: 1})
	assert.ErrorIs(t, err, server.ErrDuplicate)
}

func TestRepo_ListTasks(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	due := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id DESC")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(2, "second", nil, due, "Completed", 1, now, now).
			AddRow(1, "first", "desc", due, "Pending", 1, now.Add(-time.Hour), now))

	tasks, err := repo.ListTasks(t.Context(), 1, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title)
	assert.Equal(t, models.TaskCompleted, tasks[0].Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ListTasks_StatusFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	status := models.TaskPending

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND status = $2 ORDER BY")).
		WithArgs(int64(1), "Pending").
		WillReturnRows(sqlmock.NewRows(taskColumns))

	tasks, err := repo.ListTasks(t.Context(), 1, &status)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_GetTaskOwner(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT user_id FROM tasks WHERE id = ").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

	owner, err := repo.GetTaskOwner(t.Context(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), owner)

	mock.ExpectQuery("SELECT user_id FROM tasks WHERE id = ").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err = repo.GetTaskOwner(t.Context(), 4)
	assert.ErrorIs(t, err, server.ErrTaskNotFound)
}

func TestRepo_UpdateTask(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	due := time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC)
	status := models.TaskCompleted
	title := "renamed"

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE tasks SET title = $1, due_date = $2, status = $3, updated_at = NOW() WHERE id = $4 AND user_id = $5 RETURNING",
	)).
		WithArgs("renamed", due, "Completed", int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(3, "renamed", nil, due, "Completed", 1, now, now))

	task, err := repo.UpdateTask(t.Context(), 3, 1, models.TaskUpdate{
		Title:   &title,
		DueDate: &due,
		Status:  &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", task.Title)
	assert.Equal(t, models.TaskCompleted, task.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_UpdateTask_Errors(t *testing.T) {
	description := "new"

	t.Run("no fields", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		_, err := repo.UpdateTask(t.Context(), 3, 1, models.TaskUpdate{})
		assert.ErrorIs(t, err, server.ErrNoFieldsToUpdate)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner changed", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET description = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3")).
			WithArgs("new", int64(3), int64(1)).
			WillReturnRows(sqlmock.NewRows(taskColumns))

		_, err := repo.UpdateTask(t.Context(), 3, 1, models.TaskUpdate{Description: &description})
		assert.ErrorIs(t, err, server.ErrTaskNotFound)
	})

	t.Run("duplicate title", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery("UPDATE tasks").WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.UpdateTask(t.Context(), 3, 1, models.TaskUpdate{Description: &description})
		assert.ErrorIs(t, err, server.ErrDuplicate)
	})
}

func TestRepo_DeleteTask(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	due := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM tasks")).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(3, "gone", nil, due, "Pending", 1, now, now))

	task, err := repo.DeleteTask(t.Context(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "gone", task.Title)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM tasks")).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err = repo.DeleteTask(t.Context(), 3, 1)
	assert.ErrorIs(t, err, server.ErrTaskNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
