package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// POSTGRES WITHOUT A SERVER:
// sqlmock stands in for the pgx driver. These tests check the SQL that
// reaches the wire ("$N" placeholders) and how driver errors are mapped.
// The SQLite tests cover the query semantics against a real engine.
func newMockPostgres(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return &DB{conn: conn, dialect: DialectPostgres}, mock
}

func TestPostgresUserCreate(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4)`)).
		WithArgs("alice", "a@x.com", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	user := &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, db.Users().Create(context.Background(), user))
	assert.Equal(t, int64(7), user.ID)
}

func TestPostgresUserCreate_UniqueViolation(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := db.Users().Create(context.Background(), &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "err = %v", err)
}

func TestPostgresUserCreate_OtherErrorIsWrapped(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection failure"})

	err := db.Users().Create(context.Background(), &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrConflict))
	assert.Contains(t, err.Error(), "connection failure")
}

func TestPostgresUserExists(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1 OR username = $2`)).
		WithArgs("a@x.com", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := db.Users().ExistsByEmailOrUsername(context.Background(), "a@x.com", "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresTaskList(t *testing.T) {
	db, mock := newMockPostgres(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "description", "status", "created_at"}).
			AddRow(2, 3, "second", "", "done", created).
			AddRow(1, 3, "first", "d", "pending", created))

	tasks, err := db.Tasks().ListByUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(2), tasks[0].ID)
	assert.Equal(t, "done", tasks[0].Status)
	assert.Equal(t, created, tasks[1].CreatedAt)
}

func TestPostgresTaskUpdate(t *testing.T) {
	db, mock := newMockPostgres(t)
	status := "done"

	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $4 AND user_id = $5`)).
		WithArgs(nil, nil, "done", int64(10), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.Tasks().Update(context.Background(), 3, 10, repository.TaskUpdate{Status: &status})
	assert.NoError(t, err)
}

func TestPostgresTaskUpdate_NoRowsIsNotFound(t *testing.T) {
	db, mock := newMockPostgres(t)
	title := "x"

	mock.ExpectExec(`UPDATE tasks`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.Tasks().Update(context.Background(), 3, 10, repository.TaskUpdate{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "err = %v", err)
}

func TestPostgresTaskDelete_DriverError(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(10), int64(3)).
		WillReturnError(errors.New("connection reset"))

	err := db.Tasks().Delete(context.Background(), 3, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
