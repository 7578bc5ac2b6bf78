package blacklist

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockStore(t *testing.T, d dialect) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS domains").WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := newSQLStore(db, d, zap.NewNop())
	require.NoError(t, err)
	return store, mock
}

func TestMySQLStoreExists(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM domains WHERE domain_name = \?\)`).
		WithArgs("mailinator.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := store.Exists(context.Background(), "Mailinator.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStoreAddDomainsIgnoresDuplicates(t *testing.T) {
	store, mock := newMockStore(t, mysqlDialect)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT IGNORE INTO domains")
	prep.ExpectExec().WithArgs("yopmail.com").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("mailinator.com").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	inserted, err := store.AddDomains(context.Background(), []string{"YOPmail.com", "mailinator.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAddDomainsRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t, postgresDialect)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO domains \(domain_name\) VALUES \(\$1\) ON CONFLICT`)
	prep.ExpectExec().WithArgs("yopmail.com").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.AddDomains(context.Background(), []string{"yopmail.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCount(t *testing.T) {
	store, mock := newMockStore(t, postgresDialect)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM domains`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4211)))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4211), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreQueryError(t *testing.T) {
	store, mock := newMockStore(t, postgresDialect)

	mock.ExpectQuery("SELECT EXISTS").WillReturnError(errors.New("connection reset"))

	_, err := store.Exists(context.Background(), "example.org")
	assert.Error(t, err)
}

func TestNewSQLStoreCreateTableFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS domains").WillReturnError(errors.New("permission denied"))
	mock.ExpectClose()

	_, err = newSQLStore(db, mysqlDialect, zap.NewNop())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
