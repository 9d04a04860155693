package migrations

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestApplySkipsRecordedMigrations(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("migrations").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("0001_init.sql").WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()

	require.NoError(t, Apply(context.Background(), mock))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNamesAreOrdered(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.Equal(t, []string{"0001_init.sql"}, names)
}
