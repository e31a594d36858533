package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-distributor/internal/core/domain"
	"token-distributor/pkg/apperror"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLedgerRepo_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS transaction_records").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	repo := NewLedgerRepo(mock)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"recipient", "amount", "receipt"}).
		AddRow("addrA", "10.5", "r1").
		AddRow("addrB", "5", "r2")
	mock.ExpectQuery("SELECT recipient, amount::text, receipt FROM transaction_records ORDER BY seq").
		WillReturnRows(rows)

	repo := NewLedgerRepo(mock)
	history, err := repo.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "addrA", history[0].Recipient)
	assert.True(t, history[0].Amount.Equal(dec("10.5")))
	assert.Equal(t, "r2", history[1].Receipt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Load_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT recipient, amount::text, receipt FROM transaction_records").
		WillReturnRows(pgxmock.NewRows([]string{"recipient", "amount", "receipt"}))

	repo := NewLedgerRepo(mock)
	history, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedgerRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transaction_records").
		WithArgs("addrA", "10", "r1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO transaction_records").
		WithArgs("addrB", "5", "r2").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewLedgerRepo(mock)
	err = repo.Append(context.Background(), []domain.TransactionRecord{
		{Recipient: "addrA", Amount: dec("10"), Receipt: "r1"},
		{Recipient: "addrB", Amount: dec("5"), Receipt: "r2"},
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Append_InsertErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transaction_records").
		WithArgs("addrA", "10", "r1").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	repo := NewLedgerRepo(mock)
	err = repo.Append(context.Background(), []domain.TransactionRecord{
		{Recipient: "addrA", Amount: dec("10"), Receipt: "r1"},
	})

	require.Error(t, err)
	assert.Equal(t, apperror.ExitIO, apperror.ExitCodeFor(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Load_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT recipient, amount::text, receipt FROM transaction_records").
		WillReturnError(errors.New("connection refused"))

	repo := NewLedgerRepo(mock)
	_, err = repo.Load(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperror.ExitIO, apperror.ExitCodeFor(err))
}
