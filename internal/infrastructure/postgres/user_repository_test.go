package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLoginChallengeConditional(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	exp := testTime.Add(10 * time.Minute)
	repo := NewUserRepository(mock)

	// No live challenge: the write lands.
	mock.ExpectExec(`UPDATE users`).
		WithArgs("u1", "hash-a", exp).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	stored, err := repo.SetLoginChallenge(context.Background(), "u1", "hash-a", exp)
	require.NoError(t, err)
	assert.True(t, stored)

	// Live challenge present: predicate matches nothing, nothing is stored.
	mock.ExpectExec(`UPDATE users`).
		WithArgs("u1", "hash-b", exp).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	stored, err = repo.SetLoginChallenge(context.Background(), "u1", "hash-b", exp)
	require.NoError(t, err)
	assert.False(t, stored)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeLoginChallengeConditional(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("u1", "hash-a", testTime).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := repo.ConsumeLoginChallenge(context.Background(), "u1", "hash-a", testTime)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second consume with the same hash loses: the challenge is gone.
	mock.ExpectExec(`UPDATE users`).
		WithArgs("u1", "hash-a", testTime).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	ok, err = repo.ConsumeLoginChallenge(context.Background(), "u1", "hash-a", testTime)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByResetTokenRequiresLiveToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT (.+) FROM users`).
		WithArgs("token-hash", testTime).
		WillReturnRows(userRows(0, 1))
	u, err := repo.GetByResetToken(context.Background(), "token-hash", testTime)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
