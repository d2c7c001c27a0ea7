package store

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requirePostgres(t *testing.T) {
	t.Helper()
	if TestDBType(os.Getenv("TEST_DB_TYPE")) != TestDBTypePostgres {
		t.Skip("set TEST_DB_TYPE=postgres to run against Postgres")
	}
}

func TestPostgres_WritersSerializedAcrossStores(t *testing.T) {
	requirePostgres(t)

	first := SetupTestDB(t, TestDBTypePostgres)
	second := SetupTestDB(t, TestDBTypePostgres)
	SeedRecords(t, first, NewReferralRecord("counter", ""))

	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
		wg       sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		s := first
		if i%2 == 1 {
			s = second
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithWriteTx(context.Background(), func(ctx context.Context, tx ReferralTx) error {
				mu.Lock()
				inFlight++
				if inFlight > maxSeen {
					maxSeen = inFlight
				}
				mu.Unlock()

				_, err := tx.GetReferralRecord(ctx, "counter")

				mu.Lock()
				inFlight--
				mu.Unlock()
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestPostgres_ReadTxIsReadOnlyInDatabase(t *testing.T) {
	requirePostgres(t)

	s := SetupTestDB(t, TestDBTypePostgres)

	err := s.WithReadTx(context.Background(), func(ctx context.Context, tx ReferralTx) error {
		// Bypass ErrReadOnlyTx and hand the write to the database itself.
		raw := tx.(*Tx).tx
		_, err := raw.ExecContext(ctx, raw.Rebind(sqlInsertReferralRecord), "alice", nil)
		return err
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReadOnlyTx)

	_, err = readRecord(t, s, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}
