package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"referral-graph/internal/observability"
)

// TestDBType represents the type of database to use for testing
type TestDBType string

const (
	TestDBTypeSQLiteMemory TestDBType = "sqlite-memory"
	TestDBTypeSQLiteFile   TestDBType = "sqlite-file"
	TestDBTypePostgres     TestDBType = "postgres"
)

// SetupTestDB opens a store with the schema already created. It defaults to a
// private in-memory SQLite database; TEST_DB_TYPE selects another backend.
func SetupTestDB(t *testing.T, dbType TestDBType) *Store {
	t.Helper()

	if dbType == "" {
		dbType = TestDBType(os.Getenv("TEST_DB_TYPE"))
		if dbType == "" {
			dbType = TestDBTypeSQLiteMemory
		}
	}

	var (
		driver string
		dsn    string
	)
	switch dbType {
	case TestDBTypeSQLiteMemory:
		driver, dsn = DriverSQLite, ":memory:"
	case TestDBTypeSQLiteFile:
		driver, dsn = DriverSQLite, filepath.Join(t.TempDir(), "referrals.db")
	case TestDBTypePostgres:
		driver, dsn = DriverPostgres, postgresTestDSN()
	default:
		t.Fatalf("unsupported database type: %s", dbType)
	}

	s, err := New(driver, dsn, observability.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to setup test database: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	ctx := context.Background()
	if dbType == TestDBTypePostgres {
		if _, err := s.db.ExecContext(ctx, sqlDropReferralRecordsTable); err != nil {
			t.Fatalf("failed to clean test database: %v", err)
		}
	}
	if err := s.CreateSchema(ctx); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return s
}

func postgresTestDSN() string {
	get := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		get("TEST_DB_USER", "referral_user"),
		get("TEST_DB_PASSWORD", "referral_password"),
		get("TEST_DB_HOST", "localhost"),
		get("TEST_DB_PORT", "5432"),
		get("TEST_DB_NAME", "referral_db"),
	)
}

// SeedRecords writes records straight through the raw row operations,
// bypassing any business rules.
func SeedRecords(t *testing.T, s Storer, records ...ReferralRecord) {
	t.Helper()
	err := s.WithWriteTx(context.Background(), func(ctx context.Context, tx ReferralTx) error {
		for _, r := range records {
			if err := tx.UpsertReferralRecord(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to seed records: %v", err)
	}
}
