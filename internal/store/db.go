package store

import (
	"errors"
	"fmt"
	"strings"

	"referral-graph/internal/observability"

	_ "github.com/jackc/pgx/v5/stdlib" // Import the pgx stdlib for sqlx
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/semaphore"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateRecord = errors.New("duplicate record")
	ErrReadOnlyTx      = errors.New("write attempted in read transaction")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	// maxConcurrentReaders bounds parallel read transactions; a writer
	// acquires the whole weight so it excludes every reader.
	maxConcurrentReaders = 64
)

type Store struct {
	db     *sqlx.DB
	driver string
	logger *observability.Logger
	rw     *semaphore.Weighted
}

// New opens the referral store. For SQLite the DSN is a file path or URI
// (":memory:" for a private in-memory database); for pgx it is a Postgres
// connection string. The schema is not created here; call CreateSchema.
func New(driver, dsn string, logger *observability.Logger) (*Store, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory SQLite database lives and dies with its connection, so
	// every transaction must share the same one.
	if driver == DriverSQLite && isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:     db,
		driver: driver,
		logger: logger,
		rw:     semaphore.NewWeighted(maxConcurrentReaders),
	}, nil
}

// DB returns the underlying database connection
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") ||
		strings.HasPrefix(dsn, "file::memory:") ||
		strings.Contains(dsn, "mode=memory")
}

// sqliteDSN appends the connection pragmas. They are passed through the DSN
// rather than executed once so that every pooled connection gets them.
func sqliteDSN(dsn string) string {
	pragmas := []string{
		"_pragma=busy_timeout(5000)",
		"_pragma=synchronous(NORMAL)",
	}
	if !isMemoryDSN(dsn) {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if dsn == ":memory:" {
		dsn = "file::memory:"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}
