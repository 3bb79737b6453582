package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const memoryPath = ":memory:"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// Set defaults
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 4
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 2
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// Every connection to :memory: opens its own empty database.
	if cfg.Path == memoryPath {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
	}

	return &SQLiteStore{
		cfg: cfg,
	}, nil
}

// Path returns the database path the store was configured with.
func (s *SQLiteStore) Path() string {
	return s.cfg.Path
}

// dsn builds the modernc.org/sqlite connection string for the configured path.
func (s *SQLiteStore) dsn() string {
	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", s.cfg.BusyTimeout.Milliseconds()),
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}
	if s.cfg.Path != memoryPath {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	return s.cfg.Path + "?" + strings.Join(params, "&")
}

// Init opens the database handle and verifies the connection.
func (s *SQLiteStore) Init(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the schema if it does not exist yet. It is safe to call
// on every start.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	// Create migration source from embedded FS
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	// Create database driver
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	// Create migration instance
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	// Closing m would close s.db as well, so it is left to Close.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// AddMedication inserts a new medication record. It fails with an
// already-exists error if the id is taken, leaving the stored row unchanged.
func (s *SQLiteStore) AddMedication(ctx context.Context, m *Medication) error {
	query := `
		INSERT INTO medications (
			id, person_name, age, condition, medicine_name,
			dosage, frequency, start_date, end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		m.ID,
		m.PersonName,
		m.Age,
		m.Condition,
		m.MedicineName,
		m.Dosage,
		m.Frequency,
		m.StartDate,
		m.EndDate,
	)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return newAlreadyExistsError("add", m.ID, err)
		}
		return fmt.Errorf("failed to add medication: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return newAlreadyExistsError("add", m.ID, nil)
	}

	return nil
}

// GetMedication retrieves a medication by id. A missing id is not an error:
// it returns nil, nil.
func (s *SQLiteStore) GetMedication(ctx context.Context, id int64) (*Medication, error) {
	query := `
		SELECT id, person_name, age, condition, medicine_name,
			   dosage, frequency, start_date, end_date
		FROM medications
		WHERE id = ?
	`

	m, err := scanMedication(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}

	return m, nil
}

// SearchByPerson lists medications whose person_name contains substring.
func (s *SQLiteStore) SearchByPerson(ctx context.Context, substring string) ([]*Medication, error) {
	return s.search(ctx, SearchFieldPerson, substring)
}

// SearchByCondition lists medications whose condition contains substring.
func (s *SQLiteStore) SearchByCondition(ctx context.Context, substring string) ([]*Medication, error) {
	return s.search(ctx, SearchFieldCondition, substring)
}

// SearchByMedicine lists medications whose medicine_name contains substring.
func (s *SQLiteStore) SearchByMedicine(ctx context.Context, substring string) ([]*Medication, error) {
	return s.search(ctx, SearchFieldMedicine, substring)
}

// search runs a case-sensitive containment match on one column. GLOB is
// used instead of LIKE because LIKE folds ASCII case in SQLite.
func (s *SQLiteStore) search(ctx context.Context, field SearchField, substring string) ([]*Medication, error) {
	switch field {
	case SearchFieldPerson, SearchFieldCondition, SearchFieldMedicine:
	default:
		return nil, fmt.Errorf("unsupported search field: %s", field)
	}

	query := `
		SELECT id, person_name, age, condition, medicine_name,
			   dosage, frequency, start_date, end_date
		FROM medications
		WHERE ` + string(field) + ` GLOB ?
	`

	rows, err := s.db.QueryContext(ctx, query, containsPattern(substring))
	if err != nil {
		return nil, fmt.Errorf("failed to search medications by %s: %w", field, err)
	}
	defer rows.Close()

	medications := []*Medication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		medications = append(medications, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medications: %w", err)
	}

	return medications, nil
}

// UpdateMedication replaces every field of the record with m.ID. It fails
// with a not-found error if no such record exists.
func (s *SQLiteStore) UpdateMedication(ctx context.Context, m *Medication) error {
	query := `
		UPDATE medications
		SET person_name = ?, age = ?, condition = ?, medicine_name = ?,
			dosage = ?, frequency = ?, start_date = ?, end_date = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		m.PersonName,
		m.Age,
		m.Condition,
		m.MedicineName,
		m.Dosage,
		m.Frequency,
		m.StartDate,
		m.EndDate,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return newNotFoundError("update", m.ID)
	}

	return nil
}

// DeleteMedication deletes a medication by id
func (s *SQLiteStore) DeleteMedication(ctx context.Context, id int64) error {
	query := `DELETE FROM medications WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return newNotFoundError("delete", id)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (*Medication, error) {
	m := &Medication{}
	err := row.Scan(
		&m.ID,
		&m.PersonName,
		&m.Age,
		&m.Condition,
		&m.MedicineName,
		&m.Dosage,
		&m.Frequency,
		&m.StartDate,
		&m.EndDate,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// containsPattern builds a GLOB pattern matching any value that contains
// substring. GLOB metacharacters in substring are wrapped in a character
// class so they match literally.
func containsPattern(substring string) string {
	var b strings.Builder
	b.Grow(len(substring) + 2)
	b.WriteByte('*')
	for _, r := range substring {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('*')
	return b.String()
}

func isPrimaryKeyViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
