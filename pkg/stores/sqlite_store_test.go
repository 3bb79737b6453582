package stores

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

// setupTestStore creates a file-backed SQLite store in a temp dir for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: filepath.Join(t.TempDir(), "medications.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testMedication() *Medication {
	return &Medication{
		ID:           1,
		PersonName:   "Test Name",
		Age:          30,
		Condition:    "Test Condition",
		MedicineName: "TestMed",
		Dosage:       "1 tablet",
		Frequency:    "1 time/day",
		StartDate:    "2025-01-01",
		EndDate:      "2025-02-01",
	}
}

func mustAdd(t *testing.T, store Store, m *Medication) {
	t.Helper()
	if err := store.AddMedication(context.Background(), m); err != nil {
		t.Fatalf("failed to add medication %d: %v", m.ID, err)
	}
}

func ids(meds []*Medication) []int64 {
	out := make([]int64, 0, len(meds))
	for _, m := range meds {
		out = append(out, m.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.HealthCheck(ctx); err == nil {
		t.Error("expected health check to fail before Init")
	}

	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestMigrateBeforeInit(t *testing.T) {
	store, err := NewSQLiteStore(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Migrate(context.Background()); err == nil {
		t.Fatal("expected error when migrating an uninitialized store")
	}
}

// TestStoreMigrations tests that the schema exists and migrating again is a no-op
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var count int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM medications").Scan(&count); err != nil {
		t.Fatalf("medications table is not accessible: %v", err)
	}

	mustAdd(t, store, testMedication())

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}

	got, err := store.GetMedication(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("expected record to survive re-migration, got %v, %v", got, err)
	}
}

// TestAdoptExistingDatabase opens a file whose table was created without
// the migration bookkeeping table.
func TestAdoptExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medications.db")

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open raw database: %v", err)
	}
	_, err = raw.Exec(`
		CREATE TABLE IF NOT EXISTS medications (
			id INTEGER PRIMARY KEY,
			person_name TEXT NOT NULL,
			age INTEGER NOT NULL,
			condition TEXT NOT NULL,
			medicine_name TEXT NOT NULL,
			dosage TEXT NOT NULL,
			frequency TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL
		)`)
	if err != nil {
		t.Fatalf("failed to create legacy table: %v", err)
	}
	_, err = raw.Exec(`INSERT INTO medications VALUES (5, 'Emma', 41, 'Asthma', 'Salbutamol', '2 tablet(s)', '2 times/day', '2025-01-01', '2025-02-01')`)
	if err != nil {
		t.Fatalf("failed to insert legacy row: %v", err)
	}
	if err := raw.Close(); err != nil {
		t.Fatalf("failed to close raw database: %v", err)
	}

	store, err := NewSQLiteStore(Config{Path: path})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate legacy database: %v", err)
	}

	got, err := store.GetMedication(ctx, 5)
	if err != nil {
		t.Fatalf("failed to get legacy record: %v", err)
	}
	if got == nil || got.PersonName != "Emma" {
		t.Fatalf("expected legacy record for Emma, got %+v", got)
	}
}

// TestMedicationCRUD walks one record through its whole lifecycle
func TestMedicationCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Create
	med := testMedication()
	mustAdd(t, store, med)

	// Read
	retrieved, err := store.GetMedication(ctx, 1)
	if err != nil {
		t.Fatalf("failed to get medication: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected medication, got nil")
	}
	if *retrieved != *med {
		t.Errorf("expected %+v, got %+v", *med, *retrieved)
	}

	// Search
	results, err := store.SearchByPerson(ctx, "Test")
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if !equalIDs(ids(results), []int64{1}) {
		t.Errorf("expected search to return id 1, got %v", ids(results))
	}

	// Delete
	if err := store.DeleteMedication(ctx, 1); err != nil {
		t.Fatalf("failed to delete medication: %v", err)
	}

	gone, err := store.GetMedication(ctx, 1)
	if err != nil {
		t.Fatalf("failed to get deleted medication: %v", err)
	}
	if gone != nil {
		t.Errorf("expected nil after delete, got %+v", gone)
	}
}

func TestGetMissingIsAbsent(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.GetMedication(context.Background(), 404)
	if err != nil {
		t.Fatalf("expected no error for a missing id, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestAddDuplicateID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	original := testMedication()
	mustAdd(t, store, original)

	dup := &Medication{
		ID:           1,
		PersonName:   "Another Name",
		Age:          50,
		Condition:    "Another Condition",
		MedicineName: "AnotherMed",
		Dosage:       "2 tablets",
		Frequency:    "2 times/day",
		StartDate:    "2025-01-01",
		EndDate:      "2025-02-01",
	}
	err := store.AddMedication(ctx, dup)
	if !IsAlreadyExists(err) {
		t.Fatalf("expected already-exists error, got %v", err)
	}
	if IsNotFound(err) {
		t.Error("already-exists error must not match not-found")
	}

	got, err := store.GetMedication(ctx, 1)
	if err != nil {
		t.Fatalf("failed to get medication: %v", err)
	}
	if *got != *original {
		t.Errorf("expected original record to be unchanged, got %+v", *got)
	}
}

func TestUpdateMedication(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mustAdd(t, store, testMedication())

	updated := &Medication{
		ID:           1,
		PersonName:   "Updated Name",
		Age:          40,
		Condition:    "Updated Condition",
		MedicineName: "UpdatedMed",
		Dosage:       "3 tablets",
		Frequency:    "3 times/day",
		StartDate:    "2025-03-01",
		EndDate:      "2025-04-01",
	}
	if err := store.UpdateMedication(ctx, updated); err != nil {
		t.Fatalf("failed to update medication: %v", err)
	}

	got, err := store.GetMedication(ctx, 1)
	if err != nil {
		t.Fatalf("failed to get updated medication: %v", err)
	}
	if *got != *updated {
		t.Errorf("expected %+v, got %+v", *updated, *got)
	}

	// Updating with identical values still finds the row
	if err := store.UpdateMedication(ctx, updated); err != nil {
		t.Errorf("expected idempotent update to succeed, got %v", err)
	}
}

func TestUpdateMissing(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m := testMedication()
	m.ID = 99
	err := store.UpdateMedication(ctx, m)
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}

	got, err := store.GetMedication(ctx, 99)
	if err != nil {
		t.Fatalf("failed to get medication: %v", err)
	}
	if got != nil {
		t.Errorf("expected update of missing id to create nothing, got %+v", got)
	}
}

func TestDeleteMissing(t *testing.T) {
	store := setupTestStore(t)

	err := store.DeleteMedication(context.Background(), 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("expected kind %s, got %s", KindNotFound, KindOf(err))
	}
}

func TestSearch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	records := []*Medication{
		{ID: 1, PersonName: "Ali", Age: 30, Condition: "Diabetes", MedicineName: "Metformin", Dosage: "1 tablet(s)", Frequency: "1 time/day", StartDate: "2025-01-01", EndDate: "2025-02-01"},
		{ID: 2, PersonName: "Alina", Age: 44, Condition: "Hypertension", MedicineName: "Lisinopril", Dosage: "2 tablet(s)", Frequency: "2 times/day", StartDate: "2025-01-01", EndDate: "2025-02-01"},
		{ID: 3, PersonName: "ali", Age: 52, Condition: "Type 2 Diabetes", MedicineName: "Metformin XR", Dosage: "1 tablet(s)", Frequency: "once a week", StartDate: "2025-01-01", EndDate: "2025-02-01"},
		{ID: 4, PersonName: "Noah", Age: 67, Condition: "Asthma", MedicineName: "Salbutamol", Dosage: "3 tablet(s)", Frequency: "3 times/day", StartDate: "2025-01-01", EndDate: "2025-02-01"},
		{ID: 5, PersonName: "Star*Name", Age: 25, Condition: "Allergy [seasonal]", MedicineName: "Cetirizine?", Dosage: "1 tablet(s)", Frequency: "1 time/day", StartDate: "2025-01-01", EndDate: "2025-02-01"},
	}
	for _, r := range records {
		mustAdd(t, store, r)
	}

	tests := []struct {
		name      string
		search    func(context.Context, string) ([]*Medication, error)
		substring string
		want      []int64
	}{
		{name: "person prefix", search: store.SearchByPerson, substring: "Ali", want: []int64{1, 2}},
		{name: "person is case sensitive", search: store.SearchByPerson, substring: "ali", want: []int64{3}},
		{name: "person infix", search: store.SearchByPerson, substring: "oa", want: []int64{4}},
		{name: "person no match", search: store.SearchByPerson, substring: "Zed", want: []int64{}},
		{name: "person empty matches all", search: store.SearchByPerson, substring: "", want: []int64{1, 2, 3, 4, 5}},
		{name: "person literal star", search: store.SearchByPerson, substring: "r*N", want: []int64{5}},
		{name: "person star is not a wildcard", search: store.SearchByPerson, substring: "*", want: []int64{5}},
		{name: "condition", search: store.SearchByCondition, substring: "Diabetes", want: []int64{1, 3}},
		{name: "condition literal bracket", search: store.SearchByCondition, substring: "[seasonal]", want: []int64{5}},
		{name: "condition case sensitive", search: store.SearchByCondition, substring: "diabetes", want: []int64{}},
		{name: "medicine", search: store.SearchByMedicine, substring: "Metformin", want: []int64{1, 3}},
		{name: "medicine literal question mark", search: store.SearchByMedicine, substring: "?", want: []int64{5}},
		{name: "percent is literal", search: store.SearchByMedicine, substring: "%", want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := tt.search(ctx, tt.substring)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if results == nil {
				t.Fatal("expected a non-nil slice")
			}
			if got := ids(results); !equalIDs(got, tt.want) {
				t.Errorf("expected ids %v, got %v", tt.want, got)
			}
		})
	}
}

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"":      "**",
		"Ali":   "*Ali*",
		"a*b":   "*a[*]b*",
		"?":     "*[?]*",
		"[x]":   "*[[]x]*",
		"café":  "*café*",
		"100%_": "*100%_*",
	}
	for in, want := range tests {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMemoryStoreSharesOneDatabase(t *testing.T) {
	store, err := NewSQLiteStore(Config{Path: ":memory:", MaxOpenConns: 8})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	mustAdd(t, store, testMedication())

	got, err := store.GetMedication(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("expected record from the same in-memory database, got %v, %v", got, err)
	}
}

// TestConcurrentDuplicateAdds checks that exactly one of several racing
// inserts of the same id wins.
func TestConcurrentDuplicateAdds(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := testMedication()
			m.Age = 30 + i
			errs[i] = store.AddMedication(ctx, m)
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case IsAlreadyExists(err):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != workers-1 {
		t.Errorf("expected 1 success and %d duplicates, got %d and %d", workers-1, ok, dup)
	}
}

// TestMain sets up and tears down test environment
func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()

	// Exit
	os.Exit(code)
}
