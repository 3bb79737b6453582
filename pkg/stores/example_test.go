package stores_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/medstore/medstore/pkg/stores"
)

// ExampleNewSQLiteStore demonstrates creating and initializing a new SQLite store.
func ExampleNewSQLiteStore() {
	// Create store configuration
	store, err := stores.NewSQLiteStore(stores.Config{
		Path:            ":memory:", // Use in-memory database for example
		ConnMaxLifetime: 5 * time.Minute,
		BusyTimeout:     time.Second,
	})
	if err != nil {
		log.Fatal(err)
	}

	// Initialize the database connection
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}

	// Create the schema
	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	// Store is now ready to use
	fmt.Println("Store initialized successfully")
	// Output: Store initialized successfully
}

// ExampleSQLiteStore_AddMedication demonstrates inserting and reading back a record.
func ExampleSQLiteStore_AddMedication() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	med := &stores.Medication{
		ID:           1,
		PersonName:   "Fatima",
		Age:          58,
		Condition:    "Hypertension",
		MedicineName: "Lisinopril",
		Dosage:       "1 tablet(s)",
		Frequency:    "1 time/day",
		StartDate:    "2025-01-01",
		EndDate:      "2025-02-01",
	}
	if err := store.AddMedication(ctx, med); err != nil {
		log.Fatal(err)
	}

	// A second insert with the same id is rejected
	err := store.AddMedication(ctx, med)
	fmt.Println("duplicate rejected:", stores.IsAlreadyExists(err))

	retrieved, err := store.GetMedication(ctx, 1)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s takes %s for %s\n", retrieved.PersonName, retrieved.MedicineName, retrieved.Condition)
	// Output:
	// duplicate rejected: true
	// Fatima takes Lisinopril for Hypertension
}

// ExampleSQLiteStore_SearchByCondition demonstrates substring search.
func ExampleSQLiteStore_SearchByCondition() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	for i, condition := range []string{"Diabetes", "Asthma", "Type 1 Diabetes"} {
		_ = store.AddMedication(ctx, &stores.Medication{
			ID:           int64(i + 1),
			PersonName:   "Omar",
			Age:          33,
			Condition:    condition,
			MedicineName: "Metformin",
			Dosage:       "1 tablet(s)",
			Frequency:    "2 times/day",
			StartDate:    "2025-01-01",
			EndDate:      "2025-02-01",
		})
	}

	matches, _ := store.SearchByCondition(ctx, "Diabetes")
	fmt.Println("matches:", len(matches))

	// Matching is case-sensitive
	lower, _ := store.SearchByCondition(ctx, "diabetes")
	fmt.Println("lowercase matches:", len(lower))
	// Output:
	// matches: 2
	// lowercase matches: 0
}

// ExampleSQLiteStore_DeleteMedication demonstrates delete and the not-found error.
func ExampleSQLiteStore_DeleteMedication() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	_ = store.AddMedication(ctx, &stores.Medication{
		ID: 9, PersonName: "Liu", Age: 71, Condition: "Arthritis", MedicineName: "Ibuprofen",
		Dosage: "2 tablet(s)", Frequency: "3 times/day", StartDate: "2025-01-01", EndDate: "2025-02-01",
	})

	fmt.Println("first delete:", store.DeleteMedication(ctx, 9))

	err := store.DeleteMedication(ctx, 9)
	fmt.Println("second delete:", err)

	med, _ := store.GetMedication(ctx, 9)
	fmt.Println("still present:", med != nil)
	// Output:
	// first delete: <nil>
	// second delete: delete: no medication with id 9
	// still present: false
}
