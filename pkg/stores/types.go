package stores

import (
	"context"
)

// Medication represents one medication record for a person.
type Medication struct {
	ID           int64  `json:"id" yaml:"id"`
	PersonName   string `json:"person_name" yaml:"person_name"`
	Age          int    `json:"age" yaml:"age"`
	Condition    string `json:"condition" yaml:"condition"`
	MedicineName string `json:"medicine_name" yaml:"medicine_name"`
	Dosage       string `json:"dosage" yaml:"dosage"`       // free form, e.g. "2 tablet(s)"
	Frequency    string `json:"frequency" yaml:"frequency"` // free form, e.g. "1 time/day"
	StartDate    string `json:"start_date" yaml:"start_date"`
	EndDate      string `json:"end_date" yaml:"end_date"`
}

// SearchField names a text column that supports substring search.
type SearchField string

const (
	SearchFieldPerson    SearchField = "person_name"
	SearchFieldCondition SearchField = "condition"
	SearchFieldMedicine  SearchField = "medicine_name"
)

// Store defines the interface for the persistence layer
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Medication operations
	AddMedication(ctx context.Context, m *Medication) error
	GetMedication(ctx context.Context, id int64) (*Medication, error)
	SearchByPerson(ctx context.Context, substring string) ([]*Medication, error)
	SearchByCondition(ctx context.Context, substring string) ([]*Medication, error)
	SearchByMedicine(ctx context.Context, substring string) ([]*Medication, error)
	UpdateMedication(ctx context.Context, m *Medication) error
	DeleteMedication(ctx context.Context, id int64) error

	// Utility
	HealthCheck(ctx context.Context) error
}
