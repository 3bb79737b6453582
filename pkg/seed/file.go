package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/medstore/medstore/pkg/stores"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of an import file:
//
//	medications:
//	  - id: 11
//	    person_name: Mina
//	    age: 42
//	    condition: Asthma
//	    medicine_name: Salbutamol
//	    dosage: 2 tablet(s)
//	    frequency: 2 times/day
//	    start_date: "2025-01-01"
//	    end_date: "2025-02-01"
type File struct {
	Medications []Record `yaml:"medications" validate:"dive"`
}

// Record is one medication entry in an import file.
type Record struct {
	ID           int64  `yaml:"id" validate:"gt=0"`
	PersonName   string `yaml:"person_name" validate:"required"`
	Age          int    `yaml:"age" validate:"gte=0,lte=150"`
	Condition    string `yaml:"condition" validate:"required"`
	MedicineName string `yaml:"medicine_name" validate:"required"`
	Dosage       string `yaml:"dosage"`
	Frequency    string `yaml:"frequency"`
	StartDate    string `yaml:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `yaml:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r Record) medication() *stores.Medication {
	return &stores.Medication{
		ID:           r.ID,
		PersonName:   r.PersonName,
		Age:          r.Age,
		Condition:    r.Condition,
		MedicineName: r.MedicineName,
		Dosage:       r.Dosage,
		Frequency:    r.Frequency,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
	}
}

var validate = validator.New()

// LoadFile reads and validates an import file.
func LoadFile(path string) ([]*stores.Medication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates import file content.
func Parse(data []byte) ([]*stores.Medication, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}

	if err := validate.Struct(&f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid import file: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid import file: %w", err)
	}

	seen := make(map[int64]bool, len(f.Medications))
	records := make([]*stores.Medication, 0, len(f.Medications))
	for _, r := range f.Medications {
		if seen[r.ID] {
			return nil, fmt.Errorf("invalid import file: id %d appears more than once", r.ID)
		}
		seen[r.ID] = true
		records = append(records, r.medication())
	}

	return records, nil
}
