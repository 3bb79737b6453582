package seed

import (
	"fmt"
	"math/rand/v2"

	"github.com/medstore/medstore/pkg/stores"
)

// DefaultCount is the number of records generated when no count is given.
const DefaultCount = 10

// Value pools for generated records.
var (
	Names       = []string{"Ali", "Ilias", "Saad", "Emma", "Omar", "Liu", "Mina", "Sayf", "Fatima", "Noah"}
	Conditions  = []string{"Diabetes", "Hypertension", "Asthma", "Depression", "Allergy", "Arthritis"}
	Medicines   = []string{"Metformin", "Lisinopril", "Salbutamol", "Sertraline", "Cetirizine", "Ibuprofen"}
	Frequencies = []string{"1 time/day", "2 times/day", "3 times/day", "once a week"}
)

const (
	minAge    = 20
	maxAge    = 85
	maxTablet = 3

	startDate = "2025-01-01"
	endDate   = "2025-02-01"
)

// Generator produces synthetic medication records.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed. A zero seed picks a
// random one, so runs differ.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Medication returns one generated record with the given id.
func (g *Generator) Medication(id int64) *stores.Medication {
	return &stores.Medication{
		ID:           id,
		PersonName:   pick(g.rng, Names),
		Age:          minAge + g.rng.IntN(maxAge-minAge+1),
		Condition:    pick(g.rng, Conditions),
		MedicineName: pick(g.rng, Medicines),
		Dosage:       fmt.Sprintf("%d tablet(s)", 1+g.rng.IntN(maxTablet)),
		Frequency:    pick(g.rng, Frequencies),
		StartDate:    startDate,
		EndDate:      endDate,
	}
}

// Generate returns n records with ids 1..n.
func (g *Generator) Generate(n int) []*stores.Medication {
	records := make([]*stores.Medication, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, g.Medication(int64(i)))
	}
	return records
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.IntN(len(pool))]
}
