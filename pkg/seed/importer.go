package seed

import (
	"context"
	"fmt"

	"github.com/medstore/medstore/pkg/stores"
	"github.com/medstore/medstore/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Import outcomes, used as the outcome label of
// medstore_records_imported_total.
const (
	OutcomeInserted = "inserted"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Summary counts what one import did.
type Summary struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Importer inserts batches of records into a store.
type Importer struct {
	store   stores.Store
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
	logger  *telemetry.Logger
}

// NewImporter creates an importer writing to store. tel may be nil.
func NewImporter(store stores.Store, tel *telemetry.Telemetry) *Importer {
	if tel == nil {
		tel = telemetry.NewNopTelemetry()
	}
	return &Importer{
		store:   store,
		metrics: tel.Metrics,
		tracer:  tel.Tracer,
		logger:  tel.Logger.NewComponentLogger("seed"),
	}
}

// Import inserts records in order. Records whose id is already stored are
// skipped. Any other error stops the import and is returned together with
// the counts so far.
func (im *Importer) Import(ctx context.Context, source string, records []*stores.Medication) (sum Summary, err error) {
	ctx, span := im.tracer.StartSpan(ctx, "seed.import", telemetry.AttrImportSource.String(source))
	defer func() {
		span.SetAttributes(
			attribute.Int("import.inserted", sum.Inserted),
			attribute.Int("import.skipped", sum.Skipped),
		)
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.RecordSuccess(span)
		}
		span.End()
	}()

	for _, m := range records {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return sum, ctxErr
		}

		addErr := im.store.AddMedication(ctx, m)
		switch {
		case addErr == nil:
			sum.Inserted++
			im.metrics.RecordImported(source, OutcomeInserted)
		case stores.IsAlreadyExists(addErr):
			sum.Skipped++
			im.metrics.RecordImported(source, OutcomeSkipped)
			telemetry.AddEvent(span, "record.skipped", telemetry.AttrMedicationID.Int64(m.ID))
			im.logger.WithMedicationID(m.ID).Debug("record already stored, skipping")
		default:
			im.metrics.RecordImported(source, OutcomeFailed)
			return sum, fmt.Errorf("failed to import medication %d: %w", m.ID, addErr)
		}
	}

	im.logger.WithField("source", source).
		Infof("import finished: %d inserted, %d skipped", sum.Inserted, sum.Skipped)

	return sum, nil
}

// Seed generates count records with ids 1..count and imports them.
func (im *Importer) Seed(ctx context.Context, gen *Generator, count int) (Summary, error) {
	if count < 0 {
		return Summary{}, fmt.Errorf("count must not be negative, got %d", count)
	}
	return im.Import(ctx, "seed", gen.Generate(count))
}
