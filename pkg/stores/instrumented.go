package stores

import (
	"context"

	"github.com/medstore/medstore/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// InstrumentedStore wraps a Store and records a span, a log entry and
// metrics for every medication operation.
type InstrumentedStore struct {
	inner Store
	tel   *telemetry.Telemetry
}

// NewInstrumentedStore decorates inner with the given telemetry.
func NewInstrumentedStore(inner Store, tel *telemetry.Telemetry) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, tel: tel}
}

// Unwrap returns the decorated store.
func (s *InstrumentedStore) Unwrap() Store {
	return s.inner
}

func (s *InstrumentedStore) Init(ctx context.Context) error {
	return s.inner.Init(ctx)
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}

func (s *InstrumentedStore) Migrate(ctx context.Context) error {
	ic := s.tel.StartOperation(ctx, "migrate")
	err := s.inner.Migrate(ic.Ctx)
	s.finish(ic, "migrate", err)
	return err
}

func (s *InstrumentedStore) HealthCheck(ctx context.Context) error {
	return s.inner.HealthCheck(ctx)
}

func (s *InstrumentedStore) AddMedication(ctx context.Context, m *Medication) error {
	ic := s.tel.StartOperation(ctx, "add", telemetry.AttrMedicationID.Int64(m.ID))
	err := s.inner.AddMedication(ic.Ctx, m)
	s.finish(ic, "add", err)
	return err
}

func (s *InstrumentedStore) GetMedication(ctx context.Context, id int64) (*Medication, error) {
	ic := s.tel.StartOperation(ctx, "get", telemetry.AttrMedicationID.Int64(id))
	m, err := s.inner.GetMedication(ic.Ctx, id)
	if err == nil {
		ic.Span.SetAttributes(attribute.Bool("medication.found", m != nil))
	}
	s.finish(ic, "get", err)
	return m, err
}

func (s *InstrumentedStore) SearchByPerson(ctx context.Context, substring string) ([]*Medication, error) {
	return s.search(ctx, SearchFieldPerson, substring, s.inner.SearchByPerson)
}

func (s *InstrumentedStore) SearchByCondition(ctx context.Context, substring string) ([]*Medication, error) {
	return s.search(ctx, SearchFieldCondition, substring, s.inner.SearchByCondition)
}

func (s *InstrumentedStore) SearchByMedicine(ctx context.Context, substring string) ([]*Medication, error) {
	return s.search(ctx, SearchFieldMedicine, substring, s.inner.SearchByMedicine)
}

func (s *InstrumentedStore) UpdateMedication(ctx context.Context, m *Medication) error {
	ic := s.tel.StartOperation(ctx, "update", telemetry.AttrMedicationID.Int64(m.ID))
	err := s.inner.UpdateMedication(ic.Ctx, m)
	s.finish(ic, "update", err)
	return err
}

func (s *InstrumentedStore) DeleteMedication(ctx context.Context, id int64) error {
	ic := s.tel.StartOperation(ctx, "delete", telemetry.AttrMedicationID.Int64(id))
	err := s.inner.DeleteMedication(ic.Ctx, id)
	s.finish(ic, "delete", err)
	return err
}

func (s *InstrumentedStore) search(
	ctx context.Context,
	field SearchField,
	substring string,
	fn func(context.Context, string) ([]*Medication, error),
) ([]*Medication, error) {
	op := "search_" + string(field)
	ic := s.tel.StartOperation(ctx, op, telemetry.AttrSearchField.String(string(field)))
	results, err := fn(ic.Ctx, substring)
	if err == nil {
		ic.Span.SetAttributes(telemetry.AttrSearchResults.Int(len(results)))
		s.tel.Metrics.RecordSearchResults(string(field), len(results))
		ic.Logger = ic.Logger.WithField("results", len(results))
	}
	s.finish(ic, op, err)
	return results, err
}

// finish ends the span, records metrics and logs the outcome. Logical
// errors log at warn, storage failures at error.
func (s *InstrumentedStore) finish(ic *telemetry.InstrumentedContext, op string, err error) {
	duration := ic.Timer.Duration()
	status := statusOf(err)

	if kind := KindOf(err); kind != "" {
		ic.Span.SetAttributes(telemetry.AttrErrorKind.String(string(kind)))
	}
	ic.End(err)

	s.tel.Metrics.RecordOperation(op, status, duration)

	logger := ic.Logger.WithField("duration", duration.String())
	switch status {
	case telemetry.StatusOK:
		logger.Debug("store operation completed")
	case telemetry.StatusError:
		logger.WithError(err).Error("store operation failed")
	default:
		logger.WithError(err).Warn("store operation rejected")
	}
}

func statusOf(err error) string {
	if err == nil {
		return telemetry.StatusOK
	}
	switch KindOf(err) {
	case KindAlreadyExists:
		return telemetry.StatusAlreadyExists
	case KindNotFound:
		return telemetry.StatusNotFound
	default:
		return telemetry.StatusError
	}
}

var _ Store = (*InstrumentedStore)(nil)
var _ Store = (*SQLiteStore)(nil)
