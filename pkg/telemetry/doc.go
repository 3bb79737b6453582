// Package telemetry provides observability instrumentation for medstore.
//
// The telemetry package integrates structured logging (zerolog), distributed
// tracing (OpenTelemetry) and metrics (Prometheus) behind one Telemetry value
// that commands create at startup and hand to the instrumented store.
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx, invocationID := tel.WithInvocation(ctx)
//
// # Structured Logging
//
//	logger := tel.Logger.NewComponentLogger("seed")
//	logger.WithMedicationID(42).Info("record inserted")
//	logger.WithError(err).Error("import failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Every store operation becomes a span named store.<operation>:
//
//	ic := tel.StartOperation(ctx, "get", telemetry.AttrMedicationID.Int64(id))
//	defer ic.End(err)
//
// Supported exporters: "otlp" (OTLP/gRPC), "stdout" (pretty JSON on stderr),
// "none" (spans are created but not exported).
//
// # Metrics
//
// Key metrics exposed:
//
//   - medstore_store_operations_total{operation,status}
//   - medstore_store_operation_duration_seconds{operation}
//   - medstore_store_search_results{field}
//   - medstore_records_imported_total{source,outcome}
//
// Metrics are always collected in-process. They are served over HTTP only
// when MetricsConfig.ListenAddress is set and a long-running command starts
// the server.
package telemetry
