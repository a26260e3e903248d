// Package observability provides logging and tracing functionality
// for the users API.
//
// # Logging
//
// The Logger interface provides structured logging backed by zap:
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("user created",
//	    observability.Int64("id", 42),
//	)
//
// The level of a logger created by NewLogger can be changed at runtime
// with SetLevel, which is how configuration reloads take effect.
//
// # Tracing
//
// OpenTelemetry tracing with optional OTLP gRPC export:
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    ServiceName:  "userapi",
//	    OTLPEndpoint: "localhost:4317",
//	    Enabled:      true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(ctx)
//
// Spans started with Tracer.StartSpan, or tagged with ContextWithSpan,
// put their trace and span IDs on the context, and Logger.WithContext
// adds them to every line it writes.
package observability
