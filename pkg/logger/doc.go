// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package standardises structured logging across the authentication
// services by exposing a single factory, New, that creates a *slog.Logger
// configured by Option functions:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled from
//     a context value (for example a request id) every time Handle is invoked
//
// Helper constructors such as IdentityID, Method, Channel and Reason live in
// attr.go and keep attribute naming consistent across the services, which
// matters when counting verification failures per method in a log pipeline.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("auth-service"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//
//	orchestrator := mfa.NewOrchestrator(engine, vault, oob, matcher, prefs,
//	    mfa.WithLogger(log),
//	)
//
// Every service in the module accepts a logger through its WithLogger option
// and defaults to a discard logger when none is given.
package logger
