// Package services defines shared utilities consumed by the share server and
// its supporting packages.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers and item ids
//     for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent HTTP statuses (not found vs server error).
//
// Use these helpers when wiring new handlers so operational behaviour (error
// handling, observability) stays uniform across the server.
package services
