// Package services defines shared utilities consumed by the processing loop
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the run correlation id and the CNPJ being
//     processed for logging.
//   - Structured error markers plus the Wrap helper so failures from the
//     lookup API, the warehouse, and the checkpoint store can be classified
//     with errors.Is.
//
// Integrations with external systems live in subpackages (receitaws).
package services
