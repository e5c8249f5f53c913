// Package classify turns lookup results into activity rows tagged against the
// reference CNAE list, or into a single error record. It performs no I/O.
package classify
