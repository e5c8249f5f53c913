// Package receitaws wraps the ReceitaWS CNPJ lookup API.
//
// Responses are decoded once, at this boundary, into the Result variant
// (Success, APIError, Malformed) so consumers match on types instead of
// probing loosely shaped JSON. Transport failures, timeouts, and non-200
// statuses are reported as errors rather than results.
package receitaws
