// Package testsupport builds throwaway configurations, warehouses, and a fake
// lookup API for tests.
package testsupport
