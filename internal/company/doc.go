// Package company holds the records that flow between the planner, the
// classifier, and the checkpoint store: work items, classified activities,
// and error records. Label values are the ones persisted in the artifact.
package company
