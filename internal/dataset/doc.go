// Package dataset defines conditioning records, the manifest-backed source
// that produces them, and the strided partitioning that splits a dataset
// across cooperating distributed replicas without overlap or gaps.
package dataset
