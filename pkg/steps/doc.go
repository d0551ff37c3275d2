// Package steps provides the step kinds civicflow pipelines are assembled from.
//
// Steps communicate only through the shared context, using the typed keys
// declared in keys.go.
package steps
