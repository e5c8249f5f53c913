// Package textutil provides the text normalization applied to values copied
// from the lookup API into the artifact.
//
// The primary use cases are:
//   - Folding free text (company names, activity descriptions) to an
//     accent-free upper-case form
//   - Cleaning activity codes down to their alphanumeric characters so they
//     can be compared against the reference list
package textutil
