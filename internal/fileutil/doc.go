// Package fileutil holds filesystem helpers shared by the checkpoint store.
package fileutil
