// Package pipeline runs the list, select, fetch video, fetch audio and merge
// sequence for a single URL. Files are produced in a per-run staging
// directory and moved into the output directory only after a successful
// merge.
package pipeline
