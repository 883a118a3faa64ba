// Package testutil provides deterministic in-memory collaborators for tests:
// file handles with scripted permission answers, a picker and resolver over
// those handles, a memory slot, fixed id and time sources, and raw edits of database images.
package testutil
