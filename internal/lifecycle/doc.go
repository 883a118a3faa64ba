// Package lifecycle orchestrates the backing file and the embedded store.
//
// The Controller moves between three states:
//
//	Uninitialized -> NeedsFile -> Ready
//	Uninitialized -> Ready            (stored handle still valid)
//
// It owns the only Store of the session. Every entry point takes the
// controller's lock, so a load or create always finishes (default settings
// included) before any read or write reaches the store. Row operations are
// forwarded to the store only in the Ready state.
//
// Mutations never touch the file. SaveDatabaseToFile exports the whole
// database and rewrites the current file; SaveDatabaseAs writes a copy to a
// newly picked location without switching the current file.
package lifecycle
