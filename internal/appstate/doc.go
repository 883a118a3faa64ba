// Package appstate is the in-memory mirror of the open database.
//
// State holds the last hydrated AppData plus a dirty flag. Every view is
// computed from that data when it is read, and every read returns a deep
// copy, so callers can never observe or cause divergence from the mirror.
//
// Mutations go through a Backend (the lifecycle controller in production, a
// bare store in tests) and follow one order:
//
//  1. persist the change through the Backend
//  2. apply the same change to the mirror
//  3. mark the state dirty and notify subscribers
//
// If step 1 fails, nothing else happens and the error is returned. The
// mirror therefore only ever describes rows the store accepted. The dirty
// flag tracks whether the store has changes the backing file does not; it is
// cleared by MarkClean after a successful save.
package appstate
