// Package filehandle manages the reference to the single user-chosen backing
// database file.
//
// A Handle is a capability for one file: it can be read, written through a
// scoped Writable, and asked whether access is still permitted. The Manager
// persists the active handle's reference in a durable key-value Slot under a
// fixed key, re-requests permission exactly once when access is no longer
// granted, and fronts the open/save pickers supplied by the host.
//
// The package moves bytes only. It never looks inside the database image.
package filehandle
