// Package store provides the embedded relational store behind a shop's
// backing database file.
//
// A Store owns exactly one in-memory SQLite database. It is constructed either
// empty (New: fresh schema plus default settings rows) or from the bytes of a
// previously exported database (Open). Export serializes the whole database
// back to a byte buffer; the store never touches the filesystem itself.
//
// # Tables
//
//   - users(username PK, passwordHash)
//   - inventory(id PK, name, quantity, price, minStock)
//   - invoices(id PK, customerName, vehicle, vehicleNo, mobileNo, km, date,
//     items, subTotal, taxPercent, discountAmount, total, status)
//   - settings(key PK, value)
//
// Invoice line items and every settings value are stored as JSON text. Settings
// are one row per key so new keys never need a schema change.
//
// # Ordering
//
// LoadAllData returns rows in rowid order, which is insertion order. Updates
// keep a row's rowid, so the order matches an in-memory mirror that appends
// on insert and replaces in place on update.
//
// # Connection
//
// SQLite ":memory:" databases are private to one connection, so the pool is
// pinned to a single connection that is never recycled.
package store
