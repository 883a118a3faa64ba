// Package model defines the shop's domain records: users, inventory items,
// invoices and the settings singleton, plus the AppData aggregate that is
// loaded from and exported to the backing database file as a whole.
//
// JSON tags follow the column and key names used inside the database file so
// that invoice line items and settings values serialize to the same shape
// regardless of which build of the application wrote the file.
package model
