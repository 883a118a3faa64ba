// Package auth implements the single-shop login.
//
// Users live in the open database file. The first login against a file with
// no users registers that user. The logged-in user is held by the Service
// for the life of the process only and is never written anywhere.
package auth
