// Package lookup provides the account-context stores the query capability
// draws on: transaction history, account profiles, and prior fraud cases.
//
// The interfaces are storage-agnostic; the in-memory implementations ship
// with seeded demo data so the system runs without external services.
package lookup
