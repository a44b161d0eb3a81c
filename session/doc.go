// Package session implements the interactive review loop a fraud manager
// uses to settle a flagged transaction. The manager issues verdict commands
// or asks free-text questions; questions run through a one-stage query
// pipeline against the account stores.
package session
