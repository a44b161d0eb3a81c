// Package validation provides struct validation via go-playground/validator,
// returning coded application errors with per-field details.
package validation
