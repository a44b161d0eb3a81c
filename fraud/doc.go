// Package fraud defines the domain model for transaction screening:
// transactions, screening outcomes, coordinator branch labels, and the
// rule taxonomy shared by the rule-based assessment.
//
// Everything here is plain data. Orchestration lives in package pipeline,
// the assessment capabilities in package agent.
package fraud
