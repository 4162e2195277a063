// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Every multi-store operation is written as a sequence of named steps
// with a defined outcome when any step fails. Nothing is retried here;
// retries are a caller decision.
package services
