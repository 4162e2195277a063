// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - BlobStore: Uploaded file bytes (local directory or S3 bucket)
//   - MetadataStore: Text records keyed by filename (SQLite or BadgerDB)
//   - Extractor: Remote text extraction service
//   - Answerer: Remote question answering service
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Watcher: Reports out-of-band changes to the blob directory
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
