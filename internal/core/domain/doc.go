// Package domain defines the core business entities for docgate.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TextRecord: Extracted text stored for one uploaded file
//   - BlobInfo: What the blob store learned while persisting a file
//   - DeleteOutcome: Which halves of a two-phase delete completed
//   - Listing / AuditReport: Views over both stores with invariant checks
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
