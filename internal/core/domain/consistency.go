package domain

import "time"

// NoFilesAnswer is returned by a query when no records are stored.
// The answering service is never called in that case.
const NoFilesAnswer = "No files in the storage"

// DeleteOutcome records which phases of a two-phase delete completed.
// It lets callers tell "fully deleted" from "storage cleaned, metadata stale".
type DeleteOutcome struct {
	Filename      string
	BlobDeleted   bool
	RecordDeleted bool
}

// Complete returns true when both the blob and its record were removed.
func (o DeleteOutcome) Complete() bool {
	return o.BlobDeleted && o.RecordDeleted
}

// Listing is the result of enumerating stored files.
// Orphans are reported, never repaired.
type Listing struct {
	// Files are the blob names, sorted.
	Files []string

	// OrphanedBlobs are blobs without a text record.
	OrphanedBlobs []string

	// OrphanedRecords are text records without a blob.
	OrphanedRecords []string

	// MetadataChecked is false when the metadata store could not be read,
	// in which case the orphan lists are empty and meaningless.
	MetadataChecked bool
}

// Consistent returns true when no orphans were detected.
func (l *Listing) Consistent() bool {
	return len(l.OrphanedBlobs) == 0 && len(l.OrphanedRecords) == 0
}

// AuditOptions configures a consistency audit.
type AuditOptions struct {
	// VerifyContent re-hashes every blob that has a record and compares
	// the digest with the one stored on the record.
	VerifyContent bool
}

// AuditReport describes every violation of the blob/record invariant
// found by an audit.
type AuditReport struct {
	CheckedAt       time.Time
	BlobCount       int
	RecordCount     int
	OrphanedBlobs   []string
	OrphanedRecords []string
	// StaleRecords have a digest that no longer matches their blob.
	StaleRecords []string
	// ContentVerified is true when VerifyContent was requested and ran.
	ContentVerified bool
}

// Consistent returns true when the audit found no violations.
func (r *AuditReport) Consistent() bool {
	return len(r.OrphanedBlobs) == 0 && len(r.OrphanedRecords) == 0 && len(r.StaleRecords) == 0
}
