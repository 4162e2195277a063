package domain

import (
	"fmt"
	"time"
)

// TextRecord is the metadata entry holding extracted text for one blob.
// Filename is the unique key correlating it with exactly one blob.
type TextRecord struct {
	// ID is the persistence identity, assigned on insert when empty.
	ID string

	// Filename is the unique key shared with the blob store.
	Filename string

	// Text is the extracted content. It may be empty but is always present.
	Text string

	// UploadedAt is set at creation and never changed afterwards.
	UploadedAt time.Time

	// Size is the byte length of the blob the text was extracted from.
	Size int64

	// SHA256 is the hex digest of the blob the text was extracted from.
	SHA256 string
}

// Validate checks the fixed-shape invariants of a record.
func (r *TextRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidInput)
	}
	if err := ValidateFilename(r.Filename); err != nil {
		return err
	}
	if r.Size < 0 {
		return fmt.Errorf("%w: negative size", ErrInvalidInput)
	}
	return nil
}

// BlobInfo describes a blob as persisted by the blob store.
type BlobInfo struct {
	// Name is the filename the blob is addressed by.
	Name string

	// Size is the number of bytes written.
	Size int64

	// SHA256 is the hex digest computed while writing.
	SHA256 string
}
