package domain

import (
	"fmt"
	"strings"
)

// MaxFilenameLength is the longest filename accepted, in bytes.
const MaxFilenameLength = 255

// ValidateFilename reports whether name is usable as a key in both stores.
// Names are flat: no directory components are allowed.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidInput)
	}
	if len(name) > MaxFilenameLength {
		return fmt.Errorf("%w: filename exceeds %d bytes", ErrInvalidInput, MaxFilenameLength)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: filename %q is reserved", ErrInvalidInput, name)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: filename cannot start with a dot", ErrInvalidInput)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: filename cannot contain path separators", ErrInvalidInput)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: null bytes not allowed", ErrInvalidInput)
	}
	return nil
}
