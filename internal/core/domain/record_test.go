package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTextRecord_Validate(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		r := &TextRecord{Filename: "a.pdf", Text: "", UploadedAt: time.Now()}
		assert.NoError(t, r.Validate())
	})

	t.Run("nil record", func(t *testing.T) {
		var r *TextRecord
		assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
	})

	t.Run("invalid filename", func(t *testing.T) {
		r := &TextRecord{Filename: "../a.pdf"}
		assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
	})

	t.Run("negative size", func(t *testing.T) {
		r := &TextRecord{Filename: "a.pdf", Size: -1}
		assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
	})
}
