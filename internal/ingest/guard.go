package ingest

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidMimeType is returned for uploads that are not text.
var ErrInvalidMimeType = errors.New("invalid mime type")

// CheckContentType sniffs data and accepts text/plain or anything derived from
// it. The detected type is returned in both cases.
func CheckContentType(data []byte) (string, error) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return detected.String(), nil
		}
	}
	return detected.String(), fmt.Errorf("%w: %s", ErrInvalidMimeType, detected.String())
}
