package internal

import (
	"crypto/rand"
	"encoding/base64"
)

const fileSuffixSize = 8

// NewFileSuffix returns a short random suffix for temp file names used
// during atomic writes.
func NewFileSuffix() (string, error) {
	var raw [fileSuffixSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
