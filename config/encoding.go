package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

func encodingFor(name string) (encoding.Encoding, error) {
	if len(strings.TrimSpace(name)) == 0 {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Decode converts the raw source in the named encoding (any WHATWG label, like
// "utf-8", "latin1" or "shift_jis") to a UTF-8 string.
// An empty name means UTF-8.
func Decode(raw []byte, name string) (string, error) {
	enc, err := encodingFor(name)
	if err != nil {
		return "", err
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s input: %w", name, err)
	}

	// A byte order mark is not part of the document
	return strings.TrimPrefix(string(out), "\ufeff"), nil
}
