// Package encoding provides text encoding utilities for render block model
// texture paths and archive lookups.
package encoding

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrUnencodable is returned when a string holds characters outside ISO-8859-1.
var ErrUnencodable = errors.New("string is not representable in ISO-8859-1")

// Latin1ToUTF8 converts ISO-8859-1 encoded bytes to a UTF-8 string.
// Every byte sequence is valid, so the conversion never fails and
// UTF8ToLatin1 restores the original bytes exactly.
func Latin1ToUTF8(data []byte) string {
	if isASCII(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToLatin1 converts a UTF-8 string to ISO-8859-1 encoded bytes.
func UTF8ToLatin1(s string) ([]byte, error) {
	if isASCII([]byte(s)) {
		return []byte(s), nil
	}
	result, _, err := transform.Bytes(charmap.ISO8859_1.NewEncoder(), []byte(s))
	if err != nil {
		return nil, ErrUnencodable
	}
	return result, nil
}

// NormalizePath normalizes an asset path for case-insensitive lookup.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")
	return strings.ToLower(path)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
