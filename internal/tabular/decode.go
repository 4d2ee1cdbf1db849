// Package tabular reads uploaded journal and balance-sheet files into raw
// string tables. It owns the encoding fallback: Japanese accounting software
// exports CSV in UTF-8 with BOM, CP932, or plain UTF-8 depending on vendor
// and version.
package tabular

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ErrUndecodable is returned when no configured encoding decodes the input.
var ErrUndecodable = errors.New("input not decodable with any configured encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw upload bytes to a UTF-8 string by attempting, in
// order: UTF-8 with BOM, CP932, strict UTF-8. The first clean decode wins.
// A separate plain Shift-JIS retry is pointless: CP932 is its superset.
func Decode(raw []byte) (string, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		body := raw[len(utf8BOM):]
		if utf8.Valid(body) {
			return string(body), nil
		}
		return "", ErrUndecodable
	}

	if s, ok := decodeCP932(raw); ok {
		return s, nil
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	return "", ErrUndecodable
}

// decodeCP932 decodes Shift-JIS/CP932 bytes strictly: any byte sequence the
// codec cannot represent (surfacing as U+FFFD) fails the attempt instead of
// silently corrupting cells.
func decodeCP932(raw []byte) (string, bool) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
