package encoding

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// ByName resolves a character set name to a decoder. "ascii" and "raw" return nil, meaning identifiers are used
// byte for byte.
func ByName(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return japanese.ShiftJIS, nil
	case "euc-jp":
		return japanese.EUCJP, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "cp437":
		return charmap.CodePage437, nil
	case "", "ascii", "raw":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown name encoding %q", name)
	}
}

// DecodeIdentifier decodes an on-disc identifier. Bytes that do not decode are kept as they are.
func DecodeIdentifier(b []byte, enc encoding.Encoding) string {
	if enc == nil {
		return string(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// StripVersion removes a trailing ";<digits>" version suffix from a file identifier.
func StripVersion(name string) string {
	i := strings.LastIndex(name, ";")
	if i < 0 {
		return name
	}
	for _, c := range name[i+1:] {
		if c < '0' || c > '9' {
			return name
		}
	}
	return name[:i]
}

// TrimIdentifier removes the space and NUL padding of a fixed-width identifier field.
func TrimIdentifier(s string) string {
	return strings.Trim(s, " \x00")
}
