// Package encoding converts the EUC-KR names stored in Ragnarok Online data files.
package encoding

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DecodeEUCKR converts EUC-KR bytes to UTF-8. Undecodable input is returned as is.
func DecodeEUCKR(raw []byte) string {
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// EncodeEUCKR converts UTF-8 to EUC-KR. Unencodable input is returned as is.
func EncodeEUCKR(s string) []byte {
	out, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

// FixedString decodes a NUL-padded EUC-KR field.
func FixedString(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return DecodeEUCKR(raw)
}

// SlashPath converts game paths to forward slashes.
func SlashPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// NormalizePath is the case-insensitive lookup key of a game path.
func NormalizePath(p string) string {
	return strings.ToLower(SlashPath(p))
}
