// Package egs reads and writes archives of training examples. An archive is
// a sequence of examples in either a line-oriented JSON format or a compact
// binary format framed with protobuf wire encoding; files ending in .gz are
// transparently gzip-compressed. Both formats preserve the supervision
// encoding exactly: sparse stays sparse and compressed matrices are carried
// as their quantized payload, never inflated.
package egs

import "strings"

// Format selects the archive serialization
type Format int

const (
	FormatJSON Format = iota
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// DetectFormat picks the archive format from a file name: a .json suffix
// (before any .gz) means JSON, anything else is the binary format.
func DetectFormat(path string) Format {
	path = strings.TrimSuffix(path, ".gz")
	if strings.HasSuffix(path, ".json") {
		return FormatJSON
	}
	return FormatBinary
}
