package static

import (
	"strconv"
	"strings"
)

// ByteRange is an inclusive, fully-resolved byte span within a file of known
// size — [Start, End].
type ByteRange struct {
	Start int64
	End   int64
}

// RangeResult discriminates what parsing a Range header produced.
type RangeResult int

const (
	// RangeNone means no usable Range header was present (or it used an
	// unsupported form, e.g. multipart); serve the full body.
	RangeNone RangeResult = iota
	// RangeValid means Range carries exactly one satisfiable span.
	RangeValid
	// RangeUnsatisfiable means the parsed range fell entirely outside the file.
	RangeUnsatisfiable
)

// ParseRange implements spec.md §4.5's range grammar: "bytes=a-b", "bytes=a-"
// (open), "bytes=-n" (suffix). Grounded byte-for-byte on
// original_source/src/http/range.rs's parse_range_header.
func ParseRange(header string, size int64) (ByteRange, RangeResult) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, RangeNone
	}
	spec := header[len(prefix):]
	if strings.Contains(spec, ",") {
		// Multipart byte ranges are not supported (spec.md §4.5).
		return ByteRange{}, RangeNone
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return ByteRange{}, RangeNone
	}
	startStr, endStr := parts[0], parts[1]

	if startStr == "" {
		return parseSuffixRange(endStr, size)
	}
	return parseStandardRange(startStr, endStr, size)
}

func parseSuffixRange(suffixStr string, size int64) (ByteRange, RangeResult) {
	suffix, err := strconv.ParseInt(suffixStr, 10, 64)
	if err != nil || suffix < 0 {
		return ByteRange{}, RangeNone
	}
	if suffix == 0 {
		return ByteRange{}, RangeUnsatisfiable
	}
	start := size - suffix
	if start < 0 {
		start = 0
	}
	return ByteRange{Start: start, End: size - 1}, RangeValid
}

func parseStandardRange(startStr, endStr string, size int64) (ByteRange, RangeResult) {
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, RangeNone
	}
	if start >= size {
		return ByteRange{}, RangeUnsatisfiable
	}

	end := size - 1
	if endStr != "" {
		parsedEnd, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || parsedEnd < 0 {
			return ByteRange{}, RangeNone
		}
		end = parsedEnd
		if end > size-1 {
			end = size - 1
		}
	}

	if start > end {
		return ByteRange{}, RangeUnsatisfiable
	}
	return ByteRange{Start: start, End: end}, RangeValid
}

// Len reports the number of bytes in the range, inclusive.
func (b ByteRange) Len() int64 {
	return b.End - b.Start + 1
}
