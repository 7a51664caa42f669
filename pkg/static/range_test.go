package static

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func TestParseRangeStandard(t *testing.T) {
	r, kind := ParseRange("bytes=0-99", 1000)
	if kind != RangeValid {
		t.Fatalf("expected RangeValid, got %v", kind)
	}
	if r.Start != 0 || r.End != 99 {
		t.Fatalf("expected [0,99], got [%d,%d]", r.Start, r.End)
	}
}

func TestParseRangeOpenEnded(t *testing.T) {
	r, kind := ParseRange("bytes=500-", 1000)
	if kind != RangeValid {
		t.Fatalf("expected RangeValid, got %v", kind)
	}
	if r.Start != 500 || r.End != 999 {
		t.Fatalf("expected [500,999], got [%d,%d]", r.Start, r.End)
	}
}

func TestParseRangeSuffix(t *testing.T) {
	r, kind := ParseRange("bytes=-100", 1000)
	if kind != RangeValid {
		t.Fatalf("expected RangeValid, got %v", kind)
	}
	if r.Start != 900 || r.End != 999 {
		t.Fatalf("expected [900,999], got [%d,%d]", r.Start, r.End)
	}
}

func TestParseRangeSuffixLargerThanSizeClampsToZero(t *testing.T) {
	r, kind := ParseRange("bytes=-5000", 1000)
	if kind != RangeValid {
		t.Fatalf("expected RangeValid, got %v", kind)
	}
	if r.Start != 0 || r.End != 999 {
		t.Fatalf("expected clamp to [0,999], got [%d,%d]", r.Start, r.End)
	}
}

func TestParseRangeSuffixZeroIsUnsatisfiable(t *testing.T) {
	_, kind := ParseRange("bytes=-0", 1000)
	if kind != RangeUnsatisfiable {
		t.Fatalf("expected RangeUnsatisfiable for zero-length suffix, got %v", kind)
	}
}

func TestParseRangeStartBeyondSizeIsUnsatisfiable(t *testing.T) {
	_, kind := ParseRange("bytes=2000-2100", 1000)
	if kind != RangeUnsatisfiable {
		t.Fatalf("expected RangeUnsatisfiable, got %v", kind)
	}
}

func TestParseRangeEndClampedToSize(t *testing.T) {
	r, kind := ParseRange("bytes=0-5000", 1000)
	if kind != RangeValid {
		t.Fatalf("expected RangeValid, got %v", kind)
	}
	if r.End != 999 {
		t.Fatalf("expected end clamped to size-1=999, got %d", r.End)
	}
}

func TestParseRangeMultipartUnsupported(t *testing.T) {
	_, kind := ParseRange("bytes=0-99,200-299", 1000)
	if kind != RangeNone {
		t.Fatalf("expected RangeNone for multipart range, got %v", kind)
	}
}

func TestParseRangeMissingPrefixIsNone(t *testing.T) {
	_, kind := ParseRange("0-99", 1000)
	if kind != RangeNone {
		t.Fatalf("expected RangeNone without bytes= prefix, got %v", kind)
	}
}

func TestParseRangeMalformedIsNone(t *testing.T) {
	_, kind := ParseRange("bytes=abc-def", 1000)
	if kind != RangeNone {
		t.Fatalf("expected RangeNone for malformed range, got %v", kind)
	}
}

func TestByteRangeLen(t *testing.T) {
	r := ByteRange{Start: 10, End: 19}
	if r.Len() != 10 {
		t.Fatalf("expected length 10, got %d", r.Len())
	}
}

// TestParseRangeStandardRangeAlwaysWithinBounds is a property test: any
// satisfiable standard "bytes=a-b" range parsed against a random file size
// always resolves to a span fully contained within [0, size-1].
func TestParseRangeStandardRangeAlwaysWithinBounds(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		size := rapid.Int64Range(1, 1<<20).Draw(tt, "size")
		start := rapid.Int64Range(0, size+100).Draw(tt, "start")
		end := rapid.Int64Range(start, start+100000).Draw(tt, "end")

		header := fmt.Sprintf("bytes=%d-%d", start, end)
		r, kind := ParseRange(header, size)
		switch kind {
		case RangeValid:
			if r.Start < 0 || r.End >= size || r.Start > r.End {
				tt.Fatalf("invalid resolved range [%d,%d] for size %d", r.Start, r.End, size)
			}
		case RangeUnsatisfiable:
			if start < size {
				tt.Fatalf("start %d < size %d should have been satisfiable", start, size)
			}
		}
	})
}

// TestParseRangeSuffixAlwaysEndsAtLastByte is a property test: any valid
// suffix range "bytes=-n" always ends exactly at size-1.
func TestParseRangeSuffixAlwaysEndsAtLastByte(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		size := rapid.Int64Range(1, 1<<20).Draw(tt, "size")
		suffix := rapid.Int64Range(1, size+1000).Draw(tt, "suffix")

		header := fmt.Sprintf("bytes=-%d", suffix)
		r, kind := ParseRange(header, size)
		if kind != RangeValid {
			tt.Fatalf("expected RangeValid for positive suffix, got %v", kind)
		}
		if r.End != size-1 {
			tt.Fatalf("expected suffix range to end at %d, got %d", size-1, r.End)
		}
		if r.Start < 0 {
			tt.Fatalf("expected non-negative start, got %d", r.Start)
		}
	})
}
