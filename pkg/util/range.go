package util

import (
	"fmt"
	"strconv"
	"strings"
)

// IntRange is a set of integers described by a range specification such
// as "1101,1151-1199". Used for the fabric's managed VLAN and VNI
// namespaces.
type IntRange struct {
	spans []span
}

type span struct {
	start, end int
}

// ParseRange parses a range specification into an IntRange.
// Supported formats:
//   - "1101"            single value
//   - "1151-1199"       inclusive range
//   - "1101,1151-1199"  comma-separated mix
//
// An empty specification yields an empty range (contains nothing).
func ParseRange(spec string) (*IntRange, error) {
	r := &IntRange{}
	if spec == "" {
		return r, nil
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			rangeParts := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid start value in range %s: %v", part, err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid end value in range %s: %v", part, err)
			}
			if start > end {
				return nil, fmt.Errorf("start value %d greater than end value %d in range %s", start, end, part)
			}
			r.spans = append(r.spans, span{start, end})
		} else {
			val, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid value: %s", part)
			}
			r.spans = append(r.spans, span{val, val})
		}
	}
	return r, nil
}

// NewIntRange builds a range containing exactly the given values.
func NewIntRange(values ...int) *IntRange {
	r := &IntRange{}
	for _, v := range values {
		r.spans = append(r.spans, span{v, v})
	}
	return r
}

// Contains reports whether v falls inside the range.
func (r *IntRange) Contains(v int) bool {
	for _, s := range r.spans {
		if v >= s.start && v <= s.end {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the range contains no values.
func (r *IntRange) IsEmpty() bool {
	return len(r.spans) == 0
}

// Overlaps reports whether any value is contained in both ranges.
func (r *IntRange) Overlaps(other *IntRange) bool {
	for _, a := range r.spans {
		for _, b := range other.spans {
			if a.start <= b.end && b.start <= a.end {
				return true
			}
		}
	}
	return false
}

// Expand returns all values in the range in specification order.
func (r *IntRange) Expand() []int {
	var result []int
	for _, s := range r.spans {
		for i := s.start; i <= s.end; i++ {
			result = append(result, i)
		}
	}
	return result
}
