package util

import (
	"reflect"
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		contains []int
		excludes []int
		wantErr  bool
	}{
		{"single value", "1101", []int{1101}, []int{1100, 1102}, false},
		{"simple range", "1151-1199", []int{1151, 1175, 1199}, []int{1150, 1200}, false},
		{"mixed", "1101,1151-1199", []int{1101, 1151, 1199}, []int{1102, 1200}, false},
		{"vni ranges", "101000-102000,401000-402000", []int{101151, 401101}, []int{100999, 402001}, false},
		{"empty spec", "", nil, []int{0, 1}, false},
		{"reversed range", "1199-1151", nil, nil, true},
		{"garbage", "abc", nil, nil, true},
		{"garbage end", "100-abc", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRange(%q) expected error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q) unexpected error: %v", tt.spec, err)
			}
			for _, v := range tt.contains {
				if !r.Contains(v) {
					t.Errorf("range %q should contain %d", tt.spec, v)
				}
			}
			for _, v := range tt.excludes {
				if r.Contains(v) {
					t.Errorf("range %q should not contain %d", tt.spec, v)
				}
			}
		})
	}
}

func TestIntRangeOverlaps(t *testing.T) {
	l2, _ := ParseRange("101000-102000")
	l3, _ := ParseRange("401000-402000")
	if l2.Overlaps(l3) {
		t.Error("disjoint VNI ranges should not overlap")
	}

	a, _ := ParseRange("100-200")
	b, _ := ParseRange("200-300")
	if !a.Overlaps(b) {
		t.Error("ranges sharing an endpoint should overlap")
	}
}

func TestIntRangeExpand(t *testing.T) {
	r, _ := ParseRange("1101,1151-1153")
	want := []int{1101, 1151, 1152, 1153}
	if got := r.Expand(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestNewIntRange(t *testing.T) {
	r := NewIntRange(1151, 1152)
	if !r.Contains(1151) || !r.Contains(1152) {
		t.Error("NewIntRange should contain its values")
	}
	if r.Contains(1153) {
		t.Error("NewIntRange should not contain other values")
	}
	if r.IsEmpty() {
		t.Error("non-empty range reported empty")
	}
	if !NewIntRange().IsEmpty() {
		t.Error("empty range not reported empty")
	}
}
