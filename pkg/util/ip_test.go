package util

import "testing"

func TestComputeNeighborIP(t *testing.T) {
	tests := []struct {
		name     string
		localIP  string
		maskLen  int
		expected string
	}{
		{"slash31 even", "10.1.1.0", 31, "10.1.1.1"},
		{"slash31 odd", "10.1.1.1", 31, "10.1.1.0"},
		{"slash30 first host", "10.1.1.1", 30, "10.1.1.2"},
		{"slash30 second host", "10.1.1.2", 30, "10.1.1.1"},
		{"slash30 network address", "10.1.1.0", 30, ""},
		{"slash30 broadcast address", "10.1.1.3", 30, ""},
		{"not point-to-point", "10.1.1.1", 24, ""},
		{"invalid IP", "not-an-ip", 31, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeNeighborIP(tt.localIP, tt.maskLen)
			if got != tt.expected {
				t.Errorf("ComputeNeighborIP(%s, %d) = %q, want %q", tt.localIP, tt.maskLen, got, tt.expected)
			}
		})
	}
}

func TestPointToPointHosts(t *testing.T) {
	tests := []struct {
		name    string
		cidr    string
		first   string
		second  string
		wantErr bool
	}{
		{"slash31", "10.0.1.0/31", "10.0.1.0", "10.0.1.1", false},
		{"slash31 non-base address", "10.0.1.1/31", "10.0.1.0", "10.0.1.1", false},
		{"slash30", "10.250.1.0/30", "10.250.1.1", "10.250.1.2", false},
		{"slash24", "192.168.1.0/24", "", "", true},
		{"malformed", "10.0.1.0", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second, err := PointToPointHosts(tt.cidr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("PointToPointHosts(%s) expected error, got %s/%s", tt.cidr, first, second)
				}
				return
			}
			if err != nil {
				t.Fatalf("PointToPointHosts(%s) unexpected error: %v", tt.cidr, err)
			}
			if first != tt.first || second != tt.second {
				t.Errorf("PointToPointHosts(%s) = (%s, %s), want (%s, %s)", tt.cidr, first, second, tt.first, tt.second)
			}
		})
	}
}

func TestFirstHostIP(t *testing.T) {
	tests := []struct {
		cidr     string
		expected string
		wantErr  bool
	}{
		{"192.168.1.0/25", "192.168.1.1", false},
		{"192.168.4.0/25", "192.168.4.1", false},
		{"10.0.0.0/8", "10.0.0.1", false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		got, err := FirstHostIP(tt.cidr)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FirstHostIP(%s) expected error", tt.cidr)
			}
			continue
		}
		if err != nil {
			t.Errorf("FirstHostIP(%s) unexpected error: %v", tt.cidr, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("FirstHostIP(%s) = %q, want %q", tt.cidr, got, tt.expected)
		}
	}
}

func TestSubnetsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"identical", "192.168.1.0/25", "192.168.1.0/25", true},
		{"contained", "192.168.1.0/24", "192.168.1.64/26", true},
		{"disjoint", "192.168.1.0/25", "192.168.2.0/25", false},
		{"adjacent", "192.168.1.0/25", "192.168.1.128/25", false},
		{"malformed left", "bogus", "192.168.1.0/25", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubnetsOverlap(tt.a, tt.b); got != tt.expected {
				t.Errorf("SubnetsOverlap(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestValidateASN(t *testing.T) {
	if err := ValidateASN(65001); err != nil {
		t.Errorf("ValidateASN(65001) unexpected error: %v", err)
	}
	if err := ValidateASN(4294967295); err != nil {
		t.Errorf("ValidateASN(max) unexpected error: %v", err)
	}
	if err := ValidateASN(0); err == nil {
		t.Error("ValidateASN(0) expected error")
	}
	if err := ValidateASN(4294967296); err == nil {
		t.Error("ValidateASN(max+1) expected error")
	}
}

func TestIsValidRouteTarget(t *testing.T) {
	tests := []struct {
		rt       string
		expected bool
	}{
		{"65001:401101", true},
		{"10.0.0.11:1", true},
		{"65001", false},
		{"65001:", false},
		{":100", false},
		{"999.0.0.1:1", false},
		{"0:100", false},
		{"65001:100:200", false},
	}

	for _, tt := range tests {
		if got := IsValidRouteTarget(tt.rt); got != tt.expected {
			t.Errorf("IsValidRouteTarget(%q) = %v, want %v", tt.rt, got, tt.expected)
		}
	}
}

func TestDeriveNeighborIP(t *testing.T) {
	got, err := DeriveNeighborIP("10.250.1.1/30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10.250.1.2" {
		t.Errorf("DeriveNeighborIP = %q, want 10.250.1.2", got)
	}

	if _, err := DeriveNeighborIP("10.250.1.1/24"); err == nil {
		t.Error("expected error for /24 subnet")
	}
	if _, err := DeriveNeighborIP("10.250.1.1"); err == nil {
		t.Error("expected error for missing mask")
	}
}
