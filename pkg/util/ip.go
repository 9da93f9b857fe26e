package util

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// ComputeNeighborIP returns the peer IP for point-to-point subnets (/30 or /31)
// Returns empty string if not a point-to-point subnet
func ComputeNeighborIP(localIP string, maskLen int) string {
	ip := net.ParseIP(localIP)
	if ip == nil {
		return ""
	}
	ip = ip.To4()
	if ip == nil {
		return "" // IPv6 not supported for this function
	}

	switch maskLen {
	case 31: // RFC 3021 point-to-point
		if ip[3]&1 == 0 {
			ip[3]++
		} else {
			ip[3]--
		}
	case 30:
		// /30: .0=network, .1=first host, .2=second host, .3=broadcast
		lastOctet := ip[3] & 0x03
		if lastOctet == 1 {
			ip[3]++
		} else if lastOctet == 2 {
			ip[3]--
		} else {
			return "" // Network or broadcast address
		}
	default:
		return "" // Not a point-to-point link
	}
	return ip.String()
}

// PointToPointHosts returns the two usable host addresses of a /31 or /30
// subnet in ascending order. Returns an error for any other prefix length.
func PointToPointHosts(cidr string) (string, string, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", "", fmt.Errorf("invalid CIDR notation: %s", cidr)
	}
	base := ipNet.IP.To4()
	if base == nil {
		return "", "", fmt.Errorf("subnet %s is not IPv4", cidr)
	}
	ones, _ := ipNet.Mask.Size()

	first := make(net.IP, 4)
	second := make(net.IP, 4)
	copy(first, base)
	copy(second, base)

	switch ones {
	case 31:
		second[3]++
	case 30:
		first[3]++
		second[3] += 2
	default:
		return "", "", fmt.Errorf("subnet %s is not point-to-point (use /30 or /31)", cidr)
	}
	return first.String(), second.String(), nil
}

// FirstHostIP returns the first usable host address of a subnet, the
// conventional gateway address for an SVI.
func FirstHostIP(cidr string) (string, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR notation: %s", cidr)
	}
	ip := ipNet.IP.To4()
	if ip == nil {
		return "", fmt.Errorf("subnet %s is not IPv4", cidr)
	}
	host := make(net.IP, 4)
	copy(host, ip)
	host[3]++
	return host.String(), nil
}

// SubnetsOverlap reports whether two CIDR subnets share any addresses.
// Malformed inputs are reported as non-overlapping; they are caught by
// separate syntax checks.
func SubnetsOverlap(a, b string) bool {
	_, netA, errA := net.ParseCIDR(a)
	_, netB, errB := net.ParseCIDR(b)
	if errA != nil || errB != nil {
		return false
	}
	return netA.Contains(netB.IP) || netB.Contains(netA.IP)
}

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// IsValidIPv4CIDR checks if a string is a valid IPv4 CIDR notation
func IsValidIPv4CIDR(cidr string) bool {
	_, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	parts := strings.Split(cidr, "/")
	ip := net.ParseIP(parts[0])
	return ip != nil && ip.To4() != nil
}

const maxASN = 4294967295 // max uint32 — 4-byte ASN range

// ValidateASN checks if an AS number is valid (1 to 4294967295).
func ValidateASN(asn int) error {
	if asn < 1 || asn > maxASN {
		return fmt.Errorf("AS number must be between 1 and %d, got %d", maxASN, asn)
	}
	return nil
}

// rtPattern matches extended-community strings of the form "ASN:NN" or
// "A.B.C.D:NN" as used for route targets and route distinguishers.
var rtPattern = regexp.MustCompile(`^(\d+|(\d{1,3}\.){3}\d{1,3}):\d+$`)

// IsValidRouteTarget checks route-target / route-distinguisher syntax.
// The administrator field must be a plain ASN or a valid IPv4 address.
func IsValidRouteTarget(rt string) bool {
	if !rtPattern.MatchString(rt) {
		return false
	}
	admin := rt[:strings.LastIndex(rt, ":")]
	if strings.Contains(admin, ".") {
		return IsValidIPv4(admin)
	}
	asn, err := strconv.Atoi(admin)
	if err != nil {
		return false
	}
	return ValidateASN(asn) == nil
}

// SplitIPMask splits a CIDR notation into IP and mask length
// Returns the IP (without mask) and mask length
func SplitIPMask(cidr string) (string, int) {
	parts := strings.Split(cidr, "/")
	if len(parts) != 2 {
		return cidr, 0 // Return as-is if no mask
	}
	maskLen, err := strconv.Atoi(parts[1])
	if err != nil {
		return parts[0], 0
	}
	return parts[0], maskLen
}

// DeriveNeighborIP derives the BGP neighbor IP from a local IP address with CIDR mask.
// Works for point-to-point links (/30 and /31).
// Returns error if the subnet is not point-to-point.
func DeriveNeighborIP(localIPWithMask string) (string, error) {
	ipStr, maskLen := SplitIPMask(localIPWithMask)
	if maskLen == 0 {
		return "", fmt.Errorf("IP address must include CIDR mask (e.g., 10.1.1.1/30)")
	}

	neighborIP := ComputeNeighborIP(ipStr, maskLen)
	if neighborIP == "" {
		return "", fmt.Errorf("cannot derive neighbor IP: /%d is not a point-to-point subnet (use /30 or /31)", maskLen)
	}
	return neighborIP, nil
}
