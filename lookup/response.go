package lookup

import "net"

// Response is the shaped lookup result. Disabled and unresolvable fields
// are absent, never null, and present fields always serialize in this
// order, so two requests against the same configuration line up.
//
// IP and IPVersion are pointers because both have meaningful zero-adjacent
// values to emit: an echoed input string and version 0 for unparsable
// input.
type Response struct {
	IP          *string     `json:"ip,omitempty"`
	IPVersion   *int        `json:"ip_version,omitempty"`
	Country     string      `json:"country,omitempty"`
	Subdivision string      `json:"subdivision,omitempty"`
	Data        interface{} `json:"data,omitempty"`
}

// ipVersion classifies an address literal: 4 or 6 for the two families and
// 0 for anything which does not parse.
func ipVersion(ip string) (net.IP, int) {
	parsed := net.ParseIP(ip)

	switch {
	case parsed == nil:
		return nil, 0
	case parsed.To4() != nil:
		return parsed, 4
	}

	return parsed, 6
}
