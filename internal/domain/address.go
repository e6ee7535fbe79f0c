package domain

import (
	"fmt"
	"strings"
)

// Address is the structural form of a user's or scraped announcement address.
// Every field participates in equality, so Address is directly usable as a map
// key and inside sets. Business matching goes through Matches instead, which is
// deliberately looser than equality.
type Address struct {
	City         City
	StreetName   string
	StreetPrefix string
	// House is a single concrete building number; 0 means the address covers
	// the whole street.
	House int
	// Raw keeps the original text for display and audit.
	Raw string
}

func (a Address) String() string {
	if a.House == 0 {
		return fmt.Sprintf("%s, %s. %s", a.City, a.StreetPrefix, a.StreetName)
	}
	return fmt.Sprintf("%s, %s. %s, д. %d", a.City, a.StreetPrefix, a.StreetName, a.House)
}

// Matches reports whether two addresses denote the same place, tolerating the
// noise of scraped text: street names compare by case-insensitive containment
// in either direction, and a missing house or prefix on either side acts as a
// wildcard. The predicate is symmetric.
func (a Address) Matches(other Address) bool {
	if a.City != other.City {
		return false
	}
	if a.House != 0 && other.House != 0 && a.House != other.House {
		return false
	}
	if a.StreetPrefix != "" && other.StreetPrefix != "" && a.StreetPrefix != other.StreetPrefix {
		return false
	}

	left := strings.ToLower(strings.TrimSpace(a.StreetName))
	right := strings.ToLower(strings.TrimSpace(other.StreetName))
	if left == "" || right == "" {
		return false
	}
	return strings.Contains(left, right) || strings.Contains(right, left)
}
