package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	// Time-Zone headers must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reMobile = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	reQ      = regexp.MustCompile(`^[\p{L}\p{N} '&.,\-]{1,80}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

const (
	MaxPageSize = 250
	DefaultSize = 20
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

func Mobile(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reMobile.MatchString(s)
}

// SearchTerm validates a searchTerm. "ALL" and empty mean no filter and
// return ("", true). LIKE wildcards are rejected so a term only matches itself.
func SearchTerm(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "ALL" {
		return "", true
	}
	if len(s) > 80 {
		return "", false
	}
	return s, reQ.MatchString(s)
}

// ID validates a resource identifier (deal/category/brand/merchant ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// OptionalID accepts "", "ALL" or a valid id; the sentinel comes back unchanged.
func OptionalID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "ALL" {
		return "ALL", true
	}
	return ID(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

// Text trims free text and enforces a max length; empty is allowed.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= max
}

// Page parses page (>= 0) and size (1..250). Empty values take defaults.
func Page(page, size string) (int, int, bool) {
	p, s := 0, DefaultSize
	if page = strings.TrimSpace(page); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		p = n
	}
	if size = strings.TrimSpace(size); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 || n > MaxPageSize {
			return 0, 0, false
		}
		s = n
	}
	return p, s, true
}

// TimeZone resolves an IANA zone name.
func TimeZone(s string) (*time.Location, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, false
	}
	return loc, true
}
