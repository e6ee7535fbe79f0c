package address

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ShutdownScanner/internal/domain"
)

// DefaultPrefix is used when an address carries no recognizable street-type
// token and no override is configured.
const DefaultPrefix = "ул"

// streetTypeExpr matches known Russian street-type abbreviations with an
// optional trailing period. The leading whitespace keeps it from firing inside
// a word; inputs are padded with one space before the search so a token at the
// very beginning still matches. Multi-character variants must precede their
// shorter forms ("пр-д" before "пр"), otherwise the alternation grabs the
// short form and leaves a dangling tail.
var streetTypeExpr = regexp.MustCompile(`\s+(?P<street_prefix>ал\.?|б-р\.?|взв\.?|взд\.?|дор\.?|ззд\.?|км\.?|к-цо\.?|коса\.?|лн\.?|мгстр\.?|наб\.?|пер\.?|пл\.?|пр-д\.?|пр-т\.?|пр-кт\.?|Пр-кт\.?|пр-ка\.?|пр-лок\.?|пр\.?|проул\.?|рзд\.?|ряд\.?|с-р\.?|с-к\.?|сзд\.?|тракт\.?|туп\.?|ул\.?|Ул\.?|ш\.?)`)

// DefaultPattern captures the street name followed by an optional house token:
// a single number, an inclusive range ("75-79", en dash accepted), and a
// discardable building-section suffix ("корп.N", with or without a separating
// comma).
var DefaultPattern = regexp.MustCompile(`^(?P<street_name>[А-Яа-яЁёA-Za-z\s]+?)(?:\s*,?\s*(?:д\.?|дом)?\s*(?P<start_house>\d+)(?:\s*[-–]\s*(?P<end_house>\d+))?(?:\s*,?\s*корп\.\d+)?)?$`)

// prefixReplacements canonicalizes spelling variants of the same street type.
var prefixReplacements = map[string]string{
	"пр":   "пр-кт",
	"пр-т": "пр-кт",
}

// ParsedAddress is the normalized form of one free-text address. StartHouse
// and EndHouse keep the original range bounds; Houses holds the expanded
// inclusive sequence. Zero values mean "absent".
type ParsedAddress struct {
	StreetPrefix string
	StreetName   string
	Houses       []int
	StartHouse   int
	EndHouse     int
}

// Completed reports whether the parse produced enough structure for matching:
// prefix, name and at least one house.
func (p ParsedAddress) Completed() bool {
	return p.StreetPrefix != "" && p.StreetName != "" && len(p.Houses) > 0
}

func (p ParsedAddress) String() string {
	if len(p.Houses) == 0 {
		return fmt.Sprintf("%s. %s", p.StreetPrefix, p.StreetName)
	}
	houses := make([]string, len(p.Houses))
	for i, h := range p.Houses {
		houses[i] = strconv.Itoa(h)
	}
	return fmt.Sprintf("%s. %s, д. %s", p.StreetPrefix, p.StreetName, strings.Join(houses, ","))
}

// Parser normalizes free-text Russian postal addresses. The override table
// supplies street-type prefixes for names that habitually appear without one.
type Parser struct {
	overrides map[string]string
}

// NewParser builds a parser with a name→prefix override table; nil is fine.
func NewParser(overrides map[string]string) *Parser {
	return &Parser{overrides: overrides}
}

// Parse extracts the street prefix, street name and house range from raw text.
// It never fails: when nothing matches, the whole input becomes the street
// name and the result is simply not Completed.
func (p *Parser) Parse(raw string) ParsedAddress {
	return p.ParseWith(raw, DefaultPattern)
}

// ParseWith is Parse with a caller-supplied structural pattern; the pattern
// must define street_name, start_house and end_house groups.
func (p *Parser) ParseWith(raw string, pattern *regexp.Regexp) ParsedAddress {
	rest := raw
	prefix := ""

	// The street-type token may sit on either side of the name; strip it
	// wherever it is found.
	padded := " " + rest
	if m := streetTypeExpr.FindStringSubmatch(padded); m != nil {
		prefix = m[streetTypeExpr.SubexpIndex("street_prefix")]
		rest = strings.TrimSpace(streetTypeExpr.ReplaceAllString(padded, ""))
	}

	m := pattern.FindStringSubmatch(rest)
	if m == nil {
		return ParsedAddress{StreetName: rest}
	}

	name := strings.TrimSpace(m[pattern.SubexpIndex("street_name")])
	if prefix != "" {
		prefix = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(prefix), "."))
		if canonical, ok := prefixReplacements[prefix]; ok {
			prefix = canonical
		}
	} else if override, ok := p.overrides[name]; ok {
		prefix = override
	} else {
		prefix = DefaultPrefix
	}

	parsed := ParsedAddress{StreetPrefix: prefix, StreetName: name}
	if rawStart := m[pattern.SubexpIndex("start_house")]; rawStart != "" {
		parsed.StartHouse, _ = strconv.Atoi(rawStart)
		parsed.EndHouse = parsed.StartHouse
		if rawEnd := m[pattern.SubexpIndex("end_house")]; rawEnd != "" {
			parsed.EndHouse, _ = strconv.Atoi(rawEnd)
		}
		for h := parsed.StartHouse; h <= parsed.EndHouse; h++ {
			parsed.Houses = append(parsed.Houses, h)
		}
	}

	return parsed
}

// AddressFor converts raw text into a domain Address for the given city,
// collapsing an expanded house range to its first house.
func (p *Parser) AddressFor(city domain.City, raw string) domain.Address {
	parsed := p.Parse(raw)
	house := 0
	if len(parsed.Houses) > 0 {
		house = parsed.Houses[0]
	}
	return domain.Address{
		City:         city,
		StreetName:   parsed.StreetName,
		StreetPrefix: parsed.StreetPrefix,
		House:        house,
		Raw:          raw,
	}
}
