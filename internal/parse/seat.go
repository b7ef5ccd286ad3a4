package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var seatRe = regexp.MustCompile(`^(\d{1,3})([A-K])$`)

// ParsedSeat holds the structured data parsed from a seat label like "24A".
type ParsedSeat struct {
	Row    int
	Letter string
}

// neighborLetters is the fixed adjacency table used by the seat spy.
// A<->B, C->B on the left block; D<->E, F->E on the right block.
var neighborLetters = map[string]string{
	"A": "B",
	"B": "A",
	"C": "B",
	"D": "E",
	"E": "D",
	"F": "E",
}

// ParseSeat extracts row and letter from a raw seat label.
func ParseSeat(raw string) (ParsedSeat, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	matches := seatRe.FindStringSubmatch(s)
	if matches == nil {
		return ParsedSeat{}, fmt.Errorf("unable to parse seat label: %q", raw)
	}

	row, err := strconv.Atoi(matches[1])
	if err != nil || row == 0 {
		return ParsedSeat{}, fmt.Errorf("invalid seat row in %q", raw)
	}

	return ParsedSeat{Row: row, Letter: matches[2]}, nil
}

// Neighbor returns the seat label directly adjacent to the given seat
// according to the adjacency table, or an error for letters outside it.
func Neighbor(raw string) (string, error) {
	seat, err := ParseSeat(raw)
	if err != nil {
		return "", err
	}
	neighbor, ok := neighborLetters[seat.Letter]
	if !ok {
		return "", fmt.Errorf("no adjacency mapping for seat letter %q", seat.Letter)
	}
	return fmt.Sprintf("%d%s", seat.Row, neighbor), nil
}
