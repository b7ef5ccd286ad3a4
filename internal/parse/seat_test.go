package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeat(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected ParsedSeat
		wantErr  bool
	}{
		{"standard seat", "24A", ParsedSeat{Row: 24, Letter: "A"}, false},
		{"lowercase with spaces", " 7f ", ParsedSeat{Row: 7, Letter: "F"}, false},
		{"three digit row", "102K", ParsedSeat{Row: 102, Letter: "K"}, false},
		{"missing letter", "24", ParsedSeat{}, true},
		{"missing row", "A", ParsedSeat{}, true},
		{"row zero", "0A", ParsedSeat{}, true},
		{"empty", "", ParsedSeat{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSeat(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNeighbor(t *testing.T) {
	testCases := []struct {
		seat     string
		neighbor string
	}{
		{"24A", "24B"},
		{"24B", "24A"},
		{"24C", "24B"},
		{"12D", "12E"},
		{"12E", "12D"},
		{"12F", "12E"},
	}

	for _, tc := range testCases {
		got, err := Neighbor(tc.seat)
		assert.NoError(t, err)
		assert.Equal(t, tc.neighbor, got)
	}

	// Wide-body letters outside the adjacency table are rejected.
	_, err := Neighbor("31K")
	assert.Error(t, err)
}
