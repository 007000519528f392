package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTitleYear(t *testing.T) {
	tests := []struct {
		input     string
		wantTitle string
		wantYear  int
	}{
		{"Dune (2021)", "Dune", 2021},
		{"Alien [1979]", "Alien", 1979},
		{"Heat 1995", "Heat", 1995},
		{"  The Thing  ", "The Thing", 0},
		{"1917", "1917", 0},
		{"Blade Runner 2049", "Blade Runner", 2049},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			title, year := SplitTitleYear(tt.input)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}
