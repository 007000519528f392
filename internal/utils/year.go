package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// trailingYearRegex matches a release year at the end of a title: "Dune (2021)", "Dune [2021]", "Dune 2021"
var trailingYearRegex = regexp.MustCompile(`\s*[\(\[]?\b(19\d{2}|20\d{2})\b[\)\]]?\s*$`)

// SplitTitleYear separates a trailing release year from a title.
// "Dune (2021)" becomes ("Dune", 2021). A title that is only a year, like
// "1917", is kept as the title with year 0.
func SplitTitleYear(input string) (string, int) {
	input = strings.TrimSpace(input)
	loc := trailingYearRegex.FindStringSubmatchIndex(input)
	if loc == nil || loc[0] == 0 {
		return input, 0
	}

	year, err := strconv.Atoi(input[loc[2]:loc[3]])
	if err != nil {
		return input, 0
	}
	return strings.TrimSpace(input[:loc[0]]), year
}
