package model

import "strings"

// USStates lists the states a user can search in.
var USStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California",
	"Colorado", "Connecticut", "Delaware", "Florida", "Georgia",
	"Hawaii", "Idaho", "Illinois", "Indiana", "Iowa",
	"Kansas", "Kentucky", "Louisiana", "Maine", "Maryland",
	"Massachusetts", "Michigan", "Minnesota", "Mississippi", "Missouri",
	"Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey",
	"New Mexico", "New York", "North Carolina", "North Dakota", "Ohio",
	"Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
	"South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
	"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
}

// LookupState returns the canonical state name for user input.
// Matching ignores case and collapses inner whitespace.
func LookupState(input string) (string, bool) {
	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		return "", false
	}
	for _, s := range USStates {
		if strings.EqualFold(s, input) {
			return s, true
		}
	}
	return "", false
}
