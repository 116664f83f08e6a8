package utils

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone formats a number as E.164 using region for numbers without
// a country code. Unparseable or invalid input is returned trimmed.
func NormalizePhone(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if region == "" {
		region = "US"
	}
	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
