// Package mobile validates Mozambican mobile-money account numbers
// against the carriers' numbering plans. Purely syntactic: no network
// calls, and malformed input validates false rather than erroring.
package mobile

import (
	"strings"
	"unicode"
)

// Carrier identifies a mobile-money network operator.
type Carrier string

const (
	CarrierVodacom Carrier = "vodacom" // M-Pesa
	CarrierMovitel Carrier = "movitel" // eMola
)

// subscriberLen is prefix (2 digits) + 7 subscriber digits.
const subscriberLen = 9

type plan struct {
	wallet   string
	prefixes []string
}

var plans = map[Carrier]plan{
	CarrierVodacom: {wallet: "M-Pesa", prefixes: []string{"84", "85"}},
	CarrierMovitel: {wallet: "eMola", prefixes: []string{"86", "87"}},
}

// ParseCarrier normalizes a carrier tag. Returns false for unknown tags.
func ParseCarrier(s string) (Carrier, bool) {
	c := Carrier(strings.ToLower(strings.TrimSpace(s)))
	_, ok := plans[c]
	return c, ok
}

// Info describes a carrier's mobile wallet for display callers.
type Info struct {
	Wallet   string   `json:"wallet"`
	Prefixes []string `json:"prefixes"`
}

// CarrierInfo returns wallet metadata for a carrier.
func CarrierInfo(c Carrier) (Info, bool) {
	p, ok := plans[c]
	if !ok {
		return Info{}, false
	}
	return Info{Wallet: p.wallet, Prefixes: p.prefixes}, true
}

// ValidateNumber reports whether number is a valid subscriber number for
// the given carrier: after cleaning, exactly 9 digits starting with one
// of the carrier's prefixes.
func ValidateNumber(number string, carrier Carrier) bool {
	p, ok := plans[carrier]
	if !ok {
		return false
	}
	n := Clean(number)
	if len(n) != subscriberLen || !allDigits(n) {
		return false
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

// Clean strips whitespace and punctuation from a phone number. Digits
// (and any other characters, which will fail validation) are kept.
func Clean(number string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || r == '+' {
			return -1
		}
		return r
	}, number)
}

// ValidateNIF reports whether nif is a valid fiscal identification
// number: exactly 9 digits after cleaning.
func ValidateNIF(nif string) bool {
	n := Clean(nif)
	return len(n) == 9 && allDigits(n)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
