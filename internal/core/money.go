// Package core provides money parsing and handling utilities.
//
// This file contains the Amount type. Amounts travel as decimal text so a
// corrupted value coming back from a store is still visible to callers,
// and all arithmetic goes through shopspring/decimal.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal quantity kept exactly as received.
type Amount string

// NewAmount renders d with the shortest exact representation.
func NewAmount(d decimal.Decimal) Amount {
	return Amount(d.String())
}

// ParseAmount converts user text to a positive decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents, NaN/Inf spellings, zero and negative values are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> error
//	ParseAmount("abc")   -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if dots > 1 || s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Decimal parses the stored text. It fails for anything that is not a
// positive finite number.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return ParseAmount(string(a))
}

// MarshalJSON emits a JSON number when the amount parses and a string
// otherwise, so defects survive a round trip.
func (a Amount) MarshalJSON() ([]byte, error) {
	if d, err := a.Decimal(); err == nil {
		return []byte(d.String()), nil
	}
	return json.Marshal(string(a))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	// Numbers like 1e3 are normalised so Decimal accepts them.
	if d, err := decimal.NewFromString(n.String()); err == nil {
		*a = Amount(d.String())
		return nil
	}
	*a = Amount(n.String())
	return nil
}
