package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Price is a catalog price as sent by the backend. Valid is false when the
// backend sent null, nothing, or something that is not a number.
type Price struct {
	Value float64
	Valid bool
}

func NewPrice(v float64) Price {
	return Price{Value: v, Valid: true}
}

// Amount is the value counted towards totals. Missing, non-finite and
// negative prices count as zero.
func (p Price) Amount() float64 {
	if !p.Valid || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Value < 0 {
		return 0
	}
	return p.Value
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON never fails: anything that is not a number or a numeric
// string decodes to an invalid Price.
func (p *Price) UnmarshalJSON(b []byte) error {
	*p = Price{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*p = NewPrice(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*p = NewPrice(f)
		}
	}
	return nil
}

func (p Price) String() string {
	return strconv.FormatFloat(p.Amount(), 'f', 2, 64)
}
