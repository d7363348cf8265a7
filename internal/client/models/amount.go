package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Amount is a money value. The backend serializes decimals either as JSON
// numbers or as strings like "150.00"; both decode.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", s, err)
		}
		*a = Amount(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid amount %s: %w", b, err)
	}
	*a = Amount(v)
	return nil
}

func (a Amount) Float64() float64 {
	return float64(a)
}

// UnmarshalJSON accepts a full invoice object or just its id, which is what
// ticket and payment serializers send.
func (i *Invoice) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '{' && !bytes.Equal(b, []byte("null")) {
		var id int64
		if err := json.Unmarshal(b, &id); err != nil {
			return fmt.Errorf("invalid invoice reference %s: %w", b, err)
		}
		*i = Invoice{ID: id}
		return nil
	}

	type plain Invoice
	return json.Unmarshal(b, (*plain)(i))
}
