package toy

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no toy has the requested id.
	ErrNotFound = errors.New("toy not found")
	// ErrInvalidQuery is returned for filter, sort or page values a store cannot apply.
	ErrInvalidQuery = errors.New("invalid toy query")
)

// RemovedMsg is the status message returned by a successful Remove.
const RemovedMsg = "Toy removed"

// Toy is the only entity served by the API.
type Toy struct {
	ID        string   `json:"_id,omitempty"`
	Name      string   `json:"name"`
	Price     Price    `json:"price"`
	Labels    []string `json:"labels"`
	CreatedAt int64    `json:"createdAt,omitempty"` // Unix milliseconds
}

// Service is the persistence collaborator behind the HTTP router.
// Save creates a toy when ID is empty and updates the toy with that ID otherwise.
type Service interface {
	Query(ctx context.Context, filterBy FilterBy, sortBy SortBy, pageIdx string) ([]Toy, error)
	Get(ctx context.Context, id string) (Toy, error)
	Save(ctx context.Context, t Toy) (Toy, error)
	Remove(ctx context.Context, id string) (string, error)
}

// Store is a Service holding resources that must be released.
type Store interface {
	Service
	Close() error
}

// Price is a toy price. It may be NaN when a client sent a value that is
// not a number; NaN and infinities encode as JSON null.
type Price float64

func (p Price) MarshalJSON() ([]byte, error) {
	f := float64(p)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON reads a number, or null as NaN.
func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Price(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

// IsNaN reports whether the price is not a number.
func (p Price) IsNaN() bool {
	return math.IsNaN(float64(p))
}

// CoercePrice converts a raw JSON value to a number the way unary plus does
// in a browser: numeric strings parse, blank strings, null and false are 0,
// true is 1, and everything else (including a missing value) is NaN.
func CoercePrice(raw json.RawMessage) Price {
	if len(raw) == 0 {
		return Price(math.NaN())
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Price(math.NaN())
	}
	return Price(coerce(v, true))
}

func coerce(v any, allowArray bool) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		return coerceString(x)
	case []any:
		if !allowArray {
			return math.NaN()
		}
		switch len(x) {
		case 0:
			return 0
		case 1:
			if x[0] == nil {
				return 0
			}
			if _, ok := x[0].(bool); ok {
				// String(true) is "true", which is not numeric.
				return math.NaN()
			}
			return coerce(x[0], false)
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

func coerceString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}
