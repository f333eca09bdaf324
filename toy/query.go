package toy

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// FilterBy narrows a toy query. Zero-value fields mean "no filter".
type FilterBy struct {
	Txt      string   `mapstructure:"txt" json:"txt,omitempty"`           // case-insensitive regexp on name
	MinPrice float64  `mapstructure:"minPrice" json:"minPrice,omitempty"` // inclusive
	MaxPrice float64  `mapstructure:"maxPrice" json:"maxPrice,omitempty"` // inclusive
	Labels   []string `mapstructure:"labels" json:"labels,omitempty"`     // toy must carry all of them
}

// SortBy orders a toy query. An empty Type keeps store order.
type SortBy struct {
	Type string `mapstructure:"type" json:"type,omitempty"`
	Desc int    `mapstructure:"desc" json:"desc,omitempty"` // -1 for descending
}

// Sort types accepted in SortBy.Type.
const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByCreatedAt = "createdAt"
)

// Descending reports whether the order is reversed.
func (s SortBy) Descending() bool {
	return s.Desc < 0
}

// Validate rejects unknown sort types.
func (s SortBy) Validate() error {
	switch s.Type {
	case "", SortByName, SortByPrice, SortByCreatedAt:
		return nil
	}
	return errors.Wrapf(ErrInvalidQuery, "unknown sort type %q", s.Type)
}

// DecodeFilterBy builds a FilterBy from loosely typed request values:
// numbers may arrive as strings and a single label as a plain string.
// Unknown keys are ignored.
func DecodeFilterBy(m map[string]any) (FilterBy, error) {
	var f FilterBy
	if err := weakDecode(m, &f); err != nil {
		return FilterBy{}, errors.Wrap(ErrInvalidQuery, err.Error())
	}
	labels := f.Labels[:0]
	for _, l := range f.Labels {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	f.Labels = labels
	if len(f.Labels) == 0 {
		f.Labels = nil
	}
	return f, nil
}

// DecodeSortBy builds a SortBy from loosely typed request values.
func DecodeSortBy(m map[string]any) (SortBy, error) {
	var s SortBy
	if err := weakDecode(m, &s); err != nil {
		return SortBy{}, errors.Wrap(ErrInvalidQuery, err.Error())
	}
	return s, nil
}

func weakDecode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// ParsePageIdx parses an optional page index. ok is false when pageIdx is empty.
func ParsePageIdx(pageIdx string) (idx int, ok bool, err error) {
	pageIdx = strings.TrimSpace(pageIdx)
	if pageIdx == "" {
		return 0, false, nil
	}
	idx, err = strconv.Atoi(pageIdx)
	if err != nil || idx < 0 {
		return 0, false, errors.Wrapf(ErrInvalidQuery, "bad page index %q", pageIdx)
	}
	return idx, true, nil
}

// pageOffset returns idx*pageSize, saturating at math.MaxInt so huge page
// indexes yield an empty page instead of a negative offset.
func pageOffset(idx, pageSize int) int {
	if pageSize > 0 && idx > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return idx * pageSize
}

// matcher compiles f into a predicate.
func (f FilterBy) matcher() (func(Toy) bool, error) {
	var re *regexp.Regexp
	if f.Txt != "" {
		var err error
		re, err = regexp.Compile("(?i)" + f.Txt)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidQuery, "bad txt pattern: %v", err)
		}
	}
	return func(t Toy) bool {
		if re != nil && !re.MatchString(t.Name) {
			return false
		}
		p := float64(t.Price)
		if f.MinPrice > 0 && !(p >= f.MinPrice) {
			return false
		}
		if f.MaxPrice > 0 && !(p <= f.MaxPrice) {
			return false
		}
		return hasAll(t.Labels, f.Labels)
	}, nil
}

func hasAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// applyQuery filters, sorts and pages toys in memory. toys is modified.
func applyQuery(toys []Toy, f FilterBy, s SortBy, pageIdx string, pageSize int) ([]Toy, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	match, err := f.matcher()
	if err != nil {
		return nil, err
	}
	idx, paged, err := ParsePageIdx(pageIdx)
	if err != nil {
		return nil, err
	}

	out := make([]Toy, 0, len(toys))
	for _, t := range toys {
		if match(t) {
			out = append(out, t)
		}
	}

	sortToys(out, s)

	if paged {
		start := pageOffset(idx, pageSize)
		if start >= len(out) {
			return []Toy{}, nil
		}
		end := start + pageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func sortToys(toys []Toy, s SortBy) {
	var less func(a, b Toy) bool
	switch s.Type {
	case SortByName:
		less = func(a, b Toy) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortByPrice:
		less = func(a, b Toy) bool { return priceKey(a.Price) < priceKey(b.Price) }
	case SortByCreatedAt:
		less = func(a, b Toy) bool { return a.CreatedAt < b.CreatedAt }
	default:
		return
	}
	if s.Descending() {
		asc := less
		less = func(a, b Toy) bool { return asc(b, a) }
	}
	sort.SliceStable(toys, func(i, j int) bool { return less(toys[i], toys[j]) })
}

// priceKey orders NaN prices before every number.
func priceKey(p Price) float64 {
	if p.IsNaN() {
		return math.Inf(-1)
	}
	return float64(p)
}
