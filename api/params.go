package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"toyshop/toy"
)

var errMissingID = errors.New("missing _id")

// parseQuery reads filterBy, sortBy and pageIdx from the query string.
// Absent mappings default to empty.
func parseQuery(q url.Values) (toy.FilterBy, toy.SortBy, string, error) {
	fm, err := nestedParam(q, "filterBy")
	if err != nil {
		return toy.FilterBy{}, toy.SortBy{}, "", err
	}
	filterBy, err := toy.DecodeFilterBy(fm)
	if err != nil {
		return toy.FilterBy{}, toy.SortBy{}, "", err
	}

	sm, err := nestedParam(q, "sortBy")
	if err != nil {
		return toy.FilterBy{}, toy.SortBy{}, "", err
	}
	sortBy, err := toy.DecodeSortBy(sm)
	if err != nil {
		return toy.FilterBy{}, toy.SortBy{}, "", err
	}

	return filterBy, sortBy, q.Get("pageIdx"), nil
}

// nestedParam collects one object-valued query parameter. Both
// filterBy[txt]=bear&filterBy[labels][]=Baby and filterBy={"txt":"bear"}
// are understood. Repeated or "[]"-suffixed keys become lists.
func nestedParam(q url.Values, name string) (map[string]any, error) {
	out := map[string]any{}

	if raw := strings.TrimSpace(q.Get(name)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("%s is not a JSON object: %w", name, err)
		}
	}

	prefix := name + "["
	for key, values := range q {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		end := strings.IndexByte(rest, ']')
		if end <= 0 {
			continue
		}
		field, suffix := rest[:end], rest[end+1:]

		if suffix == "" && len(values) == 1 {
			out[field] = values[0]
			continue
		}
		var list []any
		if prev, ok := out[field].([]any); ok {
			list = prev
		}
		for _, v := range values {
			list = append(list, v)
		}
		out[field] = list
	}
	return out, nil
}
