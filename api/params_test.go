package api

import (
	"net/url"
	"testing"
	"toyshop/toy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestedParam(t *testing.T) {
	q, err := url.ParseQuery("filterBy[txt]=bear&filterBy[labels][]=Baby&filterBy[labels][]=Doll&filterBy[inStock]=true&other=1")
	require.NoError(t, err)

	m, err := nestedParam(q, "filterBy")
	require.NoError(t, err)
	assert.Equal(t, "bear", m["txt"])
	assert.ElementsMatch(t, []any{"Baby", "Doll"}, m["labels"])
	assert.Equal(t, "true", m["inStock"])
	assert.NotContains(t, m, "other")
}

func TestNestedParamEmpty(t *testing.T) {
	m, err := nestedParam(url.Values{}, "sortBy")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestParseQuery(t *testing.T) {
	q, err := url.ParseQuery(`filterBy={"txt":"car","minPrice":"10"}&sortBy[type]=createdAt&sortBy[desc]=-1&pageIdx=2`)
	require.NoError(t, err)

	f, s, page, err := parseQuery(q)
	require.NoError(t, err)
	assert.Equal(t, toy.FilterBy{Txt: "car", MinPrice: 10}, f)
	assert.Equal(t, toy.SortBy{Type: "createdAt", Desc: -1}, s)
	assert.Equal(t, "2", page)
}
