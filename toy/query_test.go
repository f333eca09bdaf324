package toy

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleToys() []Toy {
	return []Toy{
		{ID: "1", Name: "Teddy Bear", Price: 25, Labels: []string{"Baby", "Doll"}, CreatedAt: 100},
		{ID: "2", Name: "race car", Price: 80, Labels: []string{"On wheels", "Battery Powered"}, CreatedAt: 200},
		{ID: "3", Name: "Puzzle Box", Price: 12, Labels: []string{"Puzzle", "Box game"}, CreatedAt: 300},
		{ID: "4", Name: "Bear Puzzle", Price: Price(math.NaN()), Labels: []string{"Puzzle", "Baby"}, CreatedAt: 400},
	}
}

func ids(toys []Toy) []string {
	out := make([]string, 0, len(toys))
	for _, t := range toys {
		out = append(out, t.ID)
	}
	return out
}

func TestDecodeFilterByWeakTypes(t *testing.T) {
	f, err := DecodeFilterBy(map[string]any{
		"txt":      "bear",
		"maxPrice": "30",
		"minPrice": "",
		"labels":   "Baby",
		"inStock":  "true",
	})
	require.NoError(t, err)
	assert.Equal(t, FilterBy{Txt: "bear", MaxPrice: 30, Labels: []string{"Baby"}}, f)

	f, err = DecodeFilterBy(map[string]any{"labels": []any{"Baby", "", "Doll"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Baby", "Doll"}, f.Labels)

	_, err = DecodeFilterBy(map[string]any{"maxPrice": "cheap"})
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestDecodeSortBy(t *testing.T) {
	s, err := DecodeSortBy(map[string]any{"type": "price", "desc": "-1"})
	require.NoError(t, err)
	assert.Equal(t, SortBy{Type: "price", Desc: -1}, s)
	assert.True(t, s.Descending())

	s, err = DecodeSortBy(nil)
	require.NoError(t, err)
	assert.Equal(t, SortBy{}, s)
}

func TestApplyQueryDefaultsReturnEverything(t *testing.T) {
	out, err := applyQuery(sampleToys(), FilterBy{}, SortBy{}, "", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(out))
}

func TestApplyQueryFilters(t *testing.T) {
	out, err := applyQuery(sampleToys(), FilterBy{Txt: "BEAR"}, SortBy{}, "", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, ids(out))

	out, err = applyQuery(sampleToys(), FilterBy{MaxPrice: 25}, SortBy{}, "", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(out), "NaN prices never pass a price bound")

	out, err = applyQuery(sampleToys(), FilterBy{MinPrice: 20}, SortBy{}, "", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(out))

	out, err = applyQuery(sampleToys(), FilterBy{Labels: []string{"Puzzle", "Baby"}}, SortBy{}, "", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(out))
}

func TestApplyQuerySort(t *testing.T) {
	out, err := applyQuery(sampleToys(), FilterBy{}, SortBy{Type: SortByName}, "", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(out))

	out, err = applyQuery(sampleToys(), FilterBy{}, SortBy{Type: SortByPrice, Desc: -1}, "", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids(out))

	out, err = applyQuery(sampleToys(), FilterBy{}, SortBy{Type: SortByCreatedAt, Desc: -1}, "", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(out))
}

func TestApplyQueryPaging(t *testing.T) {
	out, err := applyQuery(sampleToys(), FilterBy{}, SortBy{}, "0", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(out))

	out, err = applyQuery(sampleToys(), FilterBy{}, SortBy{}, "1", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(out))

	out, err = applyQuery(sampleToys(), FilterBy{}, SortBy{}, "5", 3)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	for _, pageIdx := range []string{"3074457345618258603", "9223372036854775807"} {
		out, err = applyQuery(sampleToys(), FilterBy{}, SortBy{}, pageIdx, 3)
		require.NoError(t, err, pageIdx)
		assert.NotNil(t, out, pageIdx)
		assert.Empty(t, out, pageIdx)
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 12, pageOffset(2, 6))
	assert.Equal(t, 0, pageOffset(0, 6))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt/6+1, 6))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt, 2))
}

func TestApplyQueryInvalid(t *testing.T) {
	cases := []struct {
		name    string
		filter  FilterBy
		sort    SortBy
		pageIdx string
	}{
		{"bad regexp", FilterBy{Txt: "(["}, SortBy{}, ""},
		{"bad sort", FilterBy{}, SortBy{Type: "color"}, ""},
		{"bad page", FilterBy{}, SortBy{}, "two"},
		{"negative page", FilterBy{}, SortBy{}, "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := applyQuery(sampleToys(), tc.filter, tc.sort, tc.pageIdx, 3)
			assert.True(t, errors.Is(err, ErrInvalidQuery), "got %v", err)
		})
	}
}
