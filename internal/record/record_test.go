package record

import (
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceKey(t *testing.T) {
	assert.Equal(t, "app.po:save", Record{Resource: "app.po", Key: "save"}.SourceKey())
	assert.Equal(t, "", Record{Key: "save"}.SourceKey())
	assert.False(t, Record{Resource: "app.po"}.HasKey())
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Save the file", Record{Source: "  Save\n the   file "}.Excerpt())

	long := Record{Source: strings.Repeat("é", 60)}.Excerpt()
	assert.Equal(t, 40, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}

func TestSortByUpdatedIsStable(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Source: "c", UpdatedAt: t0.Add(2 * time.Hour)},
		{Source: "a1", UpdatedAt: t0},
		{Source: "b", UpdatedAt: t0.Add(time.Hour)},
		{Source: "a2", UpdatedAt: t0},
	}

	SortByUpdated(records)

	var got []string
	for _, r := range records {
		got = append(got, r.Source)
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, got)
}

type failing struct{}

func (failing) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if !yield(Record{Source: "ok"}, nil) {
			return
		}
		yield(Record{}, errors.New("broken row"))
	}
}

func TestCollect(t *testing.T) {
	records, err := Collect(Slice{{Source: "a"}, {Source: "b"}})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = Collect(failing{})
	assert.EqualError(t, err, "broken row")
}

func TestSliceIsRestartable(t *testing.T) {
	src := Slice{{Source: "a"}, {Source: "b"}}
	first, _ := Collect(src)
	second, _ := Collect(src)
	assert.Equal(t, first, second)
}
