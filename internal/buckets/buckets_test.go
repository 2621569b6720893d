package buckets

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segments(t *testing.T, names ...string) *table.Table {
	t.Helper()
	tb := table.New("chain")
	require.NoError(t, tb.AddText("Filename", names))
	return tb
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4", "≥5"}, New(5).Labels())
	assert.Equal(t, []string{"1", "≥2"}, New(2).Labels())
}

func TestCount(t *testing.T) {
	// a:1 b:2 c:3 d:5 e:6 f:1
	tb := segments(t,
		"a",
		"b", "b",
		"c", "c", "c",
		"d", "d", "d", "d", "d",
		"e", "e", "e", "e", "e", "e",
		"f",
	)
	got, err := New(5).Count(tb)
	require.NoError(t, err)
	want := Series{"1": 2, "2": 1, "3": 1, "4": 0, "≥5": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Count mismatch (-want +got):\n%s", diff)
	}
}

func TestCountEmptyTableHasAllLabels(t *testing.T) {
	got, err := New(3).Count(segments(t))
	require.NoError(t, err)
	assert.Equal(t, Series{"1": 0, "2": 0, "≥3": 0}, got)
}

func TestCountErrors(t *testing.T) {
	_, err := New(1).Count(segments(t, "a"))
	assert.ErrorIs(t, err, ErrTooFewBuckets)

	_, err = Bucketer{Column: "Name", N: 5}.Count(segments(t, "a"))
	var mc *table.MissingColumnError
	assert.True(t, errors.As(err, &mc))
}

func TestCombine(t *testing.T) {
	b := New(3)
	out, err := b.Combine(
		[]string{"20230306-VFB-M", "20230306-VFB-E"},
		[]Series{{"1": 4, "2": 1, "≥3": 0}, {"1": 2, "≥3": 7}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Segments", "20230306-VFB-M", "20230306-VFB-E"}, out.Headers())
	m, _ := out.Numbers("20230306-VFB-M")
	e, _ := out.Numbers("20230306-VFB-E")
	assert.Equal(t, []float64{4, 1, 0}, m)
	assert.Equal(t, []float64{2, 0, 7}, e)

	_, err = b.Combine([]string{"x"}, nil)
	assert.Error(t, err)
}
