package group

import (
	"fmt"
	"testing"

	"github.com/KaramelBytes/afmtool-cli/internal/compile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitKey(t *testing.T) {
	d, s, err := SplitKey("20230306-VFB-CD")
	require.NoError(t, err)
	assert.Equal(t, "20230306", d)
	assert.Equal(t, "CD", s)

	_, _, err = SplitKey("20230306")
	assert.Error(t, err)
}

func TestRouteRootSections(t *testing.T) {
	var logs []string
	r := Router{Logf: func(format string, args ...any) { logs = append(logs, fmt.Sprintf(format, args...)) }}

	paths := []string{"20230306-VFB-E.txt", "20230306-VFB-M.txt", "20230306-VFB-CD.txt", "20230306-VFB-X.txt"}
	entries := map[compile.Key][]float64{}
	for i, p := range paths {
		k, err := compile.Identify(p, "")
		require.NoError(t, err)
		entries[k] = []float64{float64(i)}
	}
	g := r.Route(entries)

	require.Len(t, g.Dates, 1)
	dg := g.Dates[0]
	assert.Equal(t, "20230306", dg.Date)
	want := []StepValues{
		{Step: compile.Maturation, Values: []float64{1}},
		{Step: compile.Elongation, Values: []float64{0}},
		{Step: compile.CellDivision, Values: []float64{2}},
	}
	if diff := cmp.Diff(want, dg.Steps); diff != "" {
		t.Fatalf("steps (-want +got):\n%s", diff)
	}
	require.Len(t, g.Skipped, 1)
	assert.Equal(t, "20230306-X", g.Skipped[0].Entry)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], "20230306-X")

	assert.Equal(t, []float64{1}, g.Final[compile.Maturation])
	assert.Equal(t, []float64{0}, g.Final[compile.Elongation])
	assert.Equal(t, []float64{2}, g.Final[compile.CellDivision])
}

func TestRouteSkipsIncompleteDates(t *testing.T) {
	g := Router{}.RouteFlat(map[string][]float64{
		"20230401-M":  {1, 2},
		"20230401-E":  {3},
		"20230401-CD": {4},
		"20230402-M":  {100},
		"20230402-CD": {200},
		"20230301-M":  {5},
		"20230301-E":  {6},
		"20230301-CD": {7, 8},
		"broken":      {9},
	})

	dates := make([]string, len(g.Dates))
	for i, d := range g.Dates {
		dates[i] = d.Date
	}
	assert.Equal(t, []string{"20230301", "20230401"}, dates)

	assert.Equal(t, []float64{5, 1, 2}, g.Final[compile.Maturation])
	assert.Equal(t, []float64{6, 3}, g.Final[compile.Elongation])
	assert.Equal(t, []float64{7, 8, 4}, g.Final[compile.CellDivision])
	for _, vals := range g.Final {
		assert.NotContains(t, vals, 100.0)
		assert.NotContains(t, vals, 200.0)
	}

	require.Len(t, g.Skipped, 2)
	assert.Equal(t, "broken", g.Skipped[0].Entry)
	assert.Equal(t, "20230402", g.Skipped[1].Date)
	assert.Equal(t, []compile.Step{compile.Elongation}, g.Skipped[1].Missing)

	fin := g.FinalGroup("Final")
	assert.Equal(t, []float64{7, 8, 4}, fin.Values(compile.CellDivision))
}

func TestRouteConcatenatesSharedSections(t *testing.T) {
	g := Router{}.Route(map[compile.Key][]float64{
		{Date: "d", Step: "M"}:             {1},
		{Date: "d", Param: "p", Step: "M"}: {2},
		{Date: "d", Step: "E"}:             {3},
		{Date: "d", Step: "CD"}:            {4},
	})
	require.Len(t, g.Dates, 1)
	assert.Equal(t, []float64{1, 2}, g.Dates[0].Values(compile.Maturation))
}
