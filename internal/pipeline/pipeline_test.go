package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/afmtool-cli/internal/buckets"
	"github.com/KaramelBytes/afmtool-cli/internal/classify"
	"github.com/KaramelBytes/afmtool-cli/internal/compile"
	"github.com/KaramelBytes/afmtool-cli/internal/filter"
	"github.com/KaramelBytes/afmtool-cli/internal/group"
	"github.com/KaramelBytes/afmtool-cli/internal/manifest"
	"github.com/KaramelBytes/afmtool-cli/internal/render"
	"github.com/KaramelBytes/afmtool-cli/internal/table"
	"github.com/KaramelBytes/afmtool-cli/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTSV(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(rows, "\n")+"\n"), 0o644))
	return p
}

const chainHeader = "Filename\tBending Length [m]\tContour Length [m]\tResidual RMS [N]\tBreaking Force [N]"

func chainFit() ChainFit {
	return ChainFit{
		Converter: units.NewConverter(),
		Conversions: []units.Conversion{
			{Column: "Bending Length [m]", Prefix: "p"},
			{Column: "Contour Length [m]", Prefix: "n"},
			{Column: "Residual RMS [N]", Prefix: "p"},
			{Column: "Breaking Force [N]", Prefix: "p"},
		},
		Filter: filter.Filter{Enabled: true, Bounds: []filter.Bound{
			filter.Between("Bending Length [pm]", 20, 4000),
			filter.Between("Contour Length [nm]", 300, 5000),
			filter.Below("Residual RMS [pN]", 25),
		}},
		Bucketer: buckets.New(5),
	}
}

func TestChainFitBatchPartialResults(t *testing.T) {
	dir := t.TempDir()
	good := writeTSV(t, dir, "20230306-VFB-M.txt",
		chainHeader,
		"c1\t1e-10\t4e-7\t1e-11\t1.5e-10",
		"c1\t1e-10\t4e-7\t1e-11\t2.5e-10",
		"c2\t1e-9\t4e-7\t3e-11\t9e-11",
		"c3\t1e-13\t4e-7\t1e-11\t1e-10",
	)
	missing := writeTSV(t, dir, "20230306-VFB-E.txt",
		"Filename\tBending Length [m]",
		"c1\t1e-10",
	)
	var seen []string
	cf := chainFit()
	cf.Progress = func(i, n int, path string) { seen = append(seen, filepath.Base(path)) }

	b := cf.Run([]string{good, missing})
	assert.Equal(t, []string{"20230306-VFB-M.txt", "20230306-VFB-E.txt"}, seen)
	require.Len(t, b.Results, 1)
	require.Len(t, b.Failures, 1)
	assert.Equal(t, missing, b.Failures[0].Path)
	var mc *table.MissingColumnError
	assert.True(t, errors.As(b.Failures[0], &mc))

	res := b.Results[0]
	assert.Equal(t, "20230306-VFB-M", res.Name())
	forces, err := res.Table.Numbers("Breaking Force [pN]")
	require.NoError(t, err)
	assert.Len(t, forces, 2)
	assert.InDelta(t, 150, forces[0], 1e-9)
	assert.InDelta(t, 250, forces[1], 1e-9)
	assert.Equal(t, buckets.Series{"1": 0, "2": 1, "3": 0, "4": 0, "≥5": 0}, res.Buckets)
}

func TestChainFitUnrecognizedUnit(t *testing.T) {
	dir := t.TempDir()
	p := writeTSV(t, dir, "20230306-VFB-CD.txt",
		"Filename\tBending Length [furlong]\tContour Length [m]\tResidual RMS [N]\tBreaking Force [N]",
		"c1\t1\t4e-7\t1e-11\t1e-10",
	)
	cf := chainFit()
	cf.Conversions[0].Column = "Bending Length [furlong]"
	b := cf.Run([]string{p})
	require.Len(t, b.Failures, 1)
	var ue *units.UnrecognizedUnitError
	assert.True(t, errors.As(b.Failures[0], &ue))
}

const generalHeader = "Filename\tFitted Segment Count\tMinimum Position [m]\tAdhesion [N]\tArea [J]\tX Position"

func general() General {
	return General{
		Conversions: []units.Conversion{
			{Column: "Adhesion [N]", Prefix: "p"},
			{Column: "Area [J]", Prefix: "a"},
			{Column: "Minimum Position [m]", Prefix: "n"},
		},
		Classifier: classify.Classifier{
			SegmentColumn:  "Fitted Segment Count",
			PositionColumn: "Minimum Position [nm]",
			Threshold:      300,
			DropColumns:    classify.DefaultDropColumns(),
			Decimals:       1,
		},
	}
}

func TestGeneralBatchAndWriter(t *testing.T) {
	in := t.TempDir()
	m := writeTSV(t, in, "20230306-VFB-M.txt",
		generalHeader,
		"c1\t0\t5e-7\t1e-11\t1e-18\t1",
		"c2\t1\t3.5e-7\t2.26e-11\t2e-18\t2",
		"c3\t2\t1e-8\t3e-11\t3e-18\t3",
	)
	e := writeTSV(t, in, "20230306-VFB-E.txt", generalHeader)

	b := general().Run([]string{m, e})
	require.Len(t, b.Results, 1)
	require.Len(t, b.Failures, 1)
	var empty *classify.EmptyResultError
	assert.True(t, errors.As(b.Failures[0], &empty))

	rec := b.Results[0].Record
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.NoInteraction)
	assert.Equal(t, 1, rec.Specific)
	assert.Equal(t, 1, rec.NonSpecific)
	assert.Equal(t, 33.3, rec.SpecificPct)
	assert.Equal(t, []string{"Adhesion [pN]", "Area [aJ]"}, b.Results[0].Table.Headers())

	out := filepath.Join(t.TempDir(), "out")
	man := manifest.New("general", out, []string{m, e})
	w, err := NewWriter(Layout{Dir: out, GeneralFolder: "general", GraphsFolder: "graphs"}, man)
	require.NoError(t, err)

	files, err := w.WriteFiltered(w.GeneralFolder, b.Results)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "general", "20230306-VFB-M_filtered.csv")}, files)

	// An earlier run left a stale record for the same file and one for another.
	stale := classify.NewLedger()
	stale.Upsert(classify.Record{File: "20230306-VFB-M", NoInteraction: 9, NoInteractionPct: 100})
	stale.Upsert(classify.Record{File: "20230301-VFB-CD", Specific: 1, SpecificPct: 100})
	require.NoError(t, stale.WriteFile(w.LedgerPath()))

	l, p, err := w.WriteLedger(b.Results)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, LedgerFile), p)
	recs := l.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "20230306-VFB-M", recs[0].File)
	assert.Equal(t, 1, recs[0].Specific)

	r, err := compile.Compile(b.Sources(), []string{"Adhesion [pN]"})
	require.NoError(t, err)
	cp, err := w.WriteCompiled("adhesion", r)
	require.NoError(t, err)
	_, err = os.Stat(cp)
	require.NoError(t, err)

	pies := InteractionSeries(l)
	assert.Empty(t, pies.Skipped)
	assert.Equal(t, []float64{1, 1, 1}, pies.Series[compile.Key{Date: "20230306", Step: "M"}])

	assert.Len(t, man.Artifacts, 3)
	require.NoError(t, man.Save())
}

func TestWriteBuckets(t *testing.T) {
	out := t.TempDir()
	w, err := NewWriter(Layout{Dir: out}, nil)
	require.NoError(t, err)
	results := []Result{
		{Path: "a/20230306-VFB-M.txt", Buckets: buckets.Series{"1": 2, "≥2": 1}},
		{Path: "a/20230306-VFB-E.txt"},
	}
	p, err := w.WriteBuckets(buckets.New(2), results)
	require.NoError(t, err)
	tb, err := table.Read(p, table.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Segments", "20230306-VFB-M"}, tb.Headers())
}

func TestInteractionSeriesToPies(t *testing.T) {
	l := classify.NewLedger()
	for _, name := range []string{
		"2023.03.06-VFB-M", "2023.03.06-VFB-E", "2023.03.06-VFB-CD",
		"20230306-A-M", "20230306-B-M", "20230306-A-E", "20230306-A-CD",
		"20230307-VFB-X", "20230307-VFB-M",
		"nohyphen",
	} {
		l.Upsert(classify.Record{File: name, NoInteraction: 2, Specific: 1, NonSpecific: 1})
	}
	last := classify.Record{File: "20230306-B-M", Specific: 5}
	l.Upsert(last)

	pies := InteractionSeries(l)
	require.Len(t, pies.Skipped, 1)
	assert.Equal(t, "nohyphen", pies.Skipped[0].Path)
	m := compile.Key{Date: "20230306", Step: "M"}
	assert.Equal(t, []compile.Key{m}, pies.Replaced)
	assert.Equal(t, []float64{0, 5, 0}, pies.Series[m])
	assert.Equal(t, []float64{2, 1, 1}, pies.Series[compile.Key{Date: "2023.03.06", Step: "CD"}])

	var logged []string
	g := group.Router{Logf: func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}}.Route(pies.Series)
	require.Len(t, g.Dates, 2)
	assert.Equal(t, "2023.03.06", g.Dates[0].Date)
	assert.Equal(t, "20230306", g.Dates[1].Date)
	require.Len(t, g.Skipped, 2)
	assert.Contains(t, strings.Join(logged, "\n"), "20230307-X")

	dir := t.TempDir()
	paths, err := render.RootPies(g, dir, render.InteractionLabels)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2023.03.06-Pie.html"),
		filepath.Join(dir, "20230306-Pie.html"),
	}, paths)
	for _, p := range paths {
		_, err := os.Stat(p)
		require.NoError(t, err)
	}
}
