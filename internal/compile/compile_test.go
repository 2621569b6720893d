package compile

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		path string
		want Key
	}{
		{"/data/20230306-VFB-E.txt", Key{Date: "20230306", Step: "E"}},
		{"20230306-CD.tsv", Key{Date: "20230306", Step: "CD"}},
		{"20230306-a-b-c-M", Key{Date: "20230306", Step: "M"}},
		{"20230306-VFB-X.txt", Key{Date: "20230306", Step: "X"}},
	}
	for _, tt := range tests {
		got, err := Identify(tt.path, "")
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	for _, bad := range []string{"20230306.txt", "-M.txt", "20230306-.txt"} {
		_, err := Identify(bad, "")
		var me *MalformedIdentifierError
		assert.Truef(t, errors.As(err, &me), "%s should be malformed", bad)
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "20230306-E", Key{Date: "20230306", Step: "E"}.String())
	assert.Equal(t, "20230306-Adhesion [pN]-CD", Key{Date: "20230306", Param: "Adhesion [pN]", Step: "CD"}.String())
}

func TestParseStep(t *testing.T) {
	for _, s := range CanonicalSteps() {
		got, ok := ParseStep(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := ParseStep("cd")
	assert.False(t, ok)
	assert.Equal(t, "Cell Division", CellDivision.Label())
}

func source(t *testing.T, path string, cols map[string][]float64) Source {
	t.Helper()
	tb := table.New(path)
	for _, name := range []string{"Breaking Force [pN]", "Adhesion [pN]"} {
		if v, ok := cols[name]; ok {
			require.NoError(t, tb.AddNumeric(name, v))
		}
	}
	return Source{Path: path, Table: tb}
}

func TestCompileSingleColumnPads(t *testing.T) {
	srcs := []Source{
		source(t, "20230306-VFB-M.txt", map[string][]float64{"Breaking Force [pN]": {1, 2, 3}}),
		source(t, "20230306-VFB-E.txt", map[string][]float64{"Breaking Force [pN]": {4}}),
		source(t, "20230306-VFB-CD.txt", map[string][]float64{"Breaking Force [pN]": {}}),
	}
	r, err := Compile(srcs, []string{"Breaking Force [pN]"})
	require.NoError(t, err)
	assert.Empty(t, r.Skipped)

	m := Key{Date: "20230306", Step: "M"}
	e := Key{Date: "20230306", Step: "E"}
	cd := Key{Date: "20230306", Step: "CD"}
	assert.Equal(t, []Key{m, e, cd}, r.Keys())

	padded := r.Padded()
	for k, v := range padded {
		assert.Lenf(t, v, 3, "%s", k)
	}
	assert.Equal(t, []float64{1, 2, 3}, padded[m])
	assert.Equal(t, 4.0, padded[e][0])
	assert.True(t, math.IsNaN(padded[e][1]) && math.IsNaN(padded[e][2]))
	assert.True(t, math.IsNaN(padded[cd][0]))

	tb := r.Table("breaking_forces")
	assert.Equal(t, []string{"20230306-M", "20230306-E", "20230306-CD"}, tb.Headers())
	assert.Equal(t, 3, tb.Len())

	assert.Equal(t, []float64{4}, r.Series("Breaking Force [pN]")[e])
}

func TestCompileMultiColumnKeys(t *testing.T) {
	srcs := []Source{
		source(t, "20230306-VFB-M.txt", map[string][]float64{
			"Breaking Force [pN]": {1, 2},
			"Adhesion [pN]":       {9, 8},
		}),
		source(t, "20230306-VFB-E.txt", map[string][]float64{
			"Breaking Force [pN]": {3, 4, 5},
			"Adhesion [pN]":       {7, 6, 5},
		}),
	}
	r, err := Compile(srcs, []string{"Breaking Force [pN]", "Adhesion [pN]"})
	require.NoError(t, err)
	assert.Empty(t, r.Skipped)
	assert.Equal(t, []string{
		"20230306-Breaking Force [pN]-M", "20230306-Adhesion [pN]-M",
		"20230306-Breaking Force [pN]-E", "20230306-Adhesion [pN]-E",
	}, r.Table("x").Headers())

	adhM := Key{Date: "20230306", Param: "Adhesion [pN]", Step: "M"}
	adh := r.Series("Adhesion [pN]")
	assert.Len(t, adh, 2)
	assert.Equal(t, []float64{9, 8}, adh[adhM])

	padded := r.Padded()
	for k, v := range padded {
		assert.Lenf(t, v, 3, "%s", k)
	}
	assert.Equal(t, 8.0, padded[adhM][1])
	assert.True(t, math.IsNaN(padded[adhM][2]))
	assert.Equal(t, 3, r.Table("x").Len())
}

func TestIdentifyStemKeepsDots(t *testing.T) {
	k, err := IdentifyStem("2023.03.06-VFB-M", "")
	require.NoError(t, err)
	assert.Equal(t, Key{Date: "2023.03.06", Step: "M"}, k)

	fromPath, err := Identify("/in/2023.03.06-VFB-M.tsv", "")
	require.NoError(t, err)
	assert.Equal(t, k, fromPath)

	_, err = IdentifyStem("2023.03.06", "")
	var me *MalformedIdentifierError
	assert.True(t, errors.As(err, &me))
}

func TestCompileSkipsBadSources(t *testing.T) {
	srcs := []Source{
		source(t, "nohyphen.txt", map[string][]float64{"Breaking Force [pN]": {1}}),
		source(t, "20230306-VFB-M.txt", map[string][]float64{"Adhesion [pN]": {1}}),
		source(t, "20230306-VFB-E.txt", map[string][]float64{"Breaking Force [pN]": {5}}),
		source(t, "20230306-ABC-E.txt", map[string][]float64{"Breaking Force [pN]": {6}}),
	}
	r, err := Compile(srcs, []string{"Breaking Force [pN]"})
	require.NoError(t, err)
	require.Len(t, r.Skipped, 2)
	var me *MalformedIdentifierError
	assert.True(t, errors.As(r.Skipped[0].Err, &me))
	var mc *table.MissingColumnError
	assert.True(t, errors.As(r.Skipped[1].Err, &mc))

	e := Key{Date: "20230306", Step: "E"}
	assert.Equal(t, []Key{e}, r.Keys())
	assert.Equal(t, []Key{e}, r.Replaced)
	assert.Equal(t, []float64{6}, r.Padded()[e])

	_, err = Compile(srcs, nil)
	assert.ErrorIs(t, err, ErrNoColumns)
}
