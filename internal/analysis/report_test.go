package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
)

const sample = "Filename\tAdhesion [N]\tTemp [degC]\tFitted Segment Count\n" +
	"c1\t1e-11\t21\t0\n" +
	"c1\t2e-11\t22\t1\n" +
	"c2\t3e-11\t\t2\n" +
	"c3\t4e-11\t23\t1\n"

func TestSummarizeAndMarkdown(t *testing.T) {
	tb, err := table.Decode(strings.NewReader(sample), "20230306-VFB-M.txt", table.Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rep := Summarize(tb, DefaultOptions())
	if rep.Rows != 4 || len(rep.Cols) != 4 {
		t.Fatalf("unexpected shape: rows=%d cols=%d", rep.Rows, len(rep.Cols))
	}

	adh := rep.Cols[1]
	if adh.Kind != "numeric" || adh.Unit != "N" {
		t.Fatalf("adhesion summary: %+v", adh)
	}
	if math.Abs(adh.Mean-2.5e-11) > 1e-20 || adh.Min != 1e-11 || adh.Max != 4e-11 {
		t.Fatalf("adhesion stats: %+v", adh)
	}

	temp := rep.Cols[2]
	if temp.Missing != 1 || temp.NonNull != 3 || temp.Unit != "" {
		t.Fatalf("temp summary: %+v", temp)
	}

	name := rep.Cols[0]
	if name.Kind != "categorical" || name.Unique != 3 || name.TopValues[0].Value != "c1" {
		t.Fatalf("filename summary: %+v", name)
	}

	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], "degC") {
		t.Fatalf("expected one unit warning, got %v", rep.Warnings)
	}

	md := rep.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[HEAD AND SAMPLE ROWS]", "[NOTES]", "Adhesion [N]: numeric in N"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestOutliers(t *testing.T) {
	tb := table.New("x")
	vals := []float64{10, 11, 9.5, 10.5, 9.8, 10.2, 8.8, 9.7, 50}
	if err := tb.AddNumeric("Breaking Force [pN]", vals); err != nil {
		t.Fatal(err)
	}
	rep := Summarize(tb, DefaultOptions())
	c := rep.Cols[0]
	if c.OutliersCount != 1 || c.OutliersMaxAbsZ <= 3.5 {
		t.Fatalf("expected one outlier, got %+v", c)
	}
	if c.Unit != "pN" {
		t.Fatalf("unit = %q", c.Unit)
	}
}
