package render

import (
	"path/filepath"

	"github.com/KaramelBytes/afmtool-cli/internal/group"
	"github.com/KaramelBytes/afmtool-cli/internal/utils"
)

// FinalName titles the figures built from every accepted date.
const FinalName = "Final"

// RootHistograms writes count and frequency histograms for every accepted
// date of g plus the final accumulation. It returns the written paths.
func RootHistograms(g *group.Grouping, dir string, o HistogramOptions) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	sets := append([]group.DateGroup(nil), g.Dates...)
	if len(g.Dates) > 0 {
		sets = append(sets, g.FinalGroup(FinalName))
	}
	var written []string
	for _, dg := range sets {
		sep := "-"
		if dg.Date == FinalName {
			sep = " "
		}
		for _, mode := range []Mode{Count, Frequency} {
			name := dg.Date + sep + mode.String()
			path := filepath.Join(dir, name+".svg")
			if err := WriteHistogramSet(path, name, dg, mode, o); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

// RootPies writes one pie page per accepted date of g.
func RootPies(g *group.Grouping, dir string, labels []string) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	var written []string
	for _, dg := range g.Dates {
		name := dg.Date + "-Pie"
		path := filepath.Join(dir, name+".html")
		if err := WritePieSet(path, name, labels, dg); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
