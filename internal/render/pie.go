package render

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/afmtool-cli/internal/group"
	"github.com/KaramelBytes/afmtool-cli/internal/utils"
)

// InteractionLabels name the slices of an interaction pie.
var InteractionLabels = []string{"No Interaction", "Specific", "Non-specific"}

// PieSet renders one pie per section of g on a single HTML page. Slice i of
// each pie is named labels[i].
func PieSet(title string, labels []string, g group.DateGroup) ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = title
	for _, sv := range g.Steps {
		data := make([]opts.PieData, 0, len(sv.Values))
		for i, v := range sv.Values {
			name := fmt.Sprintf("%d", i+1)
			if i < len(labels) {
				name = labels[i]
			}
			data = append(data, opts.PieData{Name: name, Value: v})
		}
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "420px", Height: "360px"}),
			charts.WithTitleOpts(opts.Title{Title: sv.Step.Label(), Subtitle: title}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		)
		pie.AddSeries(string(sv.Step), data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		)
		page.AddCharts(pie)
	}
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render pie set: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePieSet renders a pie set to path.
func WritePieSet(path, title string, labels []string, g group.DateGroup) error {
	b, err := PieSet(title, labels, g)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}
