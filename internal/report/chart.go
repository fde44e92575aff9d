package report

import (
	"fmt"
	"os"
	"time"

	"github.com/vicanso/go-charts/v2"
)

// RenderComparison renders aligned value curves as a PNG line chart. lines
// and labels are parallel; every line must have one value per date.
func RenderComparison(title string, dates []time.Time, labels []string, lines [][]float64) ([]byte, error) {
	if len(lines) == 0 || len(dates) == 0 {
		return nil, fmt.Errorf("chart: nothing to render")
	}
	for i, line := range lines {
		if len(line) != len(dates) {
			return nil, fmt.Errorf("chart: series %q has %d points, want %d", labels[i], len(line), len(dates))
		}
	}

	xLabels := make([]string, len(dates))
	for i, d := range dates {
		if len(dates) <= 60 {
			xLabels[i] = d.Format("Jan 02")
		} else {
			xLabels[i] = d.Format("Jan '06")
		}
	}

	p, err := charts.LineRender(
		lines,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendLabelsOptionFunc(labels),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}
	return buf, nil
}

// WriteComparisonPNG renders and writes the comparison chart to path.
func WriteComparisonPNG(path, title string, dates []time.Time, labels []string, lines [][]float64) error {
	buf, err := RenderComparison(title, dates, labels, lines)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
