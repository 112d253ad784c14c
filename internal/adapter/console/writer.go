// Package console renders selected readings as a human-readable table.
package console

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/wgraba/airquality/internal/domain"
)

// Writer implements pipeline.Sink by printing one table row per pollutant.
type Writer struct {
	out io.Writer
}

// NewWriter creates a console sink writing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Emit renders the readings table. Rendering validated readings to a
// writer cannot meaningfully fail, so Emit always returns nil.
func (w *Writer) Emit(_ context.Context, readings []domain.SelectedReading) error {
	table := tablewriter.NewWriter(w.out)
	table.SetHeader([]string{"Time (UTC)", "Site", "Distance (mi)", "Pollutant", "AQI", "Concentration"})

	for _, r := range readings {
		table.Append([]string{
			r.ObservedAt.Format("2006-01-02 15:04"),
			r.Site,
			fmt.Sprintf("%.2f", r.DistanceMi),
			string(r.Pollutant),
			strconv.Itoa(r.AQI),
			fmt.Sprintf("%.1f %s", r.Concentration, r.Unit),
		})
	}

	table.Render()
	return nil
}
