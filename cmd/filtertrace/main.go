// Command filtertrace renders the filter presets' step and noise response to
// an HTML chart, for eyeballing jitter suppression against lag when retuning.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ayusman/mudra/internal/filter"
)

func main() {
	var (
		out    = flag.String("out", "filtertrace.html", "output HTML file")
		frames = flag.Int("frames", 240, "number of 60 Hz frames to simulate")
		noise  = flag.Float64("noise", 0.004, "landmark noise amplitude")
		seed   = flag.Int64("seed", 1, "noise seed")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	// The test signal holds still, steps, then sweeps: the hold exposes
	// jitter, the step and sweep expose lag.
	raw := make([]float64, *frames)
	truth := make([]float64, *frames)
	for i := range raw {
		t := float64(i) / 60.0
		switch {
		case t < 1.0:
			truth[i] = 0.3
		case t < 2.0:
			truth[i] = 0.6
		default:
			truth[i] = 0.6 + 0.15*math.Sin(2*math.Pi*(t-2.0))
		}
		raw[i] = truth[i] + *noise*(2*rng.Float64()-1)
	}

	presets := []struct {
		name   string
		preset filter.Preset
	}{
		{"landmark", filter.LandmarkPreset},
		{"pointer", filter.PointerPreset},
		{"gesture", filter.GesturePreset},
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Mudra Filter Trace", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "One Euro Filter Response",
			Subtitle: fmt.Sprintf("frames=%d noise=%g seed=%d", *frames, *noise, *seed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "position"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	frameAxis := make([]int, *frames)
	for i := range frameAxis {
		frameAxis[i] = i
	}
	line.SetXAxis(frameAxis).
		AddSeries("raw", toLineData(raw)).
		AddSeries("truth", toLineData(truth))

	for _, p := range presets {
		f := filter.New(p.preset)
		filtered := make([]float64, *frames)
		for i, v := range raw {
			filtered[i] = f.Filter(v, int64(i)*1000/60)
		}
		line.AddSeries(p.name, toLineData(filtered))
	}

	fh, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer fh.Close()

	if err := line.Render(fh); err != nil {
		log.Fatalf("Failed to render chart: %v", err)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func toLineData(vals []float64) []opts.LineData {
	data := make([]opts.LineData, len(vals))
	for i, v := range vals {
		data[i] = opts.LineData{Value: v}
	}
	return data
}
