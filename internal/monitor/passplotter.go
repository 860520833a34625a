// Package monitor produces offline diagnostics for reconciliation runs.
package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/voxelview/voxelview/internal/render"
)

// PassPlotter records reconciliation pass statistics over a session,
// producing PNG time series after a run. Install its Record method as the
// manager's pass hook; it is cheap enough to run on the control goroutine.
type PassPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string

	startTime time.Time
	passIdx   int
	samples   []passSample
}

// passSample is one recorded pass, tagged with its index for the x-axis.
type passSample struct {
	PassIdx int
	Stats   render.PassStats
}

// NewPassPlotter creates a plotter. Call Start before recording.
func NewPassPlotter() *PassPlotter {
	return &PassPlotter{}
}

// Start begins recording into the given directory, creating it if needed.
func (pp *PassPlotter) Start(outputDir string) error {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	pp.outputDir = outputDir
	pp.enabled = true
	pp.startTime = time.Time{}
	pp.passIdx = 0
	pp.samples = nil
	return nil
}

// Stop disables recording. Call GeneratePlots to produce output files.
func (pp *PassPlotter) Stop() {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.enabled = false
}

// IsEnabled returns true if the plotter is currently recording.
func (pp *PassPlotter) IsEnabled() bool {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return pp.enabled
}

// Record captures one pass. Matches the manager's pass hook signature.
func (pp *PassPlotter) Record(s render.PassStats) {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if !pp.enabled {
		return
	}
	if pp.startTime.IsZero() {
		pp.startTime = s.When
	}
	pp.passIdx++
	pp.samples = append(pp.samples, passSample{PassIdx: pp.passIdx, Stats: s})
}

// GeneratePlots creates PNG files summarising the recorded session.
// Returns the number of plots generated and any error.
func (pp *PassPlotter) GeneratePlots() (int, error) {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if pp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}
	if len(pp.samples) == 0 {
		return 0, nil
	}

	if err := pp.generateWorkloadPlot(); err != nil {
		return 0, fmt.Errorf("workload plot: %w", err)
	}
	if err := pp.generateDurationPlot(); err != nil {
		return 1, fmt.Errorf("duration plot: %w", err)
	}
	return 2, nil
}

// generateWorkloadPlot shows per-pass object churn: removals, cache and
// store attachments, and extraction batch sizes.
func (pp *PassPlotter) generateWorkloadPlot() error {
	p := plot.New()
	p.Title.Text = "Reconciliation Pass Workload"
	p.X.Label.Text = "Pass"
	p.Y.Label.Text = "Objects"

	series := []struct {
		name  string
		color color.RGBA
		value func(render.PassStats) float64
	}{
		{"volume labels", color.RGBA{R: 120, G: 120, B: 120, A: 255},
			func(s render.PassStats) float64 { return float64(s.VolumeLabels) }},
		{"removed", color.RGBA{R: 200, B: 40, A: 255},
			func(s render.PassStats) float64 { return float64(s.Removals) }},
		{"cache adds", color.RGBA{G: 160, B: 40, A: 255},
			func(s render.PassStats) float64 { return float64(s.CachedAdds) }},
		{"store adds", color.RGBA{R: 40, G: 100, B: 200, A: 255},
			func(s render.PassStats) float64 { return float64(s.StoreHits) }},
		{"generated", color.RGBA{R: 220, G: 140, A: 255},
			func(s render.PassStats) float64 { return float64(s.Generated) }},
	}

	for _, sr := range series {
		pts := make(plotter.XYs, 0, len(pp.samples))
		for _, sample := range pp.samples {
			pts = append(pts, plotter.XY{X: float64(sample.PassIdx), Y: sr.value(sample.Stats)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = sr.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(sr.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	out := filepath.Join(pp.outputDir, "pass_workload.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("save workload plot: %w", err)
	}
	return nil
}

// generateDurationPlot shows per-pass duration, with superseded passes
// marked as scatter points so batch churn is visible at a glance.
func (pp *PassPlotter) generateDurationPlot() error {
	p := plot.New()
	p.Title.Text = "Reconciliation Pass Duration"
	p.X.Label.Text = "Pass"
	p.Y.Label.Text = "Duration (ms)"

	pts := make(plotter.XYs, 0, len(pp.samples))
	superseded := make(plotter.XYs, 0)
	for _, sample := range pp.samples {
		xy := plotter.XY{
			X: float64(sample.PassIdx),
			Y: float64(sample.Stats.Duration) / float64(time.Millisecond),
		}
		pts = append(pts, xy)
		if sample.Stats.Superseded {
			superseded = append(superseded, xy)
		}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 40, G: 100, B: 200, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("duration", line)

	if len(superseded) > 0 {
		scatter, err := plotter.NewScatter(superseded)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 200, B: 40, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("superseded batch", scatter)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	out := filepath.Join(pp.outputDir, "pass_duration.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("save duration plot: %w", err)
	}
	return nil
}
