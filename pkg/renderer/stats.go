package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

// PhaseTiming records how long one phase of a render took
type PhaseTiming struct {
	Name     string
	Duration time.Duration
}

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	JobID          string  // Identifies the render in logs
	TotalPixels    int     // Total number of pixels rendered
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel
	MaxSamples     int     // Maximum samples allowed per pixel
	MinSamples     int     // Minimum samples taken per pixel
	MaxSamplesUsed int     // Maximum samples actually used by any pixel
	Tiles          int     // Tiles rendered
	Workers        int     // Tile workers used
	Phases         []PhaseTiming
}

// NewRenderStats returns empty statistics with a fresh job ID
func NewRenderStats() RenderStats {
	return RenderStats{JobID: uuid.NewString()}
}

// Merge folds the statistics of a rendered tile into s
func (s *RenderStats) Merge(tile RenderStats) {
	if s.Tiles == 0 {
		s.MinSamples = tile.MinSamples
	} else {
		s.MinSamples = min(s.MinSamples, tile.MinSamples)
	}
	s.TotalPixels += tile.TotalPixels
	s.TotalSamples += tile.TotalSamples
	s.MaxSamplesUsed = max(s.MaxSamplesUsed, tile.MaxSamplesUsed)
	s.Tiles += tile.Tiles
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
}

// AddPhase records the duration of a named phase
func (s *RenderStats) AddPhase(name string, d time.Duration) {
	s.Phases = append(s.Phases, PhaseTiming{Name: name, Duration: d})
}

// WriteTable renders the statistics as a text table
func (s RenderStats) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Stat", "Value"})
	table.Append([]string{"Job", s.JobID})
	table.Append([]string{"Pixels", fmt.Sprint(s.TotalPixels)})
	table.Append([]string{"Samples", fmt.Sprint(s.TotalSamples)})
	table.Append([]string{"Samples/pixel", fmt.Sprintf("%.2f (min %d, max %d of %d)", s.AverageSamples, s.MinSamples, s.MaxSamplesUsed, s.MaxSamples)})
	table.Append([]string{"Tiles", fmt.Sprint(s.Tiles)})
	table.Append([]string{"Workers", fmt.Sprint(s.Workers)})
	for _, phase := range s.Phases {
		table.Append([]string{"Phase " + phase.Name, phase.Duration.Round(time.Millisecond).String()})
	}
	table.Render()
}
