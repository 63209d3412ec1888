package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"ytrelink/pkg/models"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// ProgressDisplay prints one line per processed page and the final summary
type ProgressDisplay struct {
	mu        sync.Mutex
	out       io.Writer
	ceiling   int
	processed int
	updated   int
	dryRun    bool
	startTime time.Time
}

// NewProgressDisplay creates a display writing to out
func NewProgressDisplay(out io.Writer, dryRun bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:       out,
		dryRun:    dryRun,
		startTime: time.Now(),
	}
}

// Start prints where the run begins
func (p *ProgressDisplay) Start(runID, collectionID, startToken string, ceiling int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ceiling = ceiling
	p.startTime = time.Now()
	if IsQuietMode() {
		return
	}

	from := startToken
	if from == "" {
		from = "beginning of playlist"
	}
	Fprint(p.out, "[PLAYLIST]", collectionID)
	Fprint(p.out, "[START]", from)
	if p.dryRun {
		Fprint(p.out, "[MODE]", Yellow("dry run, nothing will be written"))
	}
}

// Batch prints the progress line for one page
func (p *ProgressDisplay) Batch(page int, pg models.Page, result models.BatchResult, processed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed = processed
	p.updated += result.Updated
	if IsQuietMode() {
		return
	}

	label := Magenta(fmt.Sprintf("[PAGE %d]", page))
	fmt.Fprintf(p.out, "%s %s updated %d", label, p.bar(), p.updated)
	if result.Missing > 0 {
		fmt.Fprintf(p.out, " %s", Dim(fmt.Sprintf("(%d missing)", result.Missing)))
	}
	fmt.Fprintln(p.out)
}

// Finish prints the summary
func (p *ProgressDisplay) Finish(summary *models.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if summary.Drained {
		fmt.Fprintln(p.out, Green(summary.String()))
	} else {
		fmt.Fprintln(p.out, summary.String())
	}
	if !IsQuietMode() {
		fmt.Fprintln(p.out, Dim(fmt.Sprintf("run %s took %s, %.1f videos/min",
			summary.RunID, summary.Duration.Round(time.Millisecond), p.rate())))
	}
}

// bar renders processed against the ceiling, or a plain count when unbounded
func (p *ProgressDisplay) bar() string {
	if p.ceiling <= 0 {
		return fmt.Sprintf("%d processed", p.processed)
	}

	progress := float64(p.processed) / float64(p.ceiling)
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * barWidth)

	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, p.processed, p.ceiling)
}

// rate returns processed items per minute since Start
func (p *ProgressDisplay) rate() float64 {
	elapsed := time.Since(p.startTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(p.processed) / elapsed
}
