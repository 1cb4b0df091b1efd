package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// Progress tracks a fixed-size batch of work, such as image downloads
type Progress struct {
	Label     string
	Total     int
	Done      int
	StartTime time.Time
}

// NewProgress creates a progress tracker for total items
func NewProgress(label string, total int) *Progress {
	return &Progress{
		Label:     label,
		Total:     total,
		StartTime: time.Now(),
	}
}

// Bar renders the progress bar with counts
func (p *Progress) Bar() string {
	filled := 0
	if p.Total > 0 {
		filled = p.Done * barWidth / p.Total
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, barWidth-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, p.Done, p.Total)
}

// Rate returns the average number of items per minute
func (p *Progress) Rate() float64 {
	elapsed := time.Since(p.StartTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(p.Done) / elapsed
}

// Update records progress and redraws the line
func (p *Progress) Update(done int) {
	p.Done = done
	if quiet {
		return
	}
	fmt.Fprintf(out, "\r%s %s %s", Green(p.Label), p.Bar(), Dim(fmt.Sprintf("%.1f/min", p.Rate())))
	if p.Done >= p.Total {
		fmt.Fprintln(out)
	}
}
