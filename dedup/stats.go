package dedup

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dendrascience/imgdedup/util"
	"github.com/dustin/go-humanize"
)

// Outcome classifies what happened to a single input file.
type Outcome int

const (
	// OutcomeConverted: this file's encoding was smaller and was written.
	OutcomeConverted Outcome = iota
	// OutcomeDeclined: encoding was not smaller; a marker was written.
	OutcomeDeclined
	// OutcomeReused: the artifact already existed from a previous run.
	OutcomeReused
	// OutcomeDeduplicated: another file with the same digest was handled
	// earlier in this run.
	OutcomeDeduplicated
	// OutcomeSkipped: not an image, or not a regular file.
	OutcomeSkipped
	// OutcomeFailed: read, decode, encode or write error.
	OutcomeFailed
)

var outcomeNames = [...]string{"converted", "declined", "reused", "deduplicated", "skipped", "failed"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Accounted reports whether files with this outcome contribute to the byte totals.
func (o Outcome) Accounted() bool {
	return o <= OutcomeDeduplicated
}

// Stats accumulates run totals across workers. The zero value is ready to use.
type Stats struct {
	mu            sync.Mutex
	originalBytes int64
	outputBytes   int64
	counts        [len(outcomeNames)]int
}

// Record adds one file. Byte totals are only updated for accounted outcomes.
func (s *Stats) Record(o Outcome, original, output int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[o]++
	if o.Accounted() {
		s.originalBytes += original
		s.outputBytes += output
	}
}

// Summary is the final, immutable report of a run.
type Summary struct {
	util.Metadata
	Input          string  `json:"input"`
	Output         string  `json:"output"`
	Quality        int     `json:"quality"`
	Files          int     `json:"files"`
	Converted      int     `json:"converted"`
	Declined       int     `json:"declined"`
	Reused         int     `json:"reused"`
	Deduplicated   int     `json:"deduplicated"`
	Skipped        int     `json:"skipped"`
	Failed         int     `json:"failed"`
	OriginalBytes  int64   `json:"original_bytes"`
	OutputBytes    int64   `json:"output_bytes"`
	SavedBytes     int64   `json:"saved_bytes"`
	PercentSaved   float64 `json:"percent_saved"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Summarize snapshots s into a Summary.
func (s *Stats) Summarize(elapsed time.Duration) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Metadata:       util.NewMetadata(),
		Converted:      s.counts[OutcomeConverted],
		Declined:       s.counts[OutcomeDeclined],
		Reused:         s.counts[OutcomeReused],
		Deduplicated:   s.counts[OutcomeDeduplicated],
		Skipped:        s.counts[OutcomeSkipped],
		Failed:         s.counts[OutcomeFailed],
		OriginalBytes:  s.originalBytes,
		OutputBytes:    s.outputBytes,
		SavedBytes:     SavedBytes(s.originalBytes, s.outputBytes),
		PercentSaved:   PercentSaved(s.originalBytes, s.outputBytes),
		ElapsedSeconds: elapsed.Seconds(),
	}
	for _, c := range s.counts {
		sum.Files += c
	}
	return sum
}

// SavedBytes returns original - output, floored at zero.
func SavedBytes(original, output int64) int64 {
	if original > output {
		return original - output
	}
	return 0
}

// PercentSaved returns the saved share of original in [0, 100].
// It is 0 when nothing was seen.
func PercentSaved(original, output int64) float64 {
	if original <= 0 {
		return 0
	}
	p := 100 * float64(SavedBytes(original, output)) / float64(original)
	return min(max(p, 0), 100)
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Report writes the human-readable statistics block.
func (s Summary) Report(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Statistics ---")
	fmt.Fprintf(w, "Files:          %d (converted %d, declined %d, reused %d, deduplicated %d, skipped %d, failed %d)\n",
		s.Files, s.Converted, s.Declined, s.Reused, s.Deduplicated, s.Skipped, s.Failed)
	fmt.Fprintf(w, "Original total: %s\n", formatSize(s.OriginalBytes))
	fmt.Fprintf(w, "WebP total:     %s\n", formatSize(s.OutputBytes))
	fmt.Fprintf(w, "Bytes saved:    %s (%.2f%%)\n", formatSize(s.SavedBytes), s.PercentSaved)
}
