// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/talent-ranker/internal/cache"
	"github.com/jonathan/talent-ranker/internal/scoring"
	"github.com/jonathan/talent-ranker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRankedResults outputs the top ranked candidates with scores, tiers,
// and how each result was produced.
func (p *Printer) PrintRankedResults(result *types.BatchResult) {
	if result == nil || len(result.Results) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates ranked: %d\n\n", len(result.Results)))

	count := min(len(result.Results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := result.Results[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", r.Rank, r.CandidateID))
		sb.WriteString(fmt.Sprintf("    Score: %.1f  Tier: %s  (%s)\n", r.Score, r.Tier, r.Provider))
		if len(r.Reasons) > 0 {
			reasons := strings.Join(r.Reasons, "; ")
			if len(reasons) > 45 {
				reasons = reasons[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %s\n", reasons))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(result.Results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(result.Results)-maxItemsToShow))
	}
	if result.HasMore {
		sb.WriteString("\nMore pages available")
	}

	p.printBox("RANKED CANDIDATES", sb.String())
}

// PrintBatchStats outputs how a batch was served: cache hits, remote
// analyses, and degradations.
func (p *Printer) PrintBatchStats(stats types.BatchStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Batch:      %s\n", stats.BatchID))
	sb.WriteString(fmt.Sprintf("Total:      %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Cache hits: %d\n", stats.CacheHits))
	sb.WriteString(fmt.Sprintf("Analyzed:   %d\n", stats.Analyzed))
	if stats.Fallbacks > 0 {
		sb.WriteString(fmt.Sprintf("⚠ Fallbacks: %d (heuristic results substituted)\n", stats.Fallbacks))
	}
	sb.WriteString(fmt.Sprintf("Elapsed:    %s", stats.Elapsed.Round(time.Millisecond)))

	p.printBox("BATCH SUMMARY", sb.String())
}

// PrintSimilar outputs the candidates most similar to a base candidate.
func (p *Printer) PrintSimilar(base *types.Candidate, similar []scoring.SimilarCandidate) {
	if base == nil || len(similar) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Similar to: %s (%s)\n\n", base.Name, base.ID))

	count := min(len(similar), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := similar[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, s.Candidate.Name))
		sb.WriteString(fmt.Sprintf("    Similarity: %.3f\n", s.Similarity))
		if len(s.SharedSkills) > 0 {
			skills := strings.Join(s.SharedSkills, ", ")
			if len(skills) > 40 {
				skills = skills[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Shared: %s\n", skills))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(similar) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(similar)-maxItemsToShow))
	}

	p.printBox("SIMILAR CANDIDATES", sb.String())
}

// PrintCacheStats outputs the in-memory cache footprint.
func (p *Printer) PrintCacheStats(stats cache.Stats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Entries:     %d / %d\n", stats.Entries, stats.MaxEntries))
	sb.WriteString(fmt.Sprintf("Approx size: %d bytes\n", stats.ApproxSizeBytes))
	sb.WriteString(fmt.Sprintf("TTL:         %s", stats.TTL))

	p.printBox("RESULT CACHE", sb.String())
}
