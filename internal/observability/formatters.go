package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jobfit/internal/types"
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

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobDetails outputs the extracted job title and company.
func (p *Printer) PrintJobDetails(job types.JobDetails) {
	p.printBox("JOB DETAILS", fmt.Sprintf("Title:    %s\nCompany:  %s", job.Title, job.Company))
}

// PrintUsage outputs a usage decision.
func (p *Printer) PrintUsage(d types.UsageDecision) {
	var sb strings.Builder

	limit := fmt.Sprintf("%d", d.MonthlyLimit)
	if d.MonthlyLimit == types.UnlimitedQuota {
		limit = "unlimited"
	}
	sb.WriteString(fmt.Sprintf("Tier:     %s\n", d.Tier))
	sb.WriteString(fmt.Sprintf("Period:   %s\n", d.Period))
	sb.WriteString(fmt.Sprintf("Used:     %d / %s\n", d.MonthlyCount, limit))
	if d.CanProceed {
		sb.WriteString("Status:   approved\n")
	} else {
		sb.WriteString("Status:   quota exceeded\n")
	}
	if d.NeedsUpgrade {
		sb.WriteString(fmt.Sprintf("Upgrade:  %s ($%.2f/month)\n", d.SuggestedTier, d.SuggestedPrice))
	}

	p.printBox("USAGE", sb.String())
}

// PrintTailoring outputs the tailored headline and which stages fell back.
func (p *Printer) PrintTailoring(tailored *types.TailoredProfile) {
	if tailored == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", tailored.PersonalInfo.Title))
	sb.WriteString(fmt.Sprintf("Skills:   %d in %d categories\n", tailored.Skills.Len(), len(tailored.Skills.Categories)))
	sb.WriteString(fmt.Sprintf("Roles:    %d\n", len(tailored.Experience)))
	sb.WriteString("\n")

	for _, outcome := range tailored.StageOutcomes {
		status := "tailored"
		if !outcome.Tailored {
			status = "fallback: " + outcome.Reason
		}
		sb.WriteString(fmt.Sprintf("  %-12s %s\n", outcome.Stage, status))
	}

	if len(tailored.Experience) > 0 {
		sb.WriteString("\nTop achievements:\n")
		shown := 0
		for _, exp := range tailored.Experience {
			for _, a := range exp.Achievements {
				if shown >= maxItemsToShow {
					break
				}
				sb.WriteString(fmt.Sprintf("  • %s\n", a))
				shown++
			}
		}
	}

	p.printBox("TAILORED PROFILE", sb.String())
}

// PrintDocument outputs a line per rendered document.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDocument(kind types.DocumentKind, filename string, pages, size int) {
	fmt.Fprintf(p.out, "  %-13s %s (%d page(s), %d bytes)\n", kind, filename, pages, size)
}
