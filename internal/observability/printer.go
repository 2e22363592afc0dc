package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/dataset-hub/internal/db"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxClassesToShow is the default number of classes to display
	maxClassesToShow = 10
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

// PrintDataset outputs a human-readable summary of an imported dataset.
func (p *Printer) PrintDataset(ds *db.Dataset) {
	if ds == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:        %s\n", ds.Name))
	sb.WriteString(fmt.Sprintf("Status:      %s\n", ds.Status))
	sb.WriteString(fmt.Sprintf("Images:      %d\n", ds.Stats.TotalImages))
	sb.WriteString(fmt.Sprintf("Annotations: %d\n", ds.Stats.TotalAnnotations))
	sb.WriteString(fmt.Sprintf("Avg/image:   %.2f\n", ds.Stats.AvgAnnotationsPerImage))
	sb.WriteString(fmt.Sprintf("Size:        %d bytes\n", ds.Stats.DatasetSizeBytes))

	if len(ds.Classes) > 0 {
		sb.WriteString("\nClasses:\n")
		count := min(len(ds.Classes), maxClassesToShow)
		for i := 0; i < count; i++ {
			c := ds.Classes[i]
			name := c.Name
			if name == "" {
				name = "(unnamed)"
			}
			sb.WriteString(fmt.Sprintf("  %3d  %-20s %d\n", c.ID, name, c.Count))
		}
		if len(ds.Classes) > maxClassesToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(ds.Classes)-maxClassesToShow))
		}
	}

	p.printBox("IMPORTED DATASET", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJob outputs the terminal state of an import job.
func (p *Printer) PrintJob(job *db.ImportJob) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:    %s\n", job.JobID))
	sb.WriteString(fmt.Sprintf("Status: %s", job.Status))

	if job.Error != nil {
		sb.WriteString(fmt.Sprintf("\nError:  %s", job.Error.Message))
	}
	if job.Summary != nil {
		sb.WriteString(fmt.Sprintf("\nImages: %d, annotations: %d",
			job.Summary.TotalImages, job.Summary.TotalAnnotations))
	}

	p.printBox("IMPORT JOB", sb.String())
}
