package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// isTTY checks if w is a terminal (supports colors)
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Printer writes operator-facing progress lines.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer; colors are used only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: isTTY(w)}
}

func (p *Printer) paint(color, text string) string {
	if p.color {
		return color + text + colorReset
	}
	return text
}

// Record prints the outcome of a single reviewer row.
func (p *Printer) Record(res RecordResult) {
	if res.OK {
		fmt.Fprintf(p.w, "%s Generated PDF file %s.\n", p.paint(colorGreen, "OK"), filepath.Base(res.PDFPath))
		if res.DriveFileID != "" {
			fmt.Fprintf(p.w, "   %s\n", p.paint(colorDim, "uploaded to Drive as "+res.DriveFileID))
		}
		return
	}

	who := fmt.Sprintf("%q (row %d)", res.Record.Name, res.Record.Row)
	switch res.Kind {
	case KindRendererNotFound:
		fmt.Fprintf(p.w, "%s %s: the LaTeX renderer was not found. Check that LaTeX is installed.\n", p.paint(colorRed, "ERROR"), who)
	case KindRendererFailed:
		fmt.Fprintf(p.w, "%s %s: failed to generate the PDF file.\n", p.paint(colorRed, "ERROR"), who)
		if res.Diagnostic != "" {
			fmt.Fprintf(p.w, "%s\n", p.paint(colorDim, res.Diagnostic))
		}
	case KindUploadFailed:
		fmt.Fprintf(p.w, "%s %s: PDF generated but upload failed: %s\n", p.paint(colorYellow, "WARN"), who, res.Error)
	default:
		fmt.Fprintf(p.w, "%s %s: unexpected error: %s\n", p.paint(colorRed, "ERROR"), who, res.Error)
	}
}

// Summary prints the totals for a finished run.
func (p *Printer) Summary(r *Report) {
	color := colorGreen
	switch r.Status {
	case StatusPartial:
		color = colorYellow
	case StatusFailed:
		color = colorRed
	}
	fmt.Fprintf(p.w, "\n%s: %d generated, %d failed in %s\n",
		p.paint(color, r.Status), r.Succeeded, r.Failed, r.TotalDuration.Round(time.Millisecond))
}
