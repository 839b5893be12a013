package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/postcut/internal/machine"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth   = 210.0
	marginLeft  = 15.0
	marginRight = 15.0
	marginTop   = 15.0
	qrSize      = 40.0
	rowHeight   = 6.0
	contentW    = pageWidth - marginLeft - marginRight
)

// WriteSetupSheet writes a one-document PDF for the machine operator: job
// details, output files, tools and operations. A QR code in the corner
// carries the summary as JSON.
func WriteSetupSheet(path string, s JobSummary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	qrData, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal job summary: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("summary_qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions("summary_qr", pageWidth-marginRight-qrSize, marginTop, qrSize, qrSize,
		false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Title block
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentW-qrSize, 10, "Setup Sheet: "+s.Job, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	info := []string{
		"Post processor: " + s.PostProcessor,
		"Units: " + s.Units,
	}
	if s.Machine != "" {
		info = append(info, "Machine: "+s.Machine)
	}
	if len(s.Fixtures) > 0 {
		info = append(info, fmt.Sprintf("Fixtures: %v", s.Fixtures))
	}
	for _, line := range info {
		pdf.CellFormat(contentW-qrSize, rowHeight, line, "", 1, "L", false, 0, "")
	}
	pdf.SetY(marginTop + qrSize + 5)

	section(pdf, "Output files")
	table(pdf, []string{"Section", "File", "Lines"}, []float64{40, 110, 30}, len(s.Files), func(i int) []string {
		f := s.Files[i]
		name := f.Section
		if name == "" {
			name = "-"
		}
		return []string{name, f.File, fmt.Sprintf("%d", f.Lines)}
	})

	units := machine.Units(s.Units)
	section(pdf, "Tools")
	header := []string{"T", "Label", "Dia (mm)", "RPM", "Dir", "Feed/Plunge (" + units.FeedLabel() + ")", "Ops"}
	table(pdf, header, []float64{10, 48, 20, 20, 22, 45, 15}, len(s.Tools), func(i int) []string {
		t := s.Tools[i]
		return []string{
			fmt.Sprintf("%d", t.Number),
			t.Label,
			fmt.Sprintf("%.2f", t.Diameter),
			fmt.Sprintf("%.0f", t.SpindleSpeed),
			t.SpindleDir,
			feedText(t, units),
			fmt.Sprintf("%d", t.Operations),
		}
	})

	section(pdf, "Operations")
	table(pdf, []string{"#", "Operation", "Kind", "T", "Commands"}, []float64{10, 85, 35, 20, 30}, len(s.Operations), func(i int) []string {
		op := s.Operations[i]
		tool := "-"
		if op.Tool > 0 {
			tool = fmt.Sprintf("%d", op.Tool)
		}
		return []string{fmt.Sprintf("%d", i+1), op.Label, op.Kind, tool, fmt.Sprintf("%d", op.Commands)}
	})

	return pdf.OutputFileAndClose(path)
}

// feedText shows a tool's horizontal and vertical feed per minute in the
// output units. Feeds are stored in mm/s.
func feedText(t ToolSummary, u machine.Units) string {
	scale := 60.0
	if u == machine.Imperial {
		scale /= 25.4
	}
	return fmt.Sprintf("%.1f / %.1f", t.HorizFeed*scale, t.VertFeed*scale)
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 8, title, "", 1, "L", false, 0, "")
}

// table draws a header row and n body rows produced by row.
func table(pdf *fpdf.Fpdf, header []string, widths []float64, n int, row func(int) []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for r := 0; r < n; r++ {
		for i, v := range row(r) {
			pdf.CellFormat(widths[i], rowHeight, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
