package schedulepdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/civeni/civeni-api/internal/domain"
)

const (
	marginLeft = 15
	fontFamily = "Helvetica"
)

type fpdfMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (m fpdfMeasurer) Width(s string) float64 {
	return m.pdf.GetStringWidth(m.tr(s))
}

// Render writes the agenda as an A4 PDF to w.
func Render(w io.Writer, title string, days []domain.ScheduleDay) error {
	opts := DefaultOptions()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, opts.MarginTop, marginLeft)
	pdf.SetAutoPageBreak(false, opts.MarginBottom)
	pdf.SetTitle(title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(fontFamily, "", 9)
	pages := Plan(title, days, fpdfMeasurer{pdf: pdf, tr: tr}, opts)

	for _, page := range pages {
		pdf.AddPage()
		for _, b := range page.Blocks {
			drawBlock(pdf, tr, opts, b)
		}
	}

	total := pdf.PageCount()
	pdf.SetFont(fontFamily, "I", 8)
	pdf.SetTextColor(110, 110, 110)
	for i := 1; i <= total; i++ {
		pdf.SetPage(i)
		pdf.SetXY(marginLeft, opts.PageHeight-opts.MarginBottom-opts.FooterHeight/2)
		pdf.CellFormat(totalWidth(opts), opts.FooterHeight/2, tr(fmt.Sprintf("Página %d de %d", i, total)), "", 0, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf.Output -> %w", err)
	}

	return nil
}

func totalWidth(opts Options) float64 {
	var w float64
	for _, c := range opts.ColumnWidths {
		w += c
	}
	return w
}

func drawBlock(pdf *fpdf.Fpdf, tr func(string) string, opts Options, b Block) {
	width := totalWidth(opts)

	switch b.Kind {
	case BlockTitle:
		pdf.SetFont(fontFamily, "B", 14)
		pdf.SetTextColor(20, 40, 90)
		pdf.SetXY(marginLeft, b.Y)
		pdf.CellFormat(width, b.Height, tr(b.Text), "", 0, "C", false, 0, "")
	case BlockHeading:
		pdf.SetFont(fontFamily, "B", 11)
		pdf.SetTextColor(20, 40, 90)
		pdf.SetXY(marginLeft, b.Y)
		pdf.CellFormat(width, b.Height, tr(b.Text), "", 0, "L", false, 0, "")
	case BlockHeader:
		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFillColor(20, 40, 90)
		x := float64(marginLeft)
		for c, w := range opts.ColumnWidths {
			pdf.SetXY(x, b.Y)
			pdf.CellFormat(w, b.Height, tr(b.Cells[c][0]), "1", 0, "C", true, 0, "")
			x += w
		}
	case BlockRow:
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(0, 0, 0)
		x := float64(marginLeft)
		for c, w := range opts.ColumnWidths {
			pdf.Rect(x, b.Y, w, b.Height, "D")
			for i, line := range b.Cells[c] {
				pdf.SetXY(x+opts.CellPadding, b.Y+opts.CellPadding+float64(i)*opts.LineHeight)
				pdf.CellFormat(w-2*opts.CellPadding, opts.LineHeight, tr(line), "", 0, "L", false, 0, "")
			}
			x += w
		}
	}
}
