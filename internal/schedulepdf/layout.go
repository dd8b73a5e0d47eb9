// Package schedulepdf lays out the printable conference agenda.
//
// Planning is kept apart from drawing: Plan turns days and sessions into
// pages of positioned blocks using only a Measurer, and Render draws a plan
// with fpdf.
package schedulepdf

import (
	"strings"
	"unicode/utf8"

	"github.com/civeni/civeni-api/internal/domain"
)

// Measurer reports the rendered width of a string in page units.
type Measurer interface {
	Width(s string) float64
}

type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockHeading
	BlockHeader
	BlockRow
)

const columns = 4

var ColumnTitles = [columns]string{"Horário", "Atividade", "Palestrante", "Local"}

type Block struct {
	Kind   BlockKind
	Y      float64
	Height float64
	Text   string
	Cells  [columns][]string
}

type Page struct {
	Blocks []Block
}

type Options struct {
	PageHeight    float64
	MarginTop     float64
	MarginBottom  float64
	FooterHeight  float64
	LineHeight    float64
	CellPadding   float64
	TitleHeight   float64
	HeadingHeight float64
	HeaderHeight  float64
	ColumnWidths  [columns]float64
}

// DefaultOptions fits A4 portrait in millimetres.
func DefaultOptions() Options {
	return Options{
		PageHeight:    297,
		MarginTop:     15,
		MarginBottom:  15,
		FooterHeight:  8,
		LineHeight:    5,
		CellPadding:   1.5,
		TitleHeight:   12,
		HeadingHeight: 9,
		HeaderHeight:  7,
		ColumnWidths:  [columns]float64{26, 72, 52, 30},
	}
}

func (o Options) bottom() float64 {
	return o.PageHeight - o.MarginBottom - o.FooterHeight
}

func (o Options) rowHeight(lines int) float64 {
	return float64(lines)*o.LineHeight + 2*o.CellPadding
}

// maxRowLines is how many lines fit on an otherwise empty page under a header.
func (o Options) maxRowLines() int {
	avail := o.bottom() - o.MarginTop - o.HeaderHeight - 2*o.CellPadding
	n := int(avail / o.LineHeight)
	return max(n, 1)
}

type planner struct {
	opts  Options
	m     Measurer
	pages []Page
	y     float64
}

func (p *planner) newPage() {
	p.pages = append(p.pages, Page{})
	p.y = p.opts.MarginTop
}

func (p *planner) pageEmpty() bool {
	return len(p.pages[len(p.pages)-1].Blocks) == 0
}

func (p *planner) remaining() float64 {
	return p.opts.bottom() - p.y
}

func (p *planner) add(b Block) {
	b.Y = p.y
	last := &p.pages[len(p.pages)-1]
	last.Blocks = append(last.Blocks, b)
	p.y += b.Height
}

func (p *planner) header() {
	p.add(Block{Kind: BlockHeader, Height: p.opts.HeaderHeight, Cells: [columns][]string{
		{ColumnTitles[0]}, {ColumnTitles[1]}, {ColumnTitles[2]}, {ColumnTitles[3]},
	}})
}

// Plan paginates the agenda. A day heading is always followed by the column
// header and at least the first row on the same page; a page break inside a
// day repeats the column header.
func Plan(title string, days []domain.ScheduleDay, m Measurer, opts Options) []Page {
	p := &planner{opts: opts, m: m}
	p.newPage()

	if title != "" {
		p.add(Block{Kind: BlockTitle, Height: opts.TitleHeight, Text: title})
	}

	for _, day := range days {
		rows := make([][columns][]string, 0, len(day.Sessions))
		for i := range day.Sessions {
			rows = append(rows, p.wrapSession(&day.Sessions[i]))
		}

		first := 0.0
		if len(rows) > 0 {
			first = opts.rowHeight(min(lineCount(rows[0]), opts.maxRowLines()))
		}
		if p.remaining() < opts.HeadingHeight+opts.HeaderHeight+first && !p.pageEmpty() {
			p.newPage()
		}
		p.add(Block{Kind: BlockHeading, Height: opts.HeadingHeight, Text: day.Label})
		p.header()

		for _, cells := range rows {
			p.row(cells)
		}
	}

	return p.pages
}

// row places one session, splitting it across pages only when it is taller
// than a whole page.
func (p *planner) row(cells [columns][]string) {
	for {
		lines := lineCount(cells)
		fit := int((p.remaining() - 2*p.opts.CellPadding) / p.opts.LineHeight)

		if lines <= fit {
			p.add(Block{Kind: BlockRow, Height: p.opts.rowHeight(lines), Cells: cells})
			return
		}
		if lines <= p.opts.maxRowLines() || fit < 1 {
			p.newPage()
			p.header()
			continue
		}

		var head, tail [columns][]string
		for c := range cells {
			n := min(fit, len(cells[c]))
			head[c] = cells[c][:n]
			tail[c] = cells[c][n:]
		}
		p.add(Block{Kind: BlockRow, Height: p.opts.rowHeight(fit), Cells: head})
		cells = tail
		p.newPage()
		p.header()
	}
}

func (p *planner) wrapSession(s *domain.ScheduleSession) [columns][]string {
	texts := [columns]string{s.Time(), s.Title, s.SpeakerLine(), s.Location}

	var cells [columns][]string
	for c, text := range texts {
		cells[c] = Wrap(text, p.opts.ColumnWidths[c]-2*p.opts.CellPadding, p.m)
	}

	return cells
}

func lineCount(cells [columns][]string) int {
	n := 1
	for _, c := range cells {
		n = max(n, len(c))
	}
	return n
}

// Wrap breaks text into lines no wider than width. Words wider than a line
// are split by character. Explicit newlines are kept.
func Wrap(text string, width float64, m Measurer) []string {
	var lines []string

	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if m.Width(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			if m.Width(word) <= width {
				line = word
				continue
			}

			pieces := splitWord(word, width, m)
			lines = append(lines, pieces[:len(pieces)-1]...)
			line = pieces[len(pieces)-1]
		}
		lines = append(lines, line)
	}

	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func splitWord(word string, width float64, m Measurer) []string {
	var pieces []string

	for word != "" {
		cut := len(word)
		for cut > 0 && m.Width(word[:cut]) > width {
			_, size := utf8.DecodeLastRuneInString(word[:cut])
			cut -= size
		}
		if cut == 0 {
			// Column narrower than a single rune.
			_, cut = utf8.DecodeRuneInString(word)
		}
		pieces = append(pieces, word[:cut])
		word = word[cut:]
	}

	return pieces
}
