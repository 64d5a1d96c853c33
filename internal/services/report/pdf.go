package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	pageWidth  = 190.0 // A4 minus 10mm margins
	pageBottom = 297.0 - 15.0
	fontFamily = "Arial"
	fontSize   = 9.0
)

// markdownToPDF lays out a markdown document on A4 pages.
func markdownToPDF(markdown, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("scrutor", true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &pdfRenderer{
		pdf:       pdf,
		source:    source,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		size:      fontSize,
	}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", err)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	translate func(string) string
	size      float64
	bold      bool
	italic    bool
	listLevel int
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(fontFamily, style, r.size)
}

func (r *pdfRenderer) write(s string) {
	r.pdf.Write(5, r.translate(s))
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		r.heading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case ast.KindText:
		if entering {
			t := n.(*ast.Text)
			r.write(string(t.Segment.Value(r.source)))
			if t.SoftLineBreak() {
				r.write(" ")
			}
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case ast.KindCodeSpan:
		return r.codeSpan(n, entering), nil
	case ast.KindList:
		r.list(entering)
	case ast.KindListItem:
		if entering {
			r.pdf.Ln(5)
			r.pdf.SetX(15 + float64(r.listLevel)*5)
			r.write("- ")
		}
	case extast.KindTable:
		if entering {
			r.renderTable(r.tableRows(n))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) heading(n *ast.Heading, entering bool) {
	if !entering {
		r.pdf.Ln(6)
		r.updateFont()
		return
	}
	r.pdf.Ln(6)
	size := 10.0
	switch n.Level {
	case 1:
		size = 14
	case 2:
		size = 12
	case 3:
		size = 11
	}
	r.pdf.SetFont(fontFamily, "B", size)
}

func (r *pdfRenderer) codeSpan(n ast.Node, entering bool) ast.WalkStatus {
	if !entering {
		r.updateFont()
		return ast.WalkContinue
	}
	r.pdf.SetFont("Courier", "", r.size)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			r.write(string(t.Segment.Value(r.source)))
		}
	}
	r.updateFont()
	return ast.WalkSkipChildren
}

func (r *pdfRenderer) list(entering bool) {
	if entering {
		r.listLevel++
		return
	}
	r.listLevel--
	if r.listLevel == 0 {
		r.pdf.Ln(7)
	}
}

func (r *pdfRenderer) tableRows(n ast.Node) [][]string {
	var rows [][]string
	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch child.(type) {
			case *extast.TableHeader, *extast.TableRow:
				var row []string
				for c := child.FirstChild(); c != nil; c = c.NextSibling() {
					if _, ok := c.(*extast.TableCell); ok {
						row = append(row, r.translate(r.cellText(c)))
					}
				}
				rows = append(rows, row)
			}
		}
	}
	collect(n)
	return rows
}

func (r *pdfRenderer) cellText(n ast.Node) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(r.source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func (r *pdfRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	numCols := len(rows[0])
	const tableFont = 8.0
	const lineHeight = 4.0

	widths := r.columnWidths(rows, numCols, tableFont)
	r.pdf.Ln(2)

	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(fontFamily, style, tableFont)

		maxLines := 1
		for j := 0; j < numCols && j < len(row); j++ {
			if n := len(r.wrap(row[j], widths[j]-2)); n > maxLines {
				maxLines = n
			}
		}
		if maxLines > 8 {
			maxLines = 8
		}
		rowHeight := float64(maxLines)*lineHeight + 2

		startX, startY := r.pdf.GetX(), r.pdf.GetY()
		if startY+rowHeight > pageBottom {
			r.pdf.AddPage()
			startY = r.pdf.GetY()
		}

		x := startX
		for j := 0; j < numCols; j++ {
			if i == 0 {
				r.pdf.SetFillColor(230, 230, 230)
				r.pdf.Rect(x, startY, widths[j], rowHeight, "FD")
			} else {
				r.pdf.Rect(x, startY, widths[j], rowHeight, "D")
			}
			if j < len(row) {
				lines := r.wrap(row[j], widths[j]-2)
				for k := 0; k < len(lines) && k < maxLines; k++ {
					r.pdf.SetXY(x+1, startY+1+float64(k)*lineHeight)
					r.pdf.CellFormat(widths[j]-2, lineHeight, lines[k], "", 0, "L", false, 0, "")
				}
			}
			x += widths[j]
		}
		r.pdf.SetXY(startX, startY+rowHeight)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.pdf.Ln(3)
	r.updateFont()
}

// columnWidths sizes columns to their widest cell, capped at a third of the
// page and scaled to fit.
func (r *pdfRenderer) columnWidths(rows [][]string, numCols int, size float64) []float64 {
	widths := make([]float64, numCols)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(fontFamily, style, size)
		for j := 0; j < numCols && j < len(row); j++ {
			if w := r.pdf.GetStringWidth(row[j]) + 4; w > widths[j] {
				widths[j] = w
			}
		}
	}

	const minWidth = 12.0
	total := 0.0
	for j := range widths {
		if widths[j] < minWidth {
			widths[j] = minWidth
		}
		if widths[j] > pageWidth/3 {
			widths[j] = pageWidth / 3
		}
		total += widths[j]
	}
	if total > pageWidth {
		scale := pageWidth / total
		for j := range widths {
			widths[j] *= scale
		}
	}
	return widths
}

// wrap splits s into lines no wider than width at the current font.
func (r *pdfRenderer) wrap(s string, width float64) []string {
	if s == "" || width <= 0 {
		return []string{s}
	}
	lines := r.pdf.SplitText(s, width)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
