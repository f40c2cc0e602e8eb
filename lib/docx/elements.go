package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

var ErrMalformedRow = errors.New("malformed table row")

// WordprocessingML elements are matched by the conventional "w" prefix.
func isW(el *etree.Element, tag string) bool {
	return el != nil && el.Space == "w" && el.Tag == tag
}

func firstChild(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if isW(c, tag) {
			return c
		}
	}
	return nil
}

func childrenW(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if isW(c, tag) {
			out = append(out, c)
		}
	}
	return out
}

// walkBlocks visits the block-level children of a body or cell, descending into
// content controls.
func walkBlocks(parent *etree.Element, fn func(el *etree.Element)) {
	if parent == nil {
		return
	}
	for _, c := range parent.ChildElements() {
		switch {
		case isW(c, "sdt"):
			walkBlocks(firstChild(c, "sdtContent"), fn)
		default:
			fn(c)
		}
	}
}

type Paragraph struct {
	el *etree.Element
}

// Runs returns the paragraph's runs in order, including runs nested in hyperlinks,
// tracked insertions, smart tags and simple fields. Runs of nested paragraphs (text
// boxes) belong to those paragraphs.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	var collect func(el *etree.Element)
	collect = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			switch {
			case isW(c, "r"):
				runs = append(runs, &Run{el: c})
			case isW(c, "hyperlink"), isW(c, "ins"), isW(c, "smartTag"), isW(c, "fldSimple"), isW(c, "customXml"):
				collect(c)
			case isW(c, "sdt"):
				if content := firstChild(c, "sdtContent"); content != nil {
					collect(content)
				}
			}
		}
	}
	collect(p.el)
	return runs
}

func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs() {
		b.WriteString(r.Text())
	}
	return b.String()
}

type Run struct {
	el *etree.Element
}

func (r *Run) Text() string {
	var b strings.Builder
	for _, c := range r.el.ChildElements() {
		switch {
		case isW(c, "t"):
			b.WriteString(c.Text())
		case isW(c, "tab"):
			b.WriteByte('\t')
		case isW(c, "br"), isW(c, "cr"):
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// SetText replaces the run content with text, keeping the run properties.
// Tabs and line feeds become w:tab and w:br.
func (r *Run) SetText(text string) {
	for _, c := range r.el.ChildElements() {
		if !isW(c, "rPr") {
			r.el.RemoveChild(c)
		}
	}
	var chunk strings.Builder
	flush := func() {
		if chunk.Len() == 0 {
			return
		}
		t := r.el.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(chunk.String())
		chunk.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\t':
			flush()
			r.el.CreateElement("w:tab")
		case '\n':
			flush()
			r.el.CreateElement("w:br")
		case '\r':
		default:
			chunk.WriteRune(ch)
		}
	}
	flush()
}

type Table struct {
	el *etree.Element
}

func (t *Table) Rows() []*Row {
	var rows []*Row
	walkBlocks(t.el, func(el *etree.Element) {
		if isW(el, "tr") {
			rows = append(rows, &Row{el: el, table: t})
		}
	})
	return rows
}

// gridColumns is the column count declared by w:tblGrid, 0 when absent.
func (t *Table) gridColumns() int {
	grid := firstChild(t.el, "tblGrid")
	if grid == nil {
		return 0
	}
	return len(childrenW(grid, "gridCol"))
}

type Row struct {
	el    *etree.Element
	table *Table
}

// Cells validates the row layout against the table grid and returns its cells.
// A span that is not a positive number or a row wider than the grid is an error.
func (r *Row) Cells() ([]*Cell, error) {
	width := 0
	if trPr := firstChild(r.el, "trPr"); trPr != nil {
		for _, tag := range []string{"gridBefore", "gridAfter"} {
			if el := firstChild(trPr, tag); el != nil {
				n, err := spanValue(el)
				if err != nil {
					return nil, err
				}
				width += n
			}
		}
	}
	var cells []*Cell
	for _, tc := range childrenW(r.el, "tc") {
		span := 1
		if tcPr := firstChild(tc, "tcPr"); tcPr != nil {
			if gs := firstChild(tcPr, "gridSpan"); gs != nil {
				n, err := spanValue(gs)
				if err != nil {
					return nil, err
				}
				span = n
			}
		}
		width += span
		cells = append(cells, &Cell{el: tc})
	}
	if cols := r.table.gridColumns(); cols > 0 && width > cols {
		return nil, errors.Wrapf(ErrMalformedRow, "row spans %d columns, grid has %d", width, cols)
	}
	return cells, nil
}

func spanValue(el *etree.Element) (int, error) {
	raw := el.SelectAttrValue("w:val", "")
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 || (n == 0 && el.Tag == "gridSpan") {
		return 0, errors.Wrapf(ErrMalformedRow, "bad %s value '%s'", el.Tag, raw)
	}
	return n, nil
}

type Cell struct {
	el *etree.Element
}

func (c *Cell) Paragraphs() []*Paragraph {
	var list []*Paragraph
	walkBlocks(c.el, func(el *etree.Element) {
		if isW(el, "p") {
			list = append(list, &Paragraph{el: el})
		}
	})
	return list
}

func (c *Cell) Tables() []*Table {
	var list []*Table
	walkBlocks(c.el, func(el *etree.Element) {
		if isW(el, "tbl") {
			list = append(list, &Table{el: el})
		}
	})
	return list
}
