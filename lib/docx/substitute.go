package docx

import (
	"strings"

	"github.com/pkg/errors"
)

// Syntax describes how placeholders are delimited. FirstOnly replaces only the first
// occurrence of each key in a paragraph.
type Syntax struct {
	Name      string
	Open      string
	Close     string
	FirstOnly bool
}

var (
	// AngleBrackets is used by the CV and experience-letter templates: <Name>.
	AngleBrackets = Syntax{Name: "angle", Open: "<", Close: ">"}
	// SquareBrackets is used by the certificate specimens: [companyname].
	SquareBrackets = Syntax{Name: "square", Open: "[", Close: "]", FirstOnly: true}
)

func SyntaxByName(name string) (Syntax, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AngleBrackets.Name:
		return AngleBrackets, nil
	case SquareBrackets.Name:
		return SquareBrackets, nil
	}
	return Syntax{}, errors.Errorf("unknown placeholder style '%s'", name)
}

func (s Syntax) Token(key string) string {
	return s.Open + key + s.Close
}

// Replace substitutes placeholders in a single left-to-right pass, so inserted values are
// never scanned again. Tokens without a value are kept verbatim.
func (s Syntax) Replace(text string, values map[string]string) string {
	if !strings.Contains(text, s.Open) {
		return text
	}
	var b strings.Builder
	used := map[string]bool{}
	rest := text
	for {
		start := strings.Index(rest, s.Open)
		if start < 0 {
			break
		}
		keyFrom := start + len(s.Open)
		end := strings.Index(rest[keyFrom:], s.Close)
		if end < 0 {
			break
		}
		key := rest[keyFrom : keyFrom+end]
		value, ok := values[key]
		if ok && !(s.FirstOnly && used[key]) {
			used[key] = true
			b.WriteString(rest[:start])
			b.WriteString(value)
			rest = rest[keyFrom+end+len(s.Close):]
			continue
		}
		b.WriteString(rest[:keyFrom])
		rest = rest[keyFrom:]
	}
	b.WriteString(rest)
	return b.String()
}

// Report summarizes one substitution pass.
type Report struct {
	ChangedParagraphs int
	SkippedRows       []string
}

// Substitute replaces placeholders in every body paragraph and every table cell.
//
// The text of all runs of a paragraph is joined before matching so a placeholder split
// across runs is still found. A changed paragraph gets the whole new text in its first
// run and the other runs are emptied: formatting changes inside such a paragraph are
// lost. Rows whose layout does not match the table grid are reported and left as is.
func Substitute(doc *Document, values map[string]string, syntax Syntax) Report {
	report := Report{}
	for _, p := range doc.Paragraphs() {
		if substituteParagraph(p, values, syntax) {
			report.ChangedParagraphs++
		}
	}
	for _, t := range doc.Tables() {
		substituteTable(t, values, syntax, &report)
	}
	return report
}

func substituteTable(t *Table, values map[string]string, syntax Syntax, report *Report) {
	for idx, row := range t.Rows() {
		cells, err := row.Cells()
		if err != nil {
			report.SkippedRows = append(report.SkippedRows, errors.Wrapf(err, "table row %d", idx+1).Error())
			continue
		}
		for _, cell := range cells {
			for _, p := range cell.Paragraphs() {
				if substituteParagraph(p, values, syntax) {
					report.ChangedParagraphs++
				}
			}
			for _, nested := range cell.Tables() {
				substituteTable(nested, values, syntax, report)
			}
		}
	}
}

func substituteParagraph(p *Paragraph, values map[string]string, syntax Syntax) bool {
	runs := p.Runs()
	if len(runs) == 0 {
		return false
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text())
	}
	full := b.String()
	updated := syntax.Replace(full, values)
	if updated == full {
		return false
	}
	runs[0].SetText(updated)
	for _, r := range runs[1:] {
		r.SetText("")
	}
	return true
}

// Fill opens a template and substitutes it.
func Fill(path string, values map[string]string, syntax Syntax) (*Document, Report, error) {
	doc, err := Open(path)
	if err != nil {
		return nil, Report{}, err
	}
	return doc, Substitute(doc, values, syntax), nil
}
