package docx

import (
	"html"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func para(runs ...string) string {
	out := "<w:p>"
	for _, r := range runs {
		out += `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + html.EscapeString(r) + `</w:t></w:r>`
	}
	return out + "</w:p>"
}

func TestReplace(t *testing.T) {
	values := map[string]string{"Name": "Asha", "total": "3Y4M", "Exp1 Company": "Acme"}

	t.Run(`angle brackets replace every occurrence`, func(t *testing.T) {
		got := AngleBrackets.Replace("Dear <Name>, total experience <total>. Bye <Name>", values)
		require.Equal(t, "Dear Asha, total experience 3Y4M. Bye Asha", got)
	})

	t.Run(`keys with spaces and unknown tokens`, func(t *testing.T) {
		got := AngleBrackets.Replace("<Exp1 Company> / <Unknown> / <<Name>> / <Name", values)
		require.Equal(t, "Acme / <Unknown> / <Asha> / <Name", got)
	})

	t.Run(`inserted values are not scanned again`, func(t *testing.T) {
		got := AngleBrackets.Replace("<a><b>", map[string]string{"a": "<b>", "b": "x"})
		require.Equal(t, "<b>x", got)
	})

	t.Run(`square brackets replace the first occurrence only`, func(t *testing.T) {
		got := SquareBrackets.Replace("[companyname] and [companyname] in [country]", map[string]string{"companyname": "Acme", "country": "IN"})
		require.Equal(t, "Acme and [companyname] in IN", got)
	})

	t.Run(`syntax by name`, func(t *testing.T) {
		s, err := SyntaxByName("square")
		require.Nil(t, err)
		require.Equal(t, "[x]", s.Token("x"))
		s, err = SyntaxByName("")
		require.Nil(t, err)
		require.Equal(t, AngleBrackets, s)
		_, err = SyntaxByName("curly")
		require.NotNil(t, err)
	})
}

func TestSubstitute(t *testing.T) {
	values := map[string]string{"Name": "Asha", "total": "3Y4M", "Empty": ""}

	t.Run(`name and total fill a greeting`, func(t *testing.T) {
		doc, err := New(para("Dear <Name>, total experience <total>"))
		require.Nil(t, err)
		report := Substitute(doc, values, AngleBrackets)
		require.Equal(t, 1, report.ChangedParagraphs)
		require.Equal(t, []string{"Dear Asha, total experience 3Y4M"}, doc.Texts())
	})

	t.Run(`placeholder split across runs goes to the first run`, func(t *testing.T) {
		doc, err := New(para("Hello <Na", "me>", "!"))
		require.Nil(t, err)
		Substitute(doc, values, AngleBrackets)
		p := doc.Paragraphs()[0]
		runs := p.Runs()
		require.Len(t, runs, 3)
		require.Equal(t, "Hello Asha!", runs[0].Text())
		require.Equal(t, "", runs[1].Text())
		require.Equal(t, "", runs[2].Text())
		require.NotNil(t, firstChild(runs[0].el, "rPr"))
	})

	t.Run(`untouched paragraphs keep their runs`, func(t *testing.T) {
		doc, err := New(para("no ", "placeholders"))
		require.Nil(t, err)
		report := Substitute(doc, values, AngleBrackets)
		require.Equal(t, 0, report.ChangedParagraphs)
		require.Equal(t, "no ", doc.Paragraphs()[0].Runs()[0].Text())
	})

	t.Run(`unresolved placeholders stay verbatim and empty values clear`, func(t *testing.T) {
		doc, err := New(para("<Missing>|<Empty>|<Name>"))
		require.Nil(t, err)
		Substitute(doc, values, AngleBrackets)
		require.Equal(t, []string{"<Missing>||Asha"}, doc.Texts())
	})

	t.Run(`tables, nested tables and hyperlinks are walked`, func(t *testing.T) {
		body := `<w:tbl><w:tblGrid><w:gridCol/><w:gridCol/></w:tblGrid>` +
			`<w:tr><w:tc>` + para("<Name>") + `</w:tc><w:tc>` +
			`<w:tbl><w:tr><w:tc>` + para("<total>") + `</w:tc></w:tr></w:tbl>` + para("") +
			`</w:tc></w:tr></w:tbl>` +
			`<w:p><w:hyperlink><w:r><w:t>link &lt;Name&gt;</w:t></w:r></w:hyperlink></w:p>`
		doc, err := New(body)
		require.Nil(t, err)
		report := Substitute(doc, values, AngleBrackets)
		require.Equal(t, 3, report.ChangedParagraphs)
		require.Empty(t, report.SkippedRows)
		require.Equal(t, []string{"Asha", "3Y4M", "", "link Asha"}, doc.Texts())
	})

	t.Run(`rows inside content controls are substituted`, func(t *testing.T) {
		body := `<w:tbl><w:tblGrid><w:gridCol/></w:tblGrid>` +
			`<w:sdt><w:sdtContent><w:tr><w:tc>` + para("<Name>") + `</w:tc></w:tr></w:sdtContent></w:sdt>` +
			`<w:tr><w:tc>` + para("<total>") + `</w:tc></w:tr></w:tbl>`
		doc, err := New(body)
		require.Nil(t, err)
		report := Substitute(doc, values, AngleBrackets)
		require.Equal(t, 2, report.ChangedParagraphs)
		require.Equal(t, []string{"Asha", "3Y4M"}, doc.Texts())
	})

	t.Run(`malformed merged row is skipped, others processed`, func(t *testing.T) {
		body := `<w:tbl><w:tblGrid><w:gridCol/><w:gridCol/></w:tblGrid>` +
			`<w:tr><w:tc><w:tcPr><w:gridSpan w:val="3"/></w:tcPr>` + para("<Name>") + `</w:tc></w:tr>` +
			`<w:tr><w:tc><w:tcPr><w:gridSpan w:val="x"/></w:tcPr>` + para("<Name>") + `</w:tc></w:tr>` +
			`<w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr>` + para("<Name>") + `</w:tc></w:tr>` +
			`</w:tbl>`
		doc, err := New(body)
		require.Nil(t, err)
		report := Substitute(doc, values, AngleBrackets)
		require.Len(t, report.SkippedRows, 2)
		require.Contains(t, report.SkippedRows[0], "table row 1")
		require.Equal(t, []string{"<Name>", "<Name>", "Asha"}, doc.Texts())
	})

	t.Run(`second pass is a no-op`, func(t *testing.T) {
		doc, err := New(para("Dear <Name>, ", "<total>") + para("<Unknown>"))
		require.Nil(t, err)
		Substitute(doc, values, AngleBrackets)
		first := doc.Texts()
		report := Substitute(doc, values, AngleBrackets)
		require.Equal(t, 0, report.ChangedParagraphs)
		require.Equal(t, first, doc.Texts())
	})

	t.Run(`tabs and line breaks survive the rewrite`, func(t *testing.T) {
		doc, err := New(`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>&lt;Name&gt;</w:t><w:br/><w:t>b</w:t></w:r></w:p>`)
		require.Nil(t, err)
		Substitute(doc, values, AngleBrackets)
		require.Equal(t, []string{"a\tAsha\nb"}, doc.Texts())
		run := doc.Paragraphs()[0].Runs()[0]
		require.Len(t, childrenW(run.el, "tab"), 1)
		require.Len(t, childrenW(run.el, "br"), 1)
	})

	t.Run(`saved package reopens with the substituted text`, func(t *testing.T) {
		doc, err := New(para("<Name> & co"))
		require.Nil(t, err)
		Substitute(doc, values, AngleBrackets)
		path := filepath.Join(t.TempDir(), "out.docx")
		require.Nil(t, doc.Save(path))

		reopened, err := Open(path)
		require.Nil(t, err)
		require.Equal(t, []string{"Asha & co"}, reopened.Texts())
	})

	t.Run(`bracket syntax`, func(t *testing.T) {
		doc, err := New(para("[companyname] ", "[companyname]"))
		require.Nil(t, err)
		Substitute(doc, map[string]string{"companyname": "Acme"}, SquareBrackets)
		require.Equal(t, []string{"Acme [companyname]"}, doc.Texts())
	})
}

func TestMerge(t *testing.T) {
	t.Run(`bodies are concatenated in order with one section`, func(t *testing.T) {
		cv, err := New(para("CV"))
		require.Nil(t, err)
		exp1, err := New(para("Letter 1") + para("Letter 1b"))
		require.Nil(t, err)
		exp2, err := New(para("Letter 2"))
		require.Nil(t, err)

		merged, err := Merge([]*Document{cv, exp1, exp2})
		require.Nil(t, err)
		require.Equal(t, []string{"CV", "Letter 1", "Letter 1b", "Letter 2"}, merged.Texts())
		require.Len(t, childrenW(merged.body(), "sectPr"), 1)
		require.Equal(t, []string{"CV"}, cv.Texts())

		body, err := merged.Bytes()
		require.Nil(t, err)
		again, err := Read(body)
		require.Nil(t, err)
		require.Equal(t, merged.Texts(), again.Texts())
	})

	t.Run(`nothing to merge`, func(t *testing.T) {
		_, err := Merge(nil)
		require.NotNil(t, err)
	})

	t.Run(`not a docx`, func(t *testing.T) {
		_, err := Read([]byte("plain text"))
		require.NotNil(t, err)
	})
}
