package certificate

import (
	"context"
	"html"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hr-docgen-backend/lib/docx"
	recordstore "hr-docgen-backend/lib/record-store"
	"hr-docgen-backend/models"
)

func writeDoc(t *testing.T, path, text string) {
	require.Nil(t, os.MkdirAll(filepath.Dir(path), 0o755))
	doc, err := docx.New(`<w:p><w:r><w:t xml:space="preserve">` + html.EscapeString(text) + `</w:t></w:r></w:p>`)
	require.Nil(t, err)
	require.Nil(t, doc.Save(path))
}

type setup struct {
	specimens, exp1, pool string
}

func newSetup(t *testing.T) setup {
	root := t.TempDir()
	s := setup{
		specimens: filepath.Join(root, "Specimen"),
		exp1:      filepath.Join(root, "Exp1"),
		pool:      filepath.Join(root, "ExpManual.xlsx"),
	}
	writeDoc(t, filepath.Join(s.specimens, "Page 1.docx"), "[companyname] certifies work on [companyproject] at [companyname], [country]")
	writeDoc(t, filepath.Join(s.exp1, "Page (1).docx"), "old")
	writeDoc(t, filepath.Join(s.exp1, "Page (7).docx"), "old")
	writeDoc(t, filepath.Join(s.exp1, "Other.docx"), "old")
	require.Nil(t, recordstore.NewInstance(s.pool).Write(context.Background(), models.Dataset{
		Columns: models.SampleColumns,
		Rows:    []models.Record{(models.ExperienceSample{FileName: "Page (1)", Company: "Acme"}).ToRecord()},
	}))
	return s
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	values := map[string]string{
		FieldTemplate: "Page 1",
		FieldCompany:  "Globex",
		FieldProject:  "CRM",
		FieldCountry:  "India",
	}

	t.Run(`filled specimen becomes the next page and joins the manual pool`, func(t *testing.T) {
		s := newSetup(t)
		res, err := NewInstance(s.specimens, s.exp1, s.pool).Submit(ctx, Request{Values: values})
		require.Nil(t, err)
		require.Equal(t, "Page (8)", res.Name)
		require.Equal(t, []string{"Globex certifies work on CRM at [companyname], India"}, res.Preview)

		doc, err := docx.Open(filepath.Join(s.exp1, "Page (8).docx"))
		require.Nil(t, err)
		require.Equal(t, []string{"Globex certifies work on CRM at [companyname], India"}, doc.Texts())

		pool, err := recordstore.ReadSamples(s.pool)
		require.Nil(t, err)
		require.Len(t, pool, 2)
		require.Equal(t, models.ExperienceSample{FileName: "Page (8)", Company: "Globex", Project: "CRM", Country: "India"}, pool[1])

		again, err := NewInstance(s.specimens, s.exp1, s.pool).Submit(ctx, Request{Template: "Page 1", Values: values})
		require.Nil(t, err)
		require.Equal(t, "Page (9)", again.Name)
	})

	t.Run(`unknown specimen`, func(t *testing.T) {
		s := newSetup(t)
		for _, name := range []string{"Page 2", "../Page 1"} {
			_, err := NewInstance(s.specimens, s.exp1, s.pool).Submit(ctx, Request{Template: name, Values: values})
			require.ErrorIs(t, err, ErrTemplateNotFound)
		}
	})

	t.Run(`missing pool leaves no new page behind`, func(t *testing.T) {
		s := newSetup(t)
		require.Nil(t, os.Remove(s.pool))
		_, err := NewInstance(s.specimens, s.exp1, s.pool).Submit(ctx, Request{Values: values})
		require.ErrorIs(t, err, ErrPoolNotFound)
		_, err = os.Stat(filepath.Join(s.exp1, "Page (8).docx"))
		require.True(t, os.IsNotExist(err))
	})
}
