package archive

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func readZip(t *testing.T, body []byte) map[string]string {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.Nil(t, err)
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.Nil(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.Nil(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func TestWrite(t *testing.T) {
	t.Run(`entries are stored under their base names`, func(t *testing.T) {
		buf := new(bytes.Buffer)
		err := Write(buf, []Entry{
			{Name: "Asha.docx", Body: []byte("one")},
			{Name: "../nested/Ravi_cv.docx", Body: []byte("two")},
		})
		require.Nil(t, err)
		require.Equal(t, map[string]string{"Asha.docx": "one", "Ravi_cv.docx": "two"}, readZip(t, buf.Bytes()))
	})

	t.Run(`directory archive skips sub directories`, func(t *testing.T) {
		dir := t.TempDir()
		require.Nil(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("pdf"), 0o644))
		require.Nil(t, os.WriteFile(filepath.Join(dir, "b.docx"), []byte("docx"), 0o644))
		require.Nil(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

		buf := new(bytes.Buffer)
		n, err := WriteDir(buf, dir)
		require.Nil(t, err)
		require.Equal(t, 2, n)
		require.Equal(t, map[string]string{"a.pdf": "pdf", "b.docx": "docx"}, readZip(t, buf.Bytes()))
	})

	t.Run(`missing directory`, func(t *testing.T) {
		_, err := WriteDir(new(bytes.Buffer), filepath.Join(t.TempDir(), "absent"))
		require.NotNil(t, err)
	})
}
