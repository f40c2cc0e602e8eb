package archive

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// Entry is one file of an archive.
type Entry struct {
	Name string
	Body []byte
}

// Write streams entries into a zip archive. Entry names are flattened to their base name.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     filepath.Base(e.Name),
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return errors.Wrapf(err, "unable to add %s to archive", e.Name)
		}
		if _, err = fw.Write(e.Body); err != nil {
			return errors.Wrapf(err, "unable to write %s to archive", e.Name)
		}
	}
	return errors.Wrap(zw.Close(), "unable to finish archive")
}

// WriteDir archives every regular file directly under dir.
func WriteDir(w io.Writer, dir string) (int, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return 0, errors.Wrap(err, "unable to list output directory")
	}
	var entries []Entry
	for _, item := range items {
		if !item.Type().IsRegular() {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, item.Name()))
		if err != nil {
			return 0, errors.Wrapf(err, "unable to read %s", item.Name())
		}
		entries = append(entries, Entry{Name: item.Name(), Body: body})
	}
	return len(entries), Write(w, entries)
}
