package recordstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	xlsexport "hr-docgen-backend/lib/export/xls"
	"hr-docgen-backend/lib/utils/lock"
	"hr-docgen-backend/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var ErrNotFound = errors.New("dataset file not found")

const lockWait = 10 * time.Second

// Provider reads and writes one tabular workbook. The first sheet holds the data,
// its first row the column names.
type Provider interface {
	Path() string
	Read() (models.Dataset, error)
	Write(ctx context.Context, ds models.Dataset) error
	Append(ctx context.Context, rec models.Record) error
	Clear(ctx context.Context) error
}

type impl struct {
	path string
}

func NewInstance(path string) Provider {
	return &impl{path: path}
}

func (i impl) Path() string {
	return i.path
}

func (i impl) Read() (models.Dataset, error) {
	f, err := excelize.OpenFile(i.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Dataset{}, errors.Wrap(ErrNotFound, i.path)
		}
		return models.Dataset{}, errors.Wrapf(err, "unable to open workbook %s", i.path)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).WithField("path", i.path).Error("failed to close workbook")
		}
	}()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return models.Dataset{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return models.Dataset{}, errors.Wrapf(err, "unable to read sheet %s", sheets[0])
	}
	return toDataset(rows), nil
}

func toDataset(rows [][]string) models.Dataset {
	ds := models.Dataset{}
	if len(rows) == 0 {
		return ds
	}
	header := make([]string, len(rows[0]))
	for idx, name := range rows[0] {
		header[idx] = strings.TrimSpace(name)
	}
	ds.EnsureColumns(header...)
	for _, row := range rows[1:] {
		rec := make(models.Record, len(ds.Columns))
		empty := true
		for idx, name := range header {
			if name == "" {
				continue
			}
			value := ""
			if idx < len(row) {
				value = row[idx]
			}
			if strings.TrimSpace(value) != "" {
				empty = false
			}
			rec[name] = value
		}
		if empty {
			continue
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds
}

func (i impl) Write(ctx context.Context, ds models.Dataset) error {
	return lock.Exclusive(ctx, i.path, lockWait, func() error {
		return i.write(ds)
	})
}

func (i impl) Append(ctx context.Context, rec models.Record) error {
	return lock.Exclusive(ctx, i.path, lockWait, func() error {
		ds, err := i.Read()
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		ds.Append(rec)
		return i.write(ds)
	})
}

func (i impl) Clear(ctx context.Context) error {
	return lock.Exclusive(ctx, i.path, lockWait, func() error {
		ds, err := i.Read()
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return i.write(models.Dataset{Columns: ds.Columns})
	})
}

// write replaces the workbook through a temp file in the same directory.
func (i impl) write(ds models.Dataset) error {
	buf, err := xlsexport.Instance.ExportDataset(ds)
	if err != nil {
		return err
	}
	dir := filepath.Dir(i.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "unable to create directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*.xlsx")
	if err != nil {
		return errors.Wrap(err, "unable to create temp workbook")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err = tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "unable to write workbook")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "unable to write workbook")
	}
	if err = os.Rename(tmpName, i.path); err != nil {
		return errors.Wrapf(err, "unable to replace workbook %s", i.path)
	}
	return nil
}
