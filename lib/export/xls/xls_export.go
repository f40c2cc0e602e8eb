package xlsexport

import (
	"bytes"

	"hr-docgen-backend/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportDataset(ds models.Dataset) (*bytes.Buffer, error)
}

var Instance Provider = impl{}

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

const sheet = "Sheet1"

// ExportDataset writes the header row and every record in column order to a single sheet.
func (i impl) ExportDataset(ds models.Dataset) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close workbook")
		}
	}()
	row := 0
	row, err := writeHeader(f, sheet, row, ds.Columns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write xlsx header")
	}
	if len(ds.Rows) != 0 {
		_, err = writeRecords(f, sheet, ds, row)
		if err != nil {
			return nil, errors.Wrap(err, "failed to write xlsx data rows")
		}
	}
	return f.WriteToBuffer()
}

func writeRecords(f *excelize.File, sheet string, ds models.Dataset, row int) (int, error) {
	if len(ds.Columns) == 0 {
		return row, nil
	}
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(ds.Columns), row+len(ds.Rows)); err != nil {
		return row, err
	}
	for _, rec := range ds.Rows {
		row++
		for idx, column := range ds.Columns {
			value, ok := rec[column]
			if !ok || value == "" {
				continue
			}
			if err := writeColumn(f, sheet, idx+1, row, value); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}
