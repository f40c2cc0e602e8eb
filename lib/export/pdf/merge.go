package pdfexport

import (
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"github.com/pkg/errors"
)

const pageBox = "/MediaBox"

// MergeFiles writes the pages of every input pdf, in order, into one pdf at outPath.
// Each page keeps its own size.
func MergeFiles(inputs []string, outPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("MergeFiles panic recover: %v", r)
		}
	}()
	if len(inputs) == 0 {
		return errors.New("no pdf files to merge")
	}
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			return errors.Wrap(err, "merge input missing")
		}
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	imp := gofpdi.NewImporter()
	for _, in := range inputs {
		first := imp.ImportPage(pdf, in, 1, pageBox)
		sizes := imp.GetPageSizes()
		for page := 1; page <= len(sizes); page++ {
			tpl := first
			if page > 1 {
				tpl = imp.ImportPage(pdf, in, page, pageBox)
			}
			w, h := pageSize(sizes[page])
			orientation := "P"
			if w > h {
				orientation = "L"
			}
			pdf.AddPageFormat(orientation, fpdf.SizeType{Wd: w, Ht: h})
			imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
		}
		if pdf.Error() != nil {
			return errors.Wrapf(pdf.Error(), "unable to import %s", in)
		}
	}
	return pdf.OutputFileAndClose(outPath)
}

// PageCount returns the number of pages of a pdf file.
func PageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("PageCount panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "pt", "A4", "")
	imp := gofpdi.NewImporter()
	imp.ImportPage(pdf, path, 1, pageBox)
	return len(imp.GetPageSizes()), nil
}

func pageSize(boxes map[string]map[string]float64) (float64, float64) {
	box, ok := boxes[pageBox]
	if !ok || box["w"] <= 0 || box["h"] <= 0 {
		return 595.28, 841.89
	}
	return box["w"], box["h"]
}
