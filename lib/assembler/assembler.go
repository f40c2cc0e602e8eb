package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hr-docgen-backend/lib/docx"
	pdfexport "hr-docgen-backend/lib/export/pdf"
	"hr-docgen-backend/lib/metrics"
	"hr-docgen-backend/models"
)

type Mode string

const (
	ModeMerge      Mode = "merge"
	ModeIndividual Mode = "individual"
)

func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeMerge:
		return ModeMerge, nil
	case ModeIndividual:
		return ModeIndividual, nil
	}
	return "", errors.Errorf("unknown generation mode '%s'", value)
}

var ErrEmptyBundle = errors.New("no template could be filled")

// WorkspacePrefix names the private per-candidate directories under Options.TempDir.
const WorkspacePrefix = "candidate-"

type Options struct {
	Mode      Mode
	PDF       bool
	Syntax    docx.Syntax
	OutputDir string
	TempDir   string
	Workers   int // parallel conversions per candidate
}

// Bundle lists what was written for one candidate.
type Bundle struct {
	Name     string
	Slots    []Slot
	Files    []string
	PDF      string
	Warnings []string
}

type Provider interface {
	// Assemble fills the record's templates and writes the candidate's output files.
	// row is the 1-based dataset row, used for unnamed candidates.
	Assemble(ctx context.Context, rec models.Record, row int) (Bundle, error)
}

func NewInstance(templates TemplateSet, opts Options, converter pdfexport.Converter) Provider {
	if opts.Mode == "" {
		opts.Mode = ModeMerge
	}
	if opts.Syntax.Open == "" {
		opts.Syntax = docx.AngleBrackets
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &impl{templates: templates, opts: opts, converter: converter}
}

type impl struct {
	templates TemplateSet
	opts      Options
	converter pdfexport.Converter
}

type filledDoc struct {
	slot Slot
	doc  *docx.Document
}

// Replacements is the substitution map for a record: every column plus total.
func Replacements(rec models.Record) map[string]string {
	values := make(map[string]string, len(rec)+1)
	for k, v := range rec {
		values[k] = v
	}
	values[models.FieldTotal] = TotalExperience(rec)
	return values
}

func (i *impl) Assemble(ctx context.Context, rec models.Record, row int) (Bundle, error) {
	started := time.Now()
	defer func() {
		metrics.RowDuration.Observe(time.Since(started).Seconds())
	}()

	bundle := Bundle{Name: BaseName(rec.CandidateName(), row)}
	logger := log.WithFields(log.Fields{"row": row, "candidate": bundle.Name})
	templates, warnings := i.templates.resolve(rec)
	bundle.Warnings = warnings

	values := Replacements(rec)
	var filled []filledDoc
	for _, tpl := range templates {
		doc, report, err := docx.Fill(tpl.path, values, i.opts.Syntax)
		if err != nil {
			logger.WithError(err).Warnf("unable to fill %s template", tpl.slot)
			bundle.Warnings = append(bundle.Warnings, errors.Wrapf(err, "%s", tpl.slot).Error())
			continue
		}
		for _, skipped := range report.SkippedRows {
			bundle.Warnings = append(bundle.Warnings, fmt.Sprintf("%s: skipped %s", tpl.slot, skipped))
		}
		filled = append(filled, filledDoc{slot: tpl.slot, doc: doc})
		bundle.Slots = append(bundle.Slots, tpl.slot)
	}
	if len(filled) == 0 {
		return bundle, ErrEmptyBundle
	}

	if err := os.MkdirAll(i.opts.OutputDir, 0o755); err != nil {
		return bundle, errors.Wrap(err, "unable to create output directory")
	}
	if err := os.MkdirAll(i.opts.TempDir, 0o755); err != nil {
		return bundle, errors.Wrap(err, "unable to create temp directory")
	}
	workDir, err := os.MkdirTemp(i.opts.TempDir, WorkspacePrefix)
	if err != nil {
		return bundle, errors.Wrap(err, "unable to create candidate workspace")
	}
	defer os.RemoveAll(workDir)

	pdfPath := ""
	if i.opts.Mode == ModeIndividual {
		for _, f := range filled {
			path, err := i.save(f.doc, bundle.Name+"_"+string(f.slot))
			if err != nil {
				return bundle, err
			}
			bundle.Files = append(bundle.Files, path)
		}
	} else {
		docs := make([]*docx.Document, 0, len(filled))
		for _, f := range filled {
			docs = append(docs, f.doc)
		}
		merged, err := docx.Merge(docs)
		if err != nil {
			return bundle, err
		}
		exts := []string{".docx"}
		if i.opts.PDF && i.converter != nil && i.converter.Available() {
			exts = append(exts, ".pdf")
		}
		paths, err := ReserveNames(i.opts.OutputDir, bundle.Name, exts...)
		if err != nil {
			return bundle, err
		}
		if err = i.write(merged, paths[0]); err != nil {
			for _, path := range paths[1:] {
				os.Remove(path)
			}
			return bundle, err
		}
		bundle.Files = append(bundle.Files, paths[0])
		if len(paths) > 1 {
			pdfPath = paths[1]
		}
	}

	if i.opts.PDF {
		i.convert(ctx, &bundle, filled, workDir, pdfPath)
	}
	logger.WithField("files", bundle.Files).Info("candidate documents written")
	return bundle, nil
}

func (i *impl) save(doc *docx.Document, base string) (string, error) {
	path, err := ReserveName(i.opts.OutputDir, base, ".docx")
	if err != nil {
		return "", err
	}
	return path, i.write(doc, path)
}

// write fills a reserved path, removing it when the save fails.
func (i *impl) write(doc *docx.Document, path string) error {
	if err := doc.Save(path); err != nil {
		os.Remove(path)
		return errors.Wrapf(err, "unable to save %s", filepath.Base(path))
	}
	return nil
}

// convert turns every filled document into a pdf and merges them, in slot order, into
// pdfPath, or a newly reserved <name>.pdf when pdfPath is empty. An unused pdfPath is
// removed. Conversion problems only produce warnings.
func (i *impl) convert(ctx context.Context, bundle *Bundle, filled []filledDoc, workDir, pdfPath string) {
	defer func() {
		if bundle.PDF == "" && pdfPath != "" {
			os.Remove(pdfPath)
		}
	}()
	if i.converter == nil || !i.converter.Available() {
		metrics.Conversions.WithLabelValues("unavailable").Inc()
		bundle.Warnings = append(bundle.Warnings, "PDF conversion skipped: converter not available")
		return
	}

	pdfs := make([]string, len(filled))
	failures := make([]error, len(filled))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(i.opts.Workers)
	for idx, f := range filled {
		docxPath := filepath.Join(workDir, fmt.Sprintf("%02d_%s.docx", idx+1, f.slot))
		if err := f.doc.Save(docxPath); err != nil {
			failures[idx] = err
			continue
		}
		g.Go(func() error {
			out, err := i.converter.ToPDF(gCtx, docxPath, workDir)
			if err != nil {
				failures[idx] = err
				return nil
			}
			pdfs[idx] = out
			return nil
		})
	}
	_ = g.Wait()

	var ready []string
	for idx, f := range filled {
		if failures[idx] != nil {
			metrics.Conversions.WithLabelValues("failed").Inc()
			bundle.Warnings = append(bundle.Warnings, errors.Wrapf(failures[idx], "PDF conversion of %s failed", f.slot).Error())
			continue
		}
		metrics.Conversions.WithLabelValues("ok").Inc()
		ready = append(ready, pdfs[idx])
	}
	if len(ready) == 0 {
		bundle.Warnings = append(bundle.Warnings, "PDF conversion skipped: no document converted")
		return
	}

	if pdfPath == "" {
		path, err := ReserveName(i.opts.OutputDir, bundle.Name, ".pdf")
		if err != nil {
			bundle.Warnings = append(bundle.Warnings, err.Error())
			return
		}
		pdfPath = path
	}
	if err := pdfexport.MergeFiles(ready, pdfPath); err != nil {
		bundle.Warnings = append(bundle.Warnings, errors.Wrap(err, "PDF merge failed").Error())
		return
	}
	pages, err := pdfexport.PageCount(pdfPath)
	if err != nil {
		log.WithError(err).WithField("pdf", pdfPath).Warn("unable to count merged pdf pages")
	}
	log.WithFields(log.Fields{"pdf": pdfPath, "pages": pages, "documents": len(ready)}).Info("candidate pdf merged")
	bundle.PDF = pdfPath
	bundle.Files = append(bundle.Files, pdfPath)
}
