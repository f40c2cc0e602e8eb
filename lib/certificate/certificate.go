package certificate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"hr-docgen-backend/lib/docx"
	recordstore "hr-docgen-backend/lib/record-store"
	"hr-docgen-backend/models"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrPoolNotFound     = errors.New("manual experience pool not found")
)

const (
	DefaultTemplate = "Page 1"

	FieldTemplate = "template"
	FieldCompany  = "companyname"
	FieldProject  = "companyproject"
	FieldCountry  = "country"
)

var pageFileName = regexp.MustCompile(`^Page \((\d+)\)\.docx$`)

type Request struct {
	Template string
	// Values fill the [key] placeholders of the specimen.
	Values map[string]string
}

type Result struct {
	Name   string                  `json:"name"`
	Path   string                  `json:"path"`
	Sample models.ExperienceSample `json:"sample"`
	// Preview is the filled text, one entry per paragraph.
	Preview []string `json:"preview"`
}

// Provider turns a filled specimen into a new experience letter template and registers it
// in the manual experience pool.
type Provider interface {
	Submit(ctx context.Context, req Request) (Result, error)
}

var Instance Provider

func NewHandler(specimenDir, exp1Folder, manualPool string) {
	Instance = NewInstance(specimenDir, exp1Folder, manualPool)
}

func NewInstance(specimenDir, exp1Folder, manualPool string) Provider {
	return &impl{specimenDir: specimenDir, exp1Folder: exp1Folder, manualPool: manualPool}
}

type impl struct {
	specimenDir string
	exp1Folder  string
	manualPool  string
}

func (i impl) Submit(ctx context.Context, req Request) (Result, error) {
	name := strings.TrimSpace(req.Template)
	if name == "" {
		name = DefaultTemplate
	}
	if filepath.Base(name) != name {
		return Result{}, errors.Wrapf(ErrTemplateNotFound, "'%s'", name)
	}
	specimen := filepath.Join(i.specimenDir, name+".docx")
	if _, err := os.Stat(specimen); err != nil {
		return Result{}, errors.Wrapf(ErrTemplateNotFound, "'%s'", name)
	}
	if _, err := os.Stat(i.manualPool); err != nil {
		return Result{}, ErrPoolNotFound
	}

	doc, report, err := docx.Fill(specimen, req.Values, docx.SquareBrackets)
	if err != nil {
		return Result{}, err
	}
	logger := log.WithFields(log.Fields{"template": name, "changed_paragraphs": report.ChangedParagraphs})
	for _, skipped := range report.SkippedRows {
		logger.Warnf("skipped %s", skipped)
	}

	if err := os.MkdirAll(i.exp1Folder, 0o755); err != nil {
		return Result{}, errors.Wrap(err, "unable to create experience template folder")
	}
	page, path, err := i.reservePage()
	if err != nil {
		return Result{}, err
	}
	if err = doc.Save(path); err != nil {
		os.Remove(path)
		return Result{}, errors.Wrapf(err, "unable to save %s", filepath.Base(path))
	}

	sample := models.ExperienceSample{
		FileName: page,
		Company:  strings.TrimSpace(req.Values[FieldCompany]),
		Project:  strings.TrimSpace(req.Values[FieldProject]),
		Country:  strings.TrimSpace(req.Values[FieldCountry]),
	}
	if err = recordstore.AppendSample(ctx, i.manualPool, sample); err != nil {
		return Result{}, errors.Wrap(err, "certificate saved but pool not updated")
	}
	logger.WithField("file", page).Info("certificate registered")
	return Result{Name: page, Path: path, Sample: sample, Preview: doc.Texts()}, nil
}

// reservePage creates the next free "Page (N).docx", N being one more than the highest
// existing number.
func (i impl) reservePage() (string, string, error) {
	items, err := os.ReadDir(i.exp1Folder)
	if err != nil {
		return "", "", errors.Wrap(err, "unable to list experience templates")
	}
	next := 1
	for _, item := range items {
		m := pageFileName.FindStringSubmatch(item.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n >= next {
			next = n + 1
		}
	}
	for ; ; next++ {
		page := fmt.Sprintf("Page (%d)", next)
		path := filepath.Join(i.exp1Folder, page+".docx")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return page, path, f.Close()
		}
		if !os.IsExist(err) {
			return "", "", errors.Wrap(err, "unable to reserve certificate name")
		}
	}
}
