package pdfexport

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrConverterUnavailable = errors.New("pdf converter is not available")

// Converter turns a .docx file into a .pdf placed in outDir and returns the pdf path.
type Converter interface {
	Available() bool
	ToPDF(ctx context.Context, docxPath, outDir string) (string, error)
}

var candidateBinaries = []string{"soffice", "libreoffice"}

// NewLibreOffice returns a converter driving a headless LibreOffice. An empty binary
// is looked up on PATH; when nothing is found the converter reports itself unavailable.
func NewLibreOffice(binary string, timeout time.Duration) Converter {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &libreOffice{binary: lookupBinary(binary), timeout: timeout}
}

type libreOffice struct {
	binary  string
	timeout time.Duration
}

func lookupBinary(binary string) string {
	if binary != "" {
		path, err := exec.LookPath(binary)
		if err != nil {
			log.WithError(err).Warnf("pdf converter '%s' not found", binary)
			return ""
		}
		return path
	}
	for _, name := range candidateBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	log.Warn("LibreOffice not found on PATH, pdf conversion disabled")
	return ""
}

func (l *libreOffice) Available() bool {
	return l.binary != ""
}

func (l *libreOffice) ToPDF(ctx context.Context, docxPath, outDir string) (string, error) {
	if !l.Available() {
		return "", ErrConverterUnavailable
	}
	// a private profile lets several conversions run side by side
	profile, err := os.MkdirTemp("", "lo-profile-")
	if err != nil {
		return "", errors.Wrap(err, "unable to create converter profile")
	}
	defer os.RemoveAll(profile)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, l.binary,
		"-env:UserInstallation=file://"+filepath.ToSlash(profile),
		"--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", errors.Errorf("conversion of %s timed out after %s", filepath.Base(docxPath), l.timeout)
	}
	if err != nil {
		return "", errors.Wrapf(err, "conversion of %s failed: %s", filepath.Base(docxPath), strings.TrimSpace(string(out)))
	}
	pdfPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", errors.Errorf("converter produced no pdf for %s", filepath.Base(docxPath))
	}
	return pdfPath, nil
}
