package assembler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"hr-docgen-backend/models"
)

var ErrTemplateMissing = errors.New("template not found")

type Slot string

const (
	SlotCV          Slot = "cv"
	SlotExp1        Slot = "exp1"
	SlotExp2        Slot = "exp2"
	SlotCertificate Slot = "ccc"
)

// SlotOrder is the order of documents inside a merged bundle.
var SlotOrder = []Slot{SlotCV, SlotExp1, SlotExp2, SlotCertificate}

// TemplateSet names the folders holding each slot's templates.
type TemplateSet struct {
	CVFolder          string
	Exp1Folder        string
	Exp2Folder        string
	CertificateFolder string
	// CertificateTemplate is used when the ccc column only says yes.
	CertificateTemplate string
}

type slotTemplate struct {
	slot Slot
	path string
}

// FindTemplate looks name up in folder ignoring case; ".docx" is appended when name has
// no extension.
func FindTemplate(folder, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.Wrap(ErrTemplateMissing, "empty template name")
	}
	if filepath.Base(name) != name {
		return "", errors.Wrapf(ErrTemplateMissing, "'%s' is not a plain file name", name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".docx") {
		name += ".docx"
	}
	items, err := os.ReadDir(folder)
	if err != nil {
		return "", errors.Wrapf(ErrTemplateMissing, "folder %s: %v", folder, err)
	}
	for _, item := range items {
		if item.Type().IsRegular() && strings.EqualFold(item.Name(), name) {
			return filepath.Join(folder, item.Name()), nil
		}
	}
	return "", errors.Wrapf(ErrTemplateMissing, "%s in %s", name, folder)
}

func isAffirmative(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func isNegative(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "no", "n", "false", "0", "-":
		return true
	}
	return false
}

// resolve maps the record's slot columns to template files. Missing cv/exp1/exp2 templates
// produce warnings; the certificate slot is optional and only warns when it was asked for.
func (s TemplateSet) resolve(rec models.Record) ([]slotTemplate, []string) {
	var found []slotTemplate
	var warnings []string
	for _, slot := range []struct {
		slot   Slot
		field  string
		folder string
	}{
		{SlotCV, models.FieldCV, s.CVFolder},
		{SlotExp1, models.FieldExp1File, s.Exp1Folder},
		{SlotExp2, models.FieldExp2File, s.Exp2Folder},
	} {
		value := rec.Get(slot.field)
		if value == "" {
			warnings = append(warnings, string(slot.slot)+" template not set")
			continue
		}
		path, err := FindTemplate(slot.folder, value)
		if err != nil {
			warnings = append(warnings, errors.Wrapf(err, "%s", slot.slot).Error())
			continue
		}
		found = append(found, slotTemplate{slot: slot.slot, path: path})
	}

	value := rec.Get(models.FieldCertificate)
	switch {
	case value == "", isNegative(value):
	case isAffirmative(value):
		if _, err := os.Stat(s.CertificateTemplate); err != nil {
			warnings = append(warnings, errors.Wrapf(ErrTemplateMissing, "ccc: %s", s.CertificateTemplate).Error())
			break
		}
		found = append(found, slotTemplate{slot: SlotCertificate, path: s.CertificateTemplate})
	default:
		path, err := FindTemplate(s.CertificateFolder, value)
		if err != nil {
			warnings = append(warnings, errors.Wrap(err, "ccc").Error())
			break
		}
		found = append(found, slotTemplate{slot: SlotCertificate, path: path})
	}
	return found, warnings
}
