package models

import (
	"sort"
	"strings"
)

// Column names shared by the synthesizer, the assembler and the templates.
const (
	FieldName        = "Name"
	FieldDOB         = "dob"
	FieldCV          = "cv"
	FieldExp1File    = "exp1"
	FieldExp2File    = "exp2"
	FieldCertificate = "ccc"
	FieldExp1Company = "Exp1 Company"
	FieldExp1Project = "Exp1 Project"
	FieldExp1From    = "From"
	FieldExp1To      = "To"
	FieldExp2Company = "Exp2 Company"
	FieldExp2Project = "Exp2 Project"
	FieldExp2From    = "From2"
	FieldExp2To      = "To2"
	FieldTotal       = "total"
)

// SynthesizedFields are the columns the experience synthesizer may write.
var SynthesizedFields = []string{
	FieldExp1Company, FieldExp1Project, FieldExp1From, FieldExp1To,
	FieldExp2Company, FieldExp2Project, FieldExp2From, FieldExp2To,
	FieldExp1File, FieldExp2File,
}

// Record is one candidate row keyed by column name. Unknown columns pass through untouched.
type Record map[string]string

func (r Record) Get(key string) string {
	return strings.TrimSpace(r[key])
}

func (r Record) Has(key string) bool {
	return r.Get(key) != ""
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CandidateName returns the Name column, falling back to any case variant of it.
func (r Record) CandidateName() string {
	if v := r.Get(FieldName); v != "" {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(k, FieldName) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Dataset is an ordered table of records with a stable column order.
type Dataset struct {
	Columns []string
	Rows    []Record
}

// EnsureColumns appends the missing columns to the header, keeping the existing order.
func (d *Dataset) EnsureColumns(columns ...string) {
	known := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		known[c] = true
	}
	for _, c := range columns {
		if c == "" || known[c] {
			continue
		}
		known[c] = true
		d.Columns = append(d.Columns, c)
	}
}

func (d *Dataset) Append(rec Record) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d.EnsureColumns(keys...)
	d.Rows = append(d.Rows, rec)
}

func (d *Dataset) Len() int {
	return len(d.Rows)
}

// ExperienceSample is one row of the auto or manual experience pool.
type ExperienceSample struct {
	FileName    string `json:"file_name"`
	Country     string `json:"country"`
	CompanyType string `json:"company_type"`
	Company     string `json:"company"`
	Project     string `json:"project"`
}

// Experience pool column headers.
const (
	SampleFileName    = "File Name"
	SampleCountry     = "Country"
	SampleCompanyType = "Company Type"
	SampleCompany     = "Company"
	SampleProject     = "Project"
)

var SampleColumns = []string{SampleFileName, SampleCompany, SampleProject, SampleCountry, SampleCompanyType}

func SampleFromRecord(rec Record) ExperienceSample {
	return ExperienceSample{
		FileName:    rec.Get(SampleFileName),
		Country:     rec.Get(SampleCountry),
		CompanyType: rec.Get(SampleCompanyType),
		Company:     rec.Get(SampleCompany),
		Project:     rec.Get(SampleProject),
	}
}

func (s ExperienceSample) ToRecord() Record {
	return Record{
		SampleFileName:    s.FileName,
		SampleCountry:     s.Country,
		SampleCompanyType: s.CompanyType,
		SampleCompany:     s.Company,
		SampleProject:     s.Project,
	}
}
