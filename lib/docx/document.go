package docx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

const documentPart = "word/document.xml"

var ErrNoDocumentPart = errors.New("package has no word/document.xml")

type packageFile struct {
	name string
	body []byte
}

// Document is a .docx package whose main part is held as an editable markup tree.
// Every other part is carried through unchanged.
type Document struct {
	files []packageFile
	tree  *etree.Document
}

func Open(path string) (*Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", filepath.Base(path))
	}
	doc, err := Read(body)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse %s", filepath.Base(path))
	}
	return doc, nil
}

func Read(body []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, errors.Wrap(err, "not a docx package")
	}
	doc := &Document{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open part %s", f.Name)
		}
		partBody, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read part %s", f.Name)
		}
		if f.Name == documentPart {
			tree := etree.NewDocument()
			if err := tree.ReadFromBytes(partBody); err != nil {
				return nil, errors.Wrap(err, "malformed document.xml")
			}
			doc.tree = tree
		}
		doc.files = append(doc.files, packageFile{name: f.Name, body: partBody})
	}
	if doc.tree == nil || doc.body() == nil {
		return nil, ErrNoDocumentPart
	}
	return doc, nil
}

// Bytes serializes the package, writing the current markup tree as the main part.
func (d *Document) Bytes() ([]byte, error) {
	main, err := d.tree.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, "unable to serialize document.xml")
	}
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, f := range d.files {
		body := f.body
		if f.name == documentPart {
			body = main
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Deflate})
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add part %s", f.name)
		}
		if _, err = w.Write(body); err != nil {
			return nil, errors.Wrapf(err, "unable to write part %s", f.name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "unable to finish docx package")
	}
	return buf.Bytes(), nil
}

func (d *Document) Save(path string) error {
	body, err := d.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

func (d *Document) Clone() *Document {
	files := make([]packageFile, len(d.files))
	copy(files, d.files)
	return &Document{files: files, tree: d.tree.Copy()}
}

func (d *Document) body() *etree.Element {
	root := d.tree.Root()
	if root == nil {
		return nil
	}
	return firstChild(root, "body")
}

// Paragraphs returns the body-level paragraphs, including those wrapped in content controls.
func (d *Document) Paragraphs() []*Paragraph {
	var list []*Paragraph
	walkBlocks(d.body(), func(el *etree.Element) {
		if isW(el, "p") {
			list = append(list, &Paragraph{el: el})
		}
	})
	return list
}

// Tables returns the body-level tables.
func (d *Document) Tables() []*Table {
	var list []*Table
	walkBlocks(d.body(), func(el *etree.Element) {
		if isW(el, "tbl") {
			list = append(list, &Table{el: el})
		}
	})
	return list
}

// Texts lists the text of every paragraph in document order, table cells included.
func (d *Document) Texts() []string {
	var out []string
	var visit func(parent *etree.Element)
	visit = func(parent *etree.Element) {
		walkBlocks(parent, func(el *etree.Element) {
			switch {
			case isW(el, "p"):
				out = append(out, (&Paragraph{el: el}).Text())
			case isW(el, "tbl"):
				for _, row := range (&Table{el: el}).Rows() {
					for _, tc := range childrenW(row.el, "tc") {
						visit(tc)
					}
				}
			}
		})
	}
	visit(d.body())
	return out
}

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`
	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
	documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s<w:sectPr/></w:body></w:document>`
)

// New builds a minimal package around the given body markup (w:p / w:tbl elements).
func New(bodyXML string) (*Document, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	parts := []packageFile{
		{name: "[Content_Types].xml", body: []byte(contentTypesXML)},
		{name: "_rels/.rels", body: []byte(relsXML)},
		{name: documentPart, body: []byte(fmt.Sprintf(documentXML, bodyXML))},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err = w.Write(p.body); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return Read(buf.Bytes())
}
