package docx

import "github.com/pkg/errors"

// Merge returns a new document holding the body content of docs in order. The package
// of the first document (styles, section properties, relationships) is the base.
func Merge(docs []*Document) (*Document, error) {
	if len(docs) == 0 {
		return nil, errors.New("nothing to merge")
	}
	merged := docs[0].Clone()
	body := merged.body()
	sectPr := firstChild(body, "sectPr")
	for _, c := range body.ChildElements() {
		body.RemoveChild(c)
	}
	for _, doc := range docs {
		for _, c := range doc.body().ChildElements() {
			if isW(c, "sectPr") {
				continue
			}
			body.AddChild(c.Copy())
		}
	}
	if sectPr != nil {
		body.AddChild(sectPr)
	}
	return merged, nil
}
