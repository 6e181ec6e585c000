// Package page keeps the authored markup of the page as a mutable document. The root
// element is <body>, controls are addressed by id.
package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

//go:embed index.html
var indexHTML []byte

// Document is a parsed page.
type Document struct {
	doc *goquery.Document
}

// Default parses the embedded index page.
func Default() (*Document, error) {
	return Parse(bytes.NewReader(indexHTML))
}

// Parse reads authored markup into a Document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Document{doc: doc}, nil
}

// HasElement reports whether an element with the given id exists.
func (d *Document) HasElement(id string) bool {
	return d.byID(id).Length() > 0
}

// SetText replaces the content of the element with the given id by a single text node.
// Missing element is a no-op.
func (d *Document) SetText(id, text string) {
	d.byID(id).SetText(text)
}

// Text returns the text content of the element with the given id.
func (d *Document) Text(id string) string {
	return d.byID(id).Text()
}

// AddClass adds a class to the root element.
func (d *Document) AddClass(name string) {
	d.root().AddClass(name)
}

// ToggleClass flips a class on the root element and reports whether it is present afterwards.
func (d *Document) ToggleClass(name string) bool {
	root := d.root()
	root.ToggleClass(name)
	return root.HasClass(name)
}

// HasClass reports whether the root element carries the class.
func (d *Document) HasClass(name string) bool {
	return d.root().HasClass(name)
}

// Render writes the current document as html.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("failed to render page: %w", err)
		}
	}
	return nil
}

func (d *Document) root() *goquery.Selection {
	return d.doc.Find("body").First()
}

// byID matches the id attribute verbatim, without building a selector from it.
func (d *Document) byID(id string) *goquery.Selection {
	return d.doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	}).First()
}

// IndexHTML returns a copy of the embedded index markup.
func IndexHTML() []byte {
	return bytes.Clone(indexHTML)
}
