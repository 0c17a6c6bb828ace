// Package xmlstream is a forward-only XML writer for documents using
// prefixed element names declared once on the root.
package xmlstream

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

type Attr struct {
	Name  string
	Value string
}

func A(name, value string) Attr { return Attr{Name: name, Value: value} }

// Writer wraps xml.Encoder with an element stack. Errors are sticky: once a
// call fails, later calls do nothing and Err reports the first failure.
type Writer struct {
	out   io.Writer
	enc   *xml.Encoder
	stack []string
	wrote bool
	err   error
}

func NewWriter(out io.Writer) *Writer {
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	return &Writer{out: out, enc: enc}
}

// Header writes the XML declaration. It must precede every element.
func (w *Writer) Header() {
	if w.err != nil {
		return
	}
	if w.wrote {
		w.err = errors.New("xmlstream: header after content")
		return
	}
	w.wrote = true
	if _, err := io.WriteString(w.out, xml.Header); err != nil {
		w.err = fmt.Errorf("xmlstream: header: %w", err)
	}
}

func (w *Writer) Start(name string, attrs ...Attr) {
	if w.err != nil {
		return
	}
	w.wrote = true
	se := xml.StartElement{Name: xml.Name{Local: name}}
	if len(attrs) > 0 {
		se.Attr = make([]xml.Attr, 0, len(attrs))
		for _, a := range attrs {
			se.Attr = append(se.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
		}
	}
	if err := w.enc.EncodeToken(se); err != nil {
		w.err = fmt.Errorf("xmlstream: start %s: %w", name, err)
		return
	}
	w.stack = append(w.stack, name)
}

// End closes the innermost element, which must be name.
func (w *Writer) End(name string) {
	if w.err != nil {
		return
	}
	if len(w.stack) == 0 {
		w.err = fmt.Errorf("xmlstream: end %s with no open element", name)
		return
	}
	if top := w.stack[len(w.stack)-1]; top != name {
		w.err = fmt.Errorf("xmlstream: end %s does not match open %s", name, top)
		return
	}
	w.pop()
}

func (w *Writer) pop() {
	name := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}}); err != nil {
		w.err = fmt.Errorf("xmlstream: end %s: %w", name, err)
	}
}

func (w *Writer) Chars(text string) {
	if w.err != nil {
		return
	}
	if len(w.stack) == 0 {
		w.err = errors.New("xmlstream: character data outside the root element")
		return
	}
	if err := w.enc.EncodeToken(xml.CharData(text)); err != nil {
		w.err = fmt.Errorf("xmlstream: chars: %w", err)
	}
}

// Element writes <name attrs>text</name>.
func (w *Writer) Element(name, text string, attrs ...Attr) {
	w.Start(name, attrs...)
	if text != "" {
		w.Chars(text)
	}
	w.End(name)
}

func (w *Writer) Empty(name string, attrs ...Attr) {
	w.Start(name, attrs...)
	w.End(name)
}

// Within opens name, runs fn and closes every element opened since, name
// included, whatever fn returns or however it exits.
func (w *Writer) Within(name string, attrs []Attr, fn func() error) (err error) {
	depth := len(w.stack)
	w.Start(name, attrs...)
	if w.err != nil {
		return w.err
	}
	defer func() {
		if w.err == nil {
			for len(w.stack) > depth && w.err == nil {
				w.pop()
			}
		}
		if err == nil {
			err = w.err
		}
	}()
	return fn()
}

func (w *Writer) Depth() int { return len(w.stack) }

func (w *Writer) Err() error { return w.err }

// Close ends every open element and flushes.
func (w *Writer) Close() error {
	for len(w.stack) > 0 && w.err == nil {
		w.pop()
	}
	return w.Flush()
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.enc.Flush(); err != nil {
		w.err = fmt.Errorf("xmlstream: flush: %w", err)
	}
	return w.err
}
