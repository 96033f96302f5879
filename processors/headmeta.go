package processors

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MetaTag is a <meta name content> declaration.
type MetaTag struct {
	Name    string
	Content string
}

// HeadMeta sets the document title and meta tags of an HTML page. An
// existing <title> and any <meta> with the same name are replaced. Only the
// head is edited: every other byte of the page is kept as written. Fragments
// without a <head> are placed in a minimal document shell.
type HeadMeta struct {
	Title string
	Meta  []MetaTag
}

func NewHeadMeta(title string, meta ...MetaTag) *HeadMeta {
	return &HeadMeta{Title: title, Meta: meta}
}

// span is a byte range of the input and what replaces it.
type span struct {
	start, end int
	text       string
}

// headLayout records where the head and the elements to replace sit.
type headLayout struct {
	doctype   int // end of a leading doctype, or 0
	htmlEnd   int // end of the <html> start tag, or -1
	headOpen  int // end of the <head> start tag, or -1
	headClose int // start of </head>, or -1
	title     *span
	metas     []span
}

// ProcessContent implements the postprocess.Processor interface.
func (h *HeadMeta) ProcessContent(filePath string, content []byte) ([]byte, error) {
	layout, err := h.scan(content)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", filePath, err)
	}

	if layout.headOpen < 0 {
		return h.shell(content, layout), nil
	}

	edits := append([]span(nil), layout.metas...)
	insert := h.metaTags()
	if layout.title != nil {
		edits = append(edits, span{start: layout.title.start, end: layout.title.end, text: h.titleTag()})
	} else {
		insert = h.titleTag() + insert
	}

	at := layout.headClose
	if at < 0 {
		at = layout.headOpen
	}
	edits = append(edits, span{start: at, end: at, text: insert})

	return splice(content, edits), nil
}

// scan tokenizes content and locates the head and the title and meta
// elements inside it that will be replaced.
func (h *HeadMeta) scan(content []byte) (*headLayout, error) {
	layout := &headLayout{htmlEnd: -1, headOpen: -1, headClose: -1}
	names := make(map[string]bool, len(h.Meta))
	for _, tag := range h.Meta {
		names[tag.Name] = true
	}

	z := html.NewTokenizer(bytes.NewReader(content))
	offset := 0
	inHead := false
	titleStart := -1

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return layout, nil
			}
			return nil, z.Err()
		}

		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.DoctypeToken:
			if layout.htmlEnd < 0 && layout.headOpen < 0 {
				layout.doctype = offset
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.Html:
				if layout.htmlEnd < 0 {
					layout.htmlEnd = offset
				}
			case atom.Head:
				if layout.headOpen < 0 {
					layout.headOpen = offset
					inHead = true
				}
			case atom.Body:
				if inHead {
					return layout, nil
				}
			case atom.Title:
				if inHead && h.Title != "" && layout.title == nil {
					titleStart = start
				}
			case atom.Meta:
				if inHead && hasAttr && names[metaName(z)] {
					layout.metas = append(layout.metas, span{start: start, end: offset})
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Title:
				if titleStart >= 0 {
					layout.title = &span{start: titleStart, end: offset}
					titleStart = -1
				}
			case atom.Head:
				if inHead {
					layout.headClose = start
					return layout, nil
				}
			}
		}
	}
}

// shell adds a head to content that has none: after the <html> start tag
// when there is one, otherwise around the whole fragment following any
// doctype.
func (h *HeadMeta) shell(content []byte, layout *headLayout) []byte {
	head := "<head>" + h.titleTag() + h.metaTags() + "</head>"
	if layout.htmlEnd >= 0 {
		return splice(content, []span{{start: layout.htmlEnd, end: layout.htmlEnd, text: head}})
	}

	var buf bytes.Buffer
	buf.Grow(len(content) + len(head) + 32)
	buf.Write(content[:layout.doctype])
	buf.WriteString("<html>")
	buf.WriteString(head)
	buf.WriteString("<body>")
	buf.Write(content[layout.doctype:])
	buf.WriteString("</body></html>")
	return buf.Bytes()
}

func (h *HeadMeta) titleTag() string {
	if h.Title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(h.Title) + "</title>"
}

func (h *HeadMeta) metaTags() string {
	var b strings.Builder
	for _, tag := range h.Meta {
		fmt.Fprintf(&b, `<meta name="%s" content="%s"/>`, html.EscapeString(tag.Name), html.EscapeString(tag.Content))
	}
	return b.String()
}

func metaName(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "name" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}

// splice applies non-overlapping edits to src. An insertion sorts before a
// replacement starting at the same offset.
func splice(src []byte, edits []span) []byte {
	slices.SortFunc(edits, func(a, b span) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		return cmp.Compare(a.end, b.end)
	})

	var buf bytes.Buffer
	buf.Grow(len(src))
	pos := 0
	for _, e := range edits {
		buf.Write(src[pos:e.start])
		buf.WriteString(e.text)
		pos = e.end
	}
	buf.Write(src[pos:])
	return buf.Bytes()
}
