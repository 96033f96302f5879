package app

import (
	"net/http"
	"strconv"

	"github.com/cpcf/gasket/processors"
)

// FrameOptionsMode controls whether other origins may embed the page.
type FrameOptionsMode int

const (
	// FrameDefault allows embedding by the same origin only.
	FrameDefault FrameOptionsMode = iota
	// FrameAllowAll allows embedding by any origin.
	FrameAllowAll
)

type MetaTag = processors.MetaTag

// Response is the page an entry point hands back to the host.
type Response struct {
	Body         string
	Title        string
	Meta         []MetaTag
	FrameOptions FrameOptionsMode
}

func NewResponse(body string) *Response {
	return &Response{Body: body}
}

func (r *Response) SetTitle(title string) *Response {
	r.Title = title
	return r
}

func (r *Response) AddMetaTag(name, content string) *Response {
	r.Meta = append(r.Meta, MetaTag{Name: name, Content: content})
	return r
}

func (r *Response) SetFrameOptions(mode FrameOptionsMode) *Response {
	r.FrameOptions = mode
	return r
}

// Document returns the body with the title and meta tags set in its head.
func (r *Response) Document() ([]byte, error) {
	if r.Title == "" && len(r.Meta) == 0 {
		return []byte(r.Body), nil
	}
	return processors.NewHeadMeta(r.Title, r.Meta...).ProcessContent("response", []byte(r.Body))
}

// Write sends the response as an HTML page.
func (r *Response) Write(w http.ResponseWriter) error {
	doc, err := r.Document()
	if err != nil {
		return err
	}
	return r.writeDocument(w, doc)
}

func (r *Response) writeDocument(w http.ResponseWriter, doc []byte) error {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(doc)))
	switch r.FrameOptions {
	case FrameAllowAll:
		h.Set("Content-Security-Policy", "frame-ancestors *")
	default:
		h.Set("X-Frame-Options", "SAMEORIGIN")
	}

	w.WriteHeader(http.StatusOK)
	_, err := w.Write(doc)
	return err
}
