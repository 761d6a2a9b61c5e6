package http

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// Response is a fetched page. URL is the final location after redirects.
type Response struct {
	URL        string
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// BodyString returns the raw body without charset decoding.
func (r *Response) BodyString() string {
	return string(r.Body)
}

// Text returns the body decoded to UTF-8 using the Content-Type charset,
// a <meta charset> or BOM in the document, in that order.
func (r *Response) Text() (string, error) {
	dec, err := charset.NewReader(bytes.NewReader(r.Body), r.ContentType())
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", r.URL, err)
	}
	text, err := io.ReadAll(dec)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", r.URL, err)
	}
	return string(text), nil
}

func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// IsHTML reports whether the response declares an HTML media type. A
// missing or unparsable Content-Type counts as HTML.
func (r *Response) IsHTML() bool {
	ct := r.ContentType()
	if ct == "" {
		return true
	}
	media, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return true
	}
	return media == "text/html" || media == "application/xhtml+xml"
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode/100 == 2
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode/100 == 3
}
