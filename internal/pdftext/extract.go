// Package pdftext pulls plain text out of the first pages of a PDF.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrEmpty = errors.New("pdf has no pages")

// Extract returns the concatenated text of the first pages (pages <= 0 means
// all). Pages the parser cannot read are skipped; an unreadable document is
// an error.
func Extract(data []byte, pages int) (text string, err error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	n := r.NumPage()
	if n == 0 {
		return "", ErrEmpty
	}
	if pages > 0 && pages < n {
		n = pages
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		s, ok := pageText(r, i)
		if !ok || s == "" {
			continue
		}
		b.WriteString(s)
		if !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func pageText(r *pdf.Reader, i int) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()
	p := r.Page(i)
	if p.V.IsNull() {
		return "", false
	}
	s, err := p.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return s, true
}
