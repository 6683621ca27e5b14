package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markup parses structured markup and returns the first element matching the
// selector, or nil when nothing matches. Single-result semantics: multiple
// matches beyond the first are not reported.
func Markup(b []byte, source string, sel Selector) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, &MalformedSourceError{Source: source, Format: FormatMarkup, Err: err}
	}

	s := doc.Find(sel.css()).First()
	if s.Length() == 0 {
		return nil, nil
	}
	return s, nil
}

// MarkupText returns the trimmed text of the first matching element, with ok
// reporting whether any element matched.
func MarkupText(b []byte, source string, sel Selector) (string, bool, error) {
	s, err := Markup(b, source, sel)
	if err != nil {
		return "", false, err
	}
	if s == nil {
		return "", false, nil
	}
	return strings.TrimSpace(s.Text()), true, nil
}

func (s Selector) css() string {
	var sb strings.Builder
	sb.WriteString(s.Tag)

	attrs := make([]string, 0, len(s.Attrs))
	for k := range s.Attrs {
		attrs = append(attrs, k)
	}
	sort.Strings(attrs)
	for _, k := range attrs {
		fmt.Fprintf(&sb, "[%s=%q]", k, s.Attrs[k])
	}
	return sb.String()
}
