// Package translate resolves indirect vulnerabilities into their directly
// crawlable equivalents by applying the extraction engine to already-fetched
// base-source bytes. It performs no network I/O and is idempotent over the
// same bytes.
package translate

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/ethics/patch-finder/extract"
	"github.com/ethics/patch-finder/vuln"
)

// Error reports an indirect vulnerability whose base source yielded no
// equivalents. A source that claims indirection but resolves to nothing is a
// hard failure, not an empty patch set.
type Error struct {
	ID     string
	Source string
}

func (e *Error) Error() string {
	return fmt.Sprintf("translation of %s against %s produced no equivalents", e.ID, e.Source)
}

// e.g. "[11 Jul 2019] DSA-4480-1 ..."
var headerDateRegexp = regexp.MustCompile(`^\[([^\]]+)\]`)

// Resolve applies the vulnerability's extraction config to the fetched bytes
// of its base source and maps every extracted advisory reference to one
// direct equivalent, in document order, carrying the packages mapping forward
// unchanged. The caller appends the result to the vulnerability; Resolve
// itself mutates nothing.
func Resolve(v *vuln.Indirect, body []byte) ([]*vuln.Direct, error) {
	var equivalents []*vuln.Direct
	var err error

	switch v.Format() {
	case extract.FormatPlain:
		equivalents, err = resolvePlain(v, body)
	case extract.FormatJSON:
		equivalents, err = resolveJSON(v, body)
	case extract.FormatMarkup:
		equivalents, err = resolveMarkup(v, body)
	default:
		return nil, xerrors.Errorf("unsupported content format %q for %s", v.Format(), v.ID())
	}
	if err != nil {
		return nil, err
	}

	if len(equivalents) == 0 {
		return nil, &Error{ID: v.ID(), Source: v.BaseSource()}
	}
	return equivalents, nil
}

func resolvePlain(v *vuln.Indirect, body []byte) ([]*vuln.Direct, error) {
	blocks, err := extract.Blocks(bytes.NewReader(body), v.BaseSource(), v.Config())
	if err != nil {
		return nil, err
	}

	var equivalents []*vuln.Direct
	for _, block := range blocks {
		published := headerDate(block.Header)
		for _, record := range block.Records {
			for _, field := range record {
				// one capture may reference several advisories,
				// e.g. "{CVE-2019-10192 CVE-2019-10193}"
				for _, id := range strings.Fields(field) {
					d := equivalent(id, v.Packages())
					if d == nil {
						continue
					}
					if !published.IsZero() {
						d = d.WithPublished(published)
					}
					equivalents = append(equivalents, d)
				}
			}
		}
	}
	return equivalents, nil
}

func resolveJSON(v *vuln.Indirect, body []byte) ([]*vuln.Direct, error) {
	doc, err := extract.ParseJSON(body, v.BaseSource())
	if err != nil {
		return nil, err
	}

	values := extract.Dict(doc, v.Config().KeyList, extract.GetValues)
	ids := lo.FlatMap(values, func(value interface{}, _ int) []string {
		return stringValues(value)
	})

	equivalents := lo.FilterMap(ids, func(id string, _ int) (*vuln.Direct, bool) {
		d := equivalent(id, v.Packages())
		return d, d != nil
	})
	return equivalents, nil
}

func resolveMarkup(v *vuln.Indirect, body []byte) ([]*vuln.Direct, error) {
	var equivalents []*vuln.Direct
	for _, sel := range v.Config().XPaths {
		text, ok, err := extract.MarkupText(body, v.BaseSource(), sel)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, id := range strings.Fields(text) {
			if d := equivalent(id, v.Packages()); d != nil {
				equivalents = append(equivalents, d)
			}
		}
	}
	return equivalents, nil
}

// equivalent turns one extracted reference into a runnable vulnerability.
// References that don't classify to a direct variant can't be crawled and are
// skipped.
func equivalent(id string, packages map[string]string) *vuln.Direct {
	classified, err := vuln.Classify(id, packages)
	if err != nil {
		log.Printf("skipping unrecognized reference %q", id)
		return nil
	}
	d, ok := classified.(*vuln.Direct)
	if !ok {
		log.Printf("skipping non-runnable reference %q", id)
		return nil
	}
	return d
}

func headerDate(header string) time.Time {
	m := headerDateRegexp.FindStringSubmatch(header)
	if m == nil {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(m[1])
	if err != nil {
		return time.Time{}
	}
	return t
}

func stringValues(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []interface{}:
		var out []string
		for _, elem := range v {
			out = append(out, stringValues(elem)...)
		}
		return out
	default:
		return nil
	}
}
