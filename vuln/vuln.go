// Package vuln models security-advisory identifiers and their upstream
// sources. A vulnerability is either directly crawlable (its entrypoint URLs
// derive from the identifier alone) or indirect (a base source must be
// fetched and translated into directly crawlable equivalents first).
package vuln

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/ethics/patch-finder/extract"
)

// Vulnerability is the capability set shared by all variants. Identifiers
// are immutable once constructed. Packages maps a provider name to the
// package name that provider knows the software by; it may be nil.
type Vulnerability interface {
	ID() string
	Entrypoints() []string
	Packages() map[string]string
}

// Direct is a vulnerability a generic crawler can consume as-is: its
// entrypoints are pre-computed from the identifier and never empty.
type Direct struct {
	id          string
	entrypoints []string
	packages    map[string]string
	published   time.Time
}

func NewDirect(id string, entrypoints []string, packages map[string]string) *Direct {
	return &Direct{
		id:          id,
		entrypoints: entrypoints,
		packages:    packages,
	}
}

func (v *Direct) ID() string {
	return v.id
}

func (v *Direct) Entrypoints() []string {
	return slices.Clone(v.entrypoints)
}

func (v *Direct) Packages() map[string]string {
	return v.packages
}

// Published is the advisory publication date when the source it was
// extracted from carried one, zero otherwise.
func (v *Direct) Published() time.Time {
	return v.published
}

// WithPublished returns a copy carrying the given publication date.
func (v *Direct) WithPublished(t time.Time) *Direct {
	c := *v
	c.published = t
	return &c
}

// Indirect is a vulnerability that cannot be crawled directly. Its base
// source is fetched and run through the extraction engine to produce the
// directly crawlable equivalents.
type Indirect struct {
	id          string
	packages    map[string]string
	baseSource  string
	format      extract.Format
	config      extract.Config
	equivalents []*Direct
}

// NewIndirect builds an indirect vulnerability. The option map is filtered to
// the recognized extraction keys; unrecognized keys are dropped without
// error.
func NewIndirect(id string, packages map[string]string, baseSource string, format extract.Format, opts map[string]interface{}) (*Indirect, error) {
	cfg, err := extract.ParseConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Indirect{
		id:         id,
		packages:   packages,
		baseSource: baseSource,
		format:     format,
		config:     cfg,
	}, nil
}

func (v *Indirect) ID() string {
	return v.id
}

// Entrypoints is empty until translation has run; crawl the equivalents.
func (v *Indirect) Entrypoints() []string {
	return nil
}

func (v *Indirect) Packages() map[string]string {
	return v.packages
}

func (v *Indirect) BaseSource() string {
	return v.baseSource
}

func (v *Indirect) Format() extract.Format {
	return v.format
}

func (v *Indirect) Config() extract.Config {
	return v.config
}

// AddEquivalents appends resolved equivalents. The list is append-only;
// nothing ever removes or reorders entries.
func (v *Indirect) AddEquivalents(vulns ...*Direct) {
	v.equivalents = append(v.equivalents, vulns...)
}

func (v *Indirect) Equivalents() []*Direct {
	return slices.Clone(v.equivalents)
}
