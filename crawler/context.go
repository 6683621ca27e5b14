// Package crawler drives one advisory identifier from classification through
// translation to crawl dispatch.
package crawler

import (
	"log"

	"golang.org/x/xerrors"

	"github.com/ethics/patch-finder/translate"
	"github.com/ethics/patch-finder/vuln"
)

// Fetcher retrieves the raw bytes behind a source locator. Retry and timeout
// policy live here, not in the core: a fetch either yields bytes or an error
// naming the locator.
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

// Dispatcher receives one runnable vulnerability per call — its entrypoints
// and packages — and crawls it. What it does with the extracted content is
// its own business.
type Dispatcher interface {
	Dispatch(v *vuln.Direct) error
}

type State int

const (
	Created State = iota
	Classified
	Translated
	Dispatched
	Errored
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Classified:
		return "classified"
	case Translated:
		return "translated"
	case Dispatched:
		return "dispatched"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// Context is the run-time state for one input identifier. It is created per
// invocation and holds no cross-run state. Transitions are never retried; the
// first failure parks the context in Errored with the failing stage wrapped
// into the cause.
type Context struct {
	rawID    string
	packages map[string]string

	state    State
	err      error
	input    vuln.Vulnerability
	runnable []*vuln.Direct
}

func NewContext(id string, packages map[string]string) *Context {
	return &Context{
		rawID:    id,
		packages: packages,
		state:    Created,
	}
}

func (c *Context) State() State {
	return c.state
}

// Err is the cause that parked the context in Errored, nil otherwise.
func (c *Context) Err() error {
	return c.err
}

// Input is the classified vulnerability, nil before classification.
func (c *Context) Input() vuln.Vulnerability {
	return c.input
}

// Runnable is the derived list of directly crawlable vulnerabilities. Built
// once, append-only.
func (c *Context) Runnable() []*vuln.Direct {
	return c.runnable
}

// Run drives the context to its terminal state: classify, translate when the
// input is indirect, and dispatch every runnable vulnerability.
func (c *Context) Run(fetcher Fetcher, dispatcher Dispatcher) error {
	if c.state != Created {
		return xerrors.Errorf("context for %s already %s", c.rawID, c.state)
	}

	if err := c.classify(); err != nil {
		return c.fail("classification", err)
	}

	if indirect, ok := c.input.(*vuln.Indirect); ok {
		if err := c.translate(indirect, fetcher); err != nil {
			return c.fail("translation", err)
		}
	} else {
		c.runnable = []*vuln.Direct{c.input.(*vuln.Direct)}
	}

	if err := c.dispatch(dispatcher); err != nil {
		return c.fail("dispatch", err)
	}
	return nil
}

func (c *Context) classify() error {
	v, err := vuln.Classify(c.rawID, c.packages)
	if err != nil {
		return err
	}
	c.input = v
	c.state = Classified
	log.Printf("classified %s as %T", v.ID(), v)
	return nil
}

func (c *Context) translate(indirect *vuln.Indirect, fetcher Fetcher) error {
	body, err := fetcher.Fetch(indirect.BaseSource())
	if err != nil {
		return err
	}

	equivalents, err := translate.Resolve(indirect, body)
	if err != nil {
		return err
	}
	indirect.AddEquivalents(equivalents...)

	c.runnable = indirect.Equivalents()
	c.state = Translated
	log.Printf("translated %s into %d runnable vulnerabilities", indirect.ID(), len(c.runnable))
	return nil
}

func (c *Context) dispatch(dispatcher Dispatcher) error {
	for _, v := range c.runnable {
		if err := dispatcher.Dispatch(v); err != nil {
			return err
		}
	}
	c.state = Dispatched
	return nil
}

func (c *Context) fail(stage string, err error) error {
	c.state = Errored
	c.err = xerrors.Errorf("%s failed for %s: %w", stage, c.rawID, err)
	return c.err
}
