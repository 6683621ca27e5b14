package extract

import (
	"regexp"

	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// Option keys recognized by ParseConfig. Anything else is dropped without
// error; this filtering is intentional, not a loose schema.
var recognizedKeys = []string{
	"start_block",
	"end_block",
	"search_params",
	"as_per_block",
	"key_list",
	"xpaths",
}

// Selector locates a markup element by tag name and attribute values.
type Selector struct {
	Tag   string            `yaml:"tag"`
	Attrs map[string]string `yaml:"attrs"`
}

// Config holds the extraction options for one source. Only the options
// relevant to the source's Format are consulted; the rest are ignored.
type Config struct {
	// plain
	StartBlock   *regexp.Regexp
	EndBlock     *regexp.Regexp
	SearchParams *regexp.Regexp
	AsPerBlock   bool

	// json
	KeyList []*regexp.Regexp

	// markup
	XPaths []Selector
}

// ParseConfig builds a Config from an option map. Unrecognized keys are
// silently discarded; recognized keys are validated at construction.
// Pattern-valued options accept either a *regexp.Regexp or a pattern string.
func ParseConfig(opts map[string]interface{}) (Config, error) {
	var cfg Config
	for key, value := range opts {
		if !slices.Contains(recognizedKeys, key) {
			continue
		}

		var err error
		switch key {
		case "start_block":
			cfg.StartBlock, err = asRegexp(key, value)
		case "end_block":
			cfg.EndBlock, err = asRegexp(key, value)
		case "search_params":
			cfg.SearchParams, err = asRegexp(key, value)
		case "as_per_block":
			b, ok := value.(bool)
			if !ok {
				err = xerrors.Errorf("option %q must be a bool, got %T", key, value)
			}
			cfg.AsPerBlock = b
		case "key_list":
			cfg.KeyList, err = asRegexpList(key, value)
		case "xpaths":
			cfg.XPaths, err = asSelectors(key, value)
		}
		if err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func asRegexp(key string, value interface{}) (*regexp.Regexp, error) {
	switch v := value.(type) {
	case *regexp.Regexp:
		return v, nil
	case string:
		re, err := regexp.Compile(v)
		if err != nil {
			return nil, xerrors.Errorf("option %q holds an invalid pattern: %w", key, err)
		}
		return re, nil
	default:
		return nil, xerrors.Errorf("option %q must be a pattern, got %T", key, value)
	}
}

func asRegexpList(key string, value interface{}) ([]*regexp.Regexp, error) {
	var patterns []interface{}
	switch v := value.(type) {
	case []*regexp.Regexp:
		return v, nil
	case []string:
		for _, s := range v {
			patterns = append(patterns, s)
		}
	case []interface{}:
		patterns = v
	default:
		return nil, xerrors.Errorf("option %q must be a pattern list, got %T", key, value)
	}

	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := asRegexp(key, p)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return res, nil
}

func asSelectors(key string, value interface{}) ([]Selector, error) {
	switch v := value.(type) {
	case []Selector:
		return v, nil
	case Selector:
		return []Selector{v}, nil
	default:
		return nil, xerrors.Errorf("option %q must hold selectors, got %T", key, value)
	}
}
