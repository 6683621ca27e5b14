package extract

import (
	"encoding/json"
	"regexp"
	"sort"
)

// Mode selects what Dict collects for keys matching the last pattern.
type Mode int

const (
	GetValues Mode = iota
	GetKeys
)

// ParseJSON decodes source bytes into a generic document tree.
func ParseJSON(b []byte, source string) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &MalformedSourceError{Source: source, Format: FormatJSON, Err: err}
	}
	return doc, nil
}

// Dict descends a decoded JSON tree by the ordered key-pattern list. At each
// mapping, keys matching the head pattern are collected (key or value, per
// mode) when the pattern is last, otherwise descent continues into their
// values with the remaining patterns. Arrays are transparent: each element is
// visited with the unchanged pattern list. Scalars met mid-path contribute
// nothing. An empty key list yields no results.
//
// Recursion depth is bounded by the pattern list, so arbitrary nesting below
// the last pattern is never walked.
func Dict(doc interface{}, keyList []*regexp.Regexp, mode Mode) []interface{} {
	if len(keyList) == 0 {
		return nil
	}

	var results []interface{}
	switch v := doc.(type) {
	case map[string]interface{}:
		for _, key := range sortedKeys(v) {
			if !keyList[0].MatchString(key) {
				continue
			}
			if len(keyList) == 1 {
				if mode == GetKeys {
					results = append(results, key)
				} else {
					results = append(results, v[key])
				}
				continue
			}
			results = append(results, Dict(v[key], keyList[1:], mode)...)
		}
	case []interface{}:
		for _, elem := range v {
			results = append(results, Dict(elem, keyList, mode)...)
		}
	}
	return results
}

// Sibling order is unspecified for callers, but iteration must still be
// deterministic so repeated extraction over the same bytes agrees.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
