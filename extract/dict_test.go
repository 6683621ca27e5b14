package extract_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethics/patch-finder/extract"
)

func patterns(ps ...string) []*regexp.Regexp {
	var res []*regexp.Regexp
	for _, p := range ps {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

func TestDict(t *testing.T) {
	tests := []struct {
		name    string
		doc     interface{}
		keyList []*regexp.Regexp
		mode    extract.Mode
		want    []interface{}
	}{
		{
			name:    "empty key list yields nothing regardless of content",
			doc:     map[string]interface{}{"CVE": "CVE-2020-1"},
			keyList: nil,
			mode:    extract.GetValues,
			want:    nil,
		},
		{
			name:    "single pattern collects values",
			doc:     map[string]interface{}{"CVE": "CVE-2020-1"},
			keyList: patterns(`^CVE$`),
			mode:    extract.GetValues,
			want:    []interface{}{"CVE-2020-1"},
		},
		{
			name:    "single pattern collects keys",
			doc:     map[string]interface{}{"CVE-2020-1": "x", "CVE-2020-2": "y", "other": "z"},
			keyList: patterns(`^CVE`),
			mode:    extract.GetKeys,
			want:    []interface{}{"CVE-2020-1", "CVE-2020-2"},
		},
		{
			name: "descent follows the remaining patterns",
			doc: map[string]interface{}{
				"advisory": map[string]interface{}{
					"CVE":   "CVE-2019-1",
					"other": "ignored",
				},
				"unrelated": map[string]interface{}{"CVE": "CVE-2019-2"},
			},
			keyList: patterns(`^advisory$`, `^CVE$`),
			mode:    extract.GetValues,
			want:    []interface{}{"CVE-2019-1"},
		},
		{
			name: "arrays are transparent",
			doc: []interface{}{
				map[string]interface{}{"CVE": "CVE-2016-3706"},
				map[string]interface{}{"CVE": "CVE-2016-5384"},
			},
			keyList: patterns(`^CVE$`),
			mode:    extract.GetValues,
			want:    []interface{}{"CVE-2016-3706", "CVE-2016-5384"},
		},
		{
			name:    "scalar met mid-path contributes nothing",
			doc:     map[string]interface{}{"advisory": "not a mapping"},
			keyList: patterns(`^advisory$`, `^CVE$`),
			mode:    extract.GetValues,
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract.Dict(tt.doc, tt.keyList, tt.mode)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSON(t *testing.T) {
	doc, err := extract.ParseJSON([]byte(`{"CVE": "CVE-2020-1"}`), "test")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"CVE": "CVE-2020-1"}, doc)
}

func TestParseJSONMalformed(t *testing.T) {
	_, err := extract.ParseJSON([]byte(`{"CVE":`), "https://example.com/cve.json")

	var malformed *extract.MalformedSourceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "https://example.com/cve.json", malformed.Source)
	assert.Equal(t, extract.FormatJSON, malformed.Format)
}
