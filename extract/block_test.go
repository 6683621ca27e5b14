package extract_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethics/patch-finder/extract"
)

const trackerList = `[11 Jul 2019] DSA-4480-1 redis - security update
	{CVE-2019-10192 CVE-2019-10193}
	[stretch] - redis 3:3.2.6-3+deb9u3
[24 Aug 2019] DSA-4480-2 redis - regression update
	{CVE-2019-10192}
	[buster] - redis 5:5.0.3-4+deb10u1
`

func TestBlocks(t *testing.T) {
	cfg := extract.Config{
		StartBlock:   regexp.MustCompile(`^\[.+\] DSA-4480`),
		EndBlock:     regexp.MustCompile(`^\s+\[`),
		SearchParams: regexp.MustCompile(`^\s+\{(.+)\}`),
	}

	tests := []struct {
		name       string
		input      string
		asPerBlock bool
		want       []extract.Block
	}{
		{
			name:       "first block is terminal without as_per_block",
			input:      trackerList,
			asPerBlock: false,
			want: []extract.Block{
				{
					Header:  "[11 Jul 2019] DSA-4480-1 redis - security update",
					Records: [][]string{{"CVE-2019-10192 CVE-2019-10193"}},
				},
			},
		},
		{
			name:       "as_per_block re-arms after every closed block",
			input:      trackerList,
			asPerBlock: true,
			want: []extract.Block{
				{
					Header:  "[11 Jul 2019] DSA-4480-1 redis - security update",
					Records: [][]string{{"CVE-2019-10192 CVE-2019-10193"}},
				},
				{
					Header:  "[24 Aug 2019] DSA-4480-2 redis - regression update",
					Records: [][]string{{"CVE-2019-10192"}},
				},
			},
		},
		{
			name:       "no start match yields nothing",
			input:      "no advisories here\njust text\n",
			asPerBlock: true,
			want:       nil,
		},
		{
			name:       "block left open at end of input still counts",
			input:      "[11 Jul 2019] DSA-4480-1 redis - security update\n\t{CVE-2019-10192}\n",
			asPerBlock: false,
			want: []extract.Block{
				{
					Header:  "[11 Jul 2019] DSA-4480-1 redis - security update",
					Records: [][]string{{"CVE-2019-10192"}},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.AsPerBlock = tt.asPerBlock

			got, err := extract.Blocks(strings.NewReader(tt.input), "test", c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlocksLinesOutsideBlocksIgnored(t *testing.T) {
	input := "\t{CVE-2000-0001}\n[11 Jul 2019] DSA-4480-1 redis\n\t{CVE-2019-10192}\n"
	cfg := extract.Config{
		StartBlock:   regexp.MustCompile(`^\[.+\] DSA-4480-1`),
		SearchParams: regexp.MustCompile(`^\s+\{(.+)\}`),
	}

	got, err := extract.Blocks(strings.NewReader(input), "test", cfg)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, [][]string{{"CVE-2019-10192"}}, got[0].Records)
}

func TestRecords(t *testing.T) {
	cfg := extract.Config{
		StartBlock:   regexp.MustCompile(`^\[.+\] DSA-4480`),
		EndBlock:     regexp.MustCompile(`^\s+\[`),
		SearchParams: regexp.MustCompile(`^\s+\{(.+)\}`),
		AsPerBlock:   true,
	}

	got, err := extract.Records(strings.NewReader(trackerList), "test", cfg)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"CVE-2019-10192 CVE-2019-10193"},
		{"CVE-2019-10192"},
	}, got)
}

func TestBlocksOversizedLine(t *testing.T) {
	input := "[x] start\n" + strings.Repeat("a", 2*1024*1024) + "\n"
	cfg := extract.Config{
		StartBlock: regexp.MustCompile(`^\[x\]`),
	}

	_, err := extract.Blocks(strings.NewReader(input), "huge-source", cfg)

	var malformed *extract.MalformedSourceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "huge-source", malformed.Source)
	assert.Equal(t, extract.FormatPlain, malformed.Format)
}
