package extract

import (
	"bufio"
	"io"
	"strings"
)

// Block is one delimited region of a line-oriented source: the line that
// opened it and the capture groups of every line inside it matching the
// search pattern.
type Block struct {
	Header  string
	Records [][]string
}

// Blocks scans line-oriented text in a single pass. A block opens on a line
// matching cfg.StartBlock and closes on a line matching cfg.EndBlock (or end
// of input). Inside a block, every line matching cfg.SearchParams yields one
// record of its capture groups. With cfg.AsPerBlock the scanner re-arms after
// closing a block; otherwise the first closed block is terminal.
func Blocks(r io.Reader, source string, cfg Config) ([]Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []Block
	var current *Block
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")

		if current == nil {
			if cfg.StartBlock != nil && cfg.StartBlock.MatchString(line) {
				current = &Block{Header: line}
			}
			continue
		}

		if cfg.EndBlock != nil && cfg.EndBlock.MatchString(line) {
			blocks = append(blocks, *current)
			current = nil
			if !cfg.AsPerBlock {
				return blocks, nil
			}
			continue
		}

		if cfg.SearchParams != nil {
			if m := cfg.SearchParams.FindStringSubmatch(line); m != nil {
				current.Records = append(current.Records, m[1:])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &MalformedSourceError{Source: source, Format: FormatPlain, Err: err}
	}

	// an open block at end of input still counts
	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks, nil
}

// Records flattens Blocks into plain capture-group tuples in document order.
func Records(r io.Reader, source string, cfg Config) ([][]string, error) {
	blocks, err := Blocks(r, source, cfg)
	if err != nil {
		return nil, err
	}

	var records [][]string
	for _, b := range blocks {
		records = append(records, b.Records...)
	}
	return records, nil
}
