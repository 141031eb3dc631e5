package datafile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnterminatedQuote is returned when a quoted token runs to the end of its line.
var ErrUnterminatedQuote = errors.New("unterminated quoted token")

type frame struct {
	indent int
	node   *Node
}

// Parse reads a data file and returns an unnamed root node whose children are
// the top-level entries.
func Parse(r io.Reader) (*Node, error) {
	root := &Node{}
	stack := []frame{{indent: -1, node: root}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNr := 0
	for scanner.Scan() {
		lineNr++
		text := scanner.Text()

		indent := 0
		for indent < len(text) && (text[indent] == ' ' || text[indent] == '\t') {
			indent++
		}

		tokens, err := tokenize(text[indent:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNr, err)
		}
		if len(tokens) == 0 {
			continue
		}

		for stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		node := &Node{tokens: tokens, line: lineNr}
		stack[len(stack)-1].node.AddChild(node)
		stack = append(stack, frame{indent: indent, node: node})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	return root, nil
}

// ParseString parses data file text held in memory.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile opens and parses the data file at path.
func ParseFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	root, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

func tokenize(s string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			return tokens, nil
		case c == '"' || c == '`':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, ErrUnterminatedQuote
			}
			tokens = append(tokens, s[i+1:i+1+end])
			i += end + 2
		default:
			start := i
			for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '\r' {
				i++
			}
			tokens = append(tokens, s[start:i])
		}
	}
	return tokens, nil
}
