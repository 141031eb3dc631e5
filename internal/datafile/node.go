// Package datafile reads the indentation-structured text format used for game
// data: outfits, ships, formations and engagements.
//
// Each non-empty line is a node made of whitespace separated tokens. Tokens
// may be wrapped in "double quotes" or `backticks` to include spaces. A line
// indented deeper than the line above it is a child of that line. Everything
// after an unquoted # is a comment.
package datafile

import (
	"strconv"
	"strings"
)

// Node is one line of a data file together with its nested children.
type Node struct {
	tokens   []string
	children []*Node
	line     int
}

// NewNode builds a node from tokens. Used by loaders in tests and by
// programmatic data.
func NewNode(tokens ...string) *Node {
	return &Node{tokens: tokens}
}

// AddChild appends a child node and returns it.
func (n *Node) AddChild(child *Node) *Node {
	n.children = append(n.children, child)
	return child
}

// Size returns the number of tokens on this line.
func (n *Node) Size() int {
	return len(n.tokens)
}

// Token returns token i, or "" if there is no such token.
func (n *Node) Token(i int) string {
	if i < 0 || i >= len(n.tokens) {
		return ""
	}
	return n.tokens[i]
}

// Value returns token i parsed as a number. Missing or non-numeric tokens
// yield zero.
func (n *Node) Value(i int) float64 {
	v, err := strconv.ParseFloat(n.Token(i), 64)
	if err != nil {
		return 0
	}
	return v
}

// IsNumber reports whether token i parses as a number.
func (n *Node) IsNumber(i int) bool {
	_, err := strconv.ParseFloat(n.Token(i), 64)
	return err == nil
}

// Children returns the nodes nested under this one, in file order.
func (n *Node) Children() []*Node {
	return n.children
}

// HasChildren reports whether any node is nested under this one.
func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// Line returns the 1-based source line, or 0 for programmatic nodes.
func (n *Node) Line() int {
	return n.line
}

// String renders the tokens back into data file syntax.
func (n *Node) String() string {
	parts := make([]string, len(n.tokens))
	for i, tok := range n.tokens {
		switch {
		case tok == "" || strings.ContainsAny(tok, " \t#"):
			if strings.Contains(tok, `"`) {
				parts[i] = "`" + tok + "`"
			} else {
				parts[i] = `"` + tok + `"`
			}
		default:
			parts[i] = tok
		}
	}
	return strings.Join(parts, " ")
}
