// Package script reads animation scripts and builds op graphs from them.
//
// A script is a tree of terms. On one line, "," separates siblings and ":"
// nests everything after it under the term before it. A line indented
// deeper than the line holding the previous term at its level continues
// that term's children. "key=value" labels a term. Lines starting with
// "#" are comments, so a colour literal opening a line is written $rrggbb.
// Tabs count as four spaces.
//
//	pulse = pulser: interval=0.5, width=0.1
//	sum:
//	    muls: $b333e6, pulse
//	    $006600
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Node is one term of the parse tree.
type Node struct {
	Key   string
	Term  string
	Items []*Node
	Line  int

	// indent is the column of the line the term starts, or -1 for a term
	// nested after ":" on the same line.
	indent int
}

// Error is a script error tied to a line. Line 0 means the whole script.
type Error struct {
	File string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Msg)
	return b.String()
}

func errorf(line int, format string, args ...any) *Error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// ParseFile parses the script at path.
func ParseFile(path string) ([]*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := Parse(f)
	if se, ok := err.(*Error); ok {
		se.File = path
	}
	return items, err
}

// Parse reads a script into its top-level items.
func Parse(r io.Reader) ([]*Node, error) {
	var top []*Node
	sc := bufio.NewScanner(r)
	linenum := 0
	for sc.Scan() {
		linenum++
		line := strings.ReplaceAll(strings.TrimRight(sc.Text(), " \t\r"), "\t", "    ")
		body := strings.TrimLeft(line, " ")
		indent := len(line) - len(body)
		if body == "" || strings.HasPrefix(body, "#") {
			continue
		}

		terms, err := splitLine(body, indent, linenum)
		if err != nil {
			return nil, err
		}
		if top, err = appendAtIndent(top, terms, indent); err != nil {
			return nil, errorf(linenum, "%v", err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return top, nil
}

// splitLine turns one line into a list of sibling terms, each possibly
// carrying the terms nested after it with ":".
func splitLine(body string, indent, linenum int) ([]*Node, error) {
	var terms []*Node
	depth := 0
	vindent := indent
	tail := body
	for tail != "" {
		pos := strings.IndexAny(tail, ",:")
		var term string
		sep := byte(0)
		if pos < 0 {
			term, tail = strings.TrimSpace(tail), ""
		} else {
			term, sep = strings.TrimSpace(tail[:pos]), tail[pos]
			tail = strings.TrimSpace(tail[pos+1:])
		}
		if term == "" {
			return nil, errorf(linenum, "empty term")
		}
		key, val := labelTerm(term)
		terms = appendAtDepth(terms, &Node{Key: key, Term: val, Line: linenum, indent: vindent}, depth)
		if sep == ':' {
			depth++
			vindent = -1
		}
	}
	return terms, nil
}

func appendAtDepth(items []*Node, n *Node, depth int) []*Node {
	if depth == 0 {
		return append(items, n)
	}
	last := items[len(items)-1]
	last.Items = appendAtDepth(last.Items, n, depth-1)
	return items
}

func appendAtIndent(items, nodes []*Node, indent int) ([]*Node, error) {
	if len(items) > 0 {
		last := items[len(items)-1]
		if last.indent >= 0 {
			if indent > last.indent {
				var err error
				last.Items, err = appendAtIndent(last.Items, nodes, indent)
				return items, err
			}
			if indent != last.indent {
				return items, fmt.Errorf("indentation mismatch")
			}
		}
	}
	return append(items, nodes...), nil
}

func labelTerm(term string) (key, val string) {
	key, val, ok := strings.Cut(term, "=")
	if !ok {
		return "", strings.TrimSpace(term)
	}
	return strings.TrimSpace(key), strings.TrimSpace(val)
}

// Dump writes the parse tree, one term per line.
func Dump(w io.Writer, items []*Node) error {
	for _, n := range items {
		if err := dumpNode(w, n, 0); err != nil {
			return err
		}
	}
	return nil
}

func dumpNode(w io.Writer, n *Node, depth int) error {
	key := n.Key
	if key == "" {
		key = "_"
	}
	if _, err := fmt.Fprintf(w, "%s%s=%s\n", strings.Repeat("  ", depth), key, n.Term); err != nil {
		return err
	}
	for _, ch := range n.Items {
		if err := dumpNode(w, ch, depth+1); err != nil {
			return err
		}
	}
	return nil
}
