package op

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the tree under the root, one node per line, indented by
// depth. A node reached a second time is printed as a back reference.
func Dump(w io.Writer, g *Graph) error {
	root, ok := g.Root()
	if !ok {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	seen := make(map[Ref]bool)
	var walk func(r Ref, depth int) error
	walk = func(r Ref, depth int) error {
		indent := strings.Repeat("  ", depth)
		if !g.has(r) {
			_, err := fmt.Fprintf(w, "%s%v ???\n", indent, r)
			return err
		}
		if seen[r] {
			_, err := fmt.Fprintf(w, "%s^%v\n", indent, r)
			return err
		}
		seen[r] = true
		if _, err := fmt.Fprintf(w, "%s%v %s\n", indent, r, describe(g.Def(r))); err != nil {
			return err
		}
		for _, ch := range g.Children(r) {
			if err := walk(ch, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, 0)
}

// DumpOrder writes the evaluation order on one line.
func DumpOrder(w io.Writer, g *Graph) error {
	parts := make([]string, len(g.Order))
	for i, r := range g.Order {
		parts[i] = r.String()
	}
	_, err := fmt.Fprintf(w, "order: %s\n", strings.Join(parts, " "))
	return err
}

func describe(d Def) string {
	if d == nil {
		return "<nil>"
	}
	switch v := d.(type) {
	case Constant:
		return fmt.Sprintf("constant %g", v.Value)
	case ColorConstant:
		return "constant " + v.Value.Hex()
	case Pulser:
		return v.Def.String()
	case Channel:
		return "channel " + v.Which.String()
	}
	return fmt.Sprintf("%s %+v", d.Name(), d)
}
