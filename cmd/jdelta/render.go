package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/calumari/jdelta"
)

// colorEnabled resolves a color mode for w. "auto" colours only terminals.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type palette struct {
	kinds map[jdelta.Kind]*color.Color
	key   *color.Color
	dim   *color.Color
	pass  *color.Color
	fail  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		kinds: map[jdelta.Kind]*color.Color{
			jdelta.KindMatch:         color.New(color.FgGreen),
			jdelta.KindValueMismatch: color.New(color.FgYellow),
			jdelta.KindTypeMismatch:  color.New(color.FgMagenta),
			jdelta.KindAdded:         color.New(color.FgCyan),
			jdelta.KindRemoved:       color.New(color.FgRed),
		},
		key:  color.RGB(128, 168, 196),
		dim:  color.New(color.Faint),
		pass: color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
	}
	for _, c := range p.all() {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) all() []*color.Color {
	out := []*color.Color{p.key, p.dim, p.pass, p.fail}
	for _, c := range p.kinds {
		out = append(out, c)
	}
	return out
}

var kindMarkers = map[jdelta.Kind]string{
	jdelta.KindMatch:         "=",
	jdelta.KindValueMismatch: "~",
	jdelta.KindTypeMismatch:  "!",
	jdelta.KindAdded:         "+",
	jdelta.KindRemoved:       "-",
}

type textWriter struct {
	w        io.Writer
	p        palette
	diffOnly bool
}

// writeReport prints the report score followed by its diff tree. With
// diffOnly set, matching subtrees are omitted.
func (t textWriter) writeReport(r *jdelta.Report, threshold float64) {
	verdict := t.p.pass.Sprint("PASS")
	if r.Score < threshold {
		verdict = t.p.fail.Sprint("FAIL")
	}
	fmt.Fprintf(t.w, "%s score %.4f\n", verdict, r.Score)
	if !r.Root.IsContainer() {
		t.writeNode(".", r.Root, 0)
		return
	}
	for _, c := range r.Root.Children {
		t.writeNode(c.Key, c.Node, 0)
	}
}

func (t textWriter) writeNode(key string, n *jdelta.Node, depth int) {
	if t.diffOnly && n.Kind == jdelta.KindMatch {
		return
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(t.p.kinds[n.Kind].Sprint(kindMarkers[n.Kind]))
	b.WriteByte(' ')
	b.WriteString(t.p.key.Sprint(key))
	if s, ok := n.Score.Get(); ok {
		fmt.Fprintf(&b, " %.4f", s)
	}
	switch {
	case n.IsContainer():
	case n.Src != nil && n.Dst != nil && n.Kind == jdelta.KindMatch:
		fmt.Fprintf(&b, " %s", n.Src.Value)
	case n.Src != nil && n.Dst != nil:
		fmt.Fprintf(&b, " %s -> %s", describe(n.Src, n.Kind), describe(n.Dst, n.Kind))
	case n.Src != nil:
		fmt.Fprintf(&b, " %s", n.Src.Value)
	case n.Dst != nil:
		fmt.Fprintf(&b, " %s", n.Dst.Value)
	}
	if len(n.Description) > 0 {
		b.WriteByte(' ')
		b.WriteString(t.p.dim.Sprintf("(%s)", strings.Join(n.Description, "; ")))
	}
	fmt.Fprintln(t.w, b.String())

	for _, c := range n.Children {
		t.writeNode(c.Key, c.Node, depth+1)
	}
}

// describe adds the type name to type mismatch renderings, where the value
// alone can be ambiguous.
func describe(r *jdelta.Rendered, k jdelta.Kind) string {
	if k == jdelta.KindTypeMismatch {
		return r.Type + " " + r.Value
	}
	return r.Value
}
