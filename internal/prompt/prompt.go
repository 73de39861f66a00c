// Package prompt assembles the natural-language instructions sent to the
// text-generation provider.
package prompt

import "strings"

// ExamplesHeader introduces the few-shot block of a prompt.
const ExamplesHeader = "Ejemplos de referencia:"

// Entry is a single labelled value of a prompt context block.
type Entry struct {
	Label string
	Value string
}

// Context is an ordered label/value block. Entries render in the order they
// were added.
type Context struct {
	entries []Entry
}

// NewContext returns a context holding the given entries in order.
func NewContext(entries ...Entry) Context {
	return Context{entries: append([]Entry(nil), entries...)}
}

// Add appends an entry and returns the context for chaining.
func (c *Context) Add(label, value string) *Context {
	c.entries = append(c.entries, Entry{Label: label, Value: value})
	return c
}

// Entries returns a copy of the entries in insertion order.
func (c Context) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len reports the number of entries.
func (c Context) Len() int { return len(c.entries) }

// Request carries everything a prompt is assembled from. Examples is optional.
type Request struct {
	Task       string
	Context    Context
	Directives []string
	Examples   []string
}

// Build renders the request with a fixed layout: the task line, the context
// block, the directive block and, when present, the examples block, each
// separated by a blank line. Empty blocks are omitted.
func Build(r Request) string {
	var b strings.Builder
	b.WriteString(r.Task)
	b.WriteByte('\n')

	if len(r.Context.entries) > 0 {
		b.WriteByte('\n')
		for _, e := range r.Context.entries {
			b.WriteString(e.Label)
			b.WriteString(": ")
			b.WriteString(e.Value)
			b.WriteByte('\n')
		}
	}

	if len(r.Directives) > 0 {
		b.WriteByte('\n')
		for _, d := range r.Directives {
			b.WriteString(d)
			b.WriteByte('\n')
		}
	}

	if len(r.Examples) > 0 {
		b.WriteByte('\n')
		b.WriteString(ExamplesHeader)
		b.WriteByte('\n')
		for _, ex := range r.Examples {
			b.WriteString(ex)
			b.WriteByte('\n')
		}
	}

	return b.String()
}
