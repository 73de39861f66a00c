package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLayout(t *testing.T) {
	ctx := NewContext()
	ctx.Add("Puesto", "Backend Developer").Add("Descripción del trabajo", "Mantengo APIs REST")

	got := Build(Request{
		Task:       "Eres un asistente experto en CVs.",
		Context:    ctx,
		Directives: []string{"Sugiere 3 logros cuantificables", "Un logro por línea"},
		Examples:   []string{"Reduje la latencia un 40%"},
	})

	want := "Eres un asistente experto en CVs.\n" +
		"\n" +
		"Puesto: Backend Developer\n" +
		"Descripción del trabajo: Mantengo APIs REST\n" +
		"\n" +
		"Sugiere 3 logros cuantificables\n" +
		"Un logro por línea\n" +
		"\n" +
		ExamplesHeader + "\n" +
		"Reduje la latencia un 40%\n"
	assert.Equal(t, want, got)
}

func TestBuildIsDeterministic(t *testing.T) {
	req := Request{
		Task:       "task",
		Context:    NewContext(Entry{"B", "2"}, Entry{"A", "1"}),
		Directives: []string{"x", "y"},
	}
	first := Build(req)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Build(req))
	}
	assert.Less(t, strings.Index(first, "B: 2"), strings.Index(first, "A: 1"), "insertion order")
}

func TestBuildOmitsEmptyBlocks(t *testing.T) {
	assert.Equal(t, "only task\n", Build(Request{Task: "only task"}))

	got := Build(Request{Task: "t", Directives: []string{"d"}})
	assert.Equal(t, "t\n\nd\n", got)
	assert.NotContains(t, got, ExamplesHeader)
}

func TestBuildKeepsEveryDirectiveAndExample(t *testing.T) {
	directives := []string{"uno", "dos", "uno", ""}
	examples := []string{"a", "b", "c"}
	got := Build(Request{Task: "t", Directives: directives, Examples: examples})

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	// task, blank, 4 directives, blank, header, 3 examples
	require.Len(t, lines, 11)
	assert.Equal(t, directives, lines[2:6])
	assert.Equal(t, examples, lines[8:])
}

func TestContextEntriesIsACopy(t *testing.T) {
	ctx := NewContext(Entry{"k", "v"})
	entries := ctx.Entries()
	entries[0].Value = "changed"
	assert.Equal(t, "v", ctx.Entries()[0].Value)
	assert.Equal(t, 1, ctx.Len())
}
