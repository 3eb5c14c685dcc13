package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSingleLineChange(t *testing.T) {
	t.Parallel()

	res, err := Compute("a\nb\nc\n", "a\nB\nc\n", "repl.py (original)", "repl.py (patched)")
	require.NoError(t, err)

	want := "--- repl.py (original)\n" +
		"+++ repl.py (patched)\n" +
		"@@ -1,3 +1,3 @@\n" +
		" a\n" +
		"-b\n" +
		"+B\n" +
		" c\n"
	assert.Equal(t, want, res.Text)
	assert.Equal(t, Stats{Added: 1, Removed: 1}, res.Stats)
	assert.Contains(t, res.Lines(), "-b")
	assert.Contains(t, res.Lines(), "+B")
	assert.Contains(t, res.Lines(), " a")
	assert.Contains(t, res.Lines(), " c")
}

func TestComputeIdenticalIsEmpty(t *testing.T) {
	t.Parallel()

	res, err := Compute("same\n", "same\n", "a", "b")
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Nil(t, res.Lines())
	assert.Equal(t, Stats{}, res.Stats)
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()

	original := "one\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nnine\nten\n"
	replacement := "one\nTWO\nthree\nfour\nfive\nsix\nseven\neight\nNINE\nten\neleven\n"

	first, err := Compute(original, replacement, "x", "y")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Compute(original, replacement, "x", "y")
		require.NoError(t, err)
		assert.Equal(t, first.Text, again.Text)
	}
	assert.Equal(t, Stats{Added: 3, Removed: 2}, first.Stats)
}

func TestComputeSeparatesDistantHunks(t *testing.T) {
	t.Parallel()

	original := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n"
	replacement := "one\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\ntwelve\n"

	res, err := Compute(original, replacement, "x", "y")
	require.NoError(t, err)

	hunks := 0
	for _, line := range res.Lines() {
		if len(line) >= 2 && line[:2] == "@@" {
			hunks++
		}
	}
	assert.Equal(t, 2, hunks)
	assert.Contains(t, res.Text, "@@ -1,4 +1,4 @@\n")
	assert.Contains(t, res.Text, "@@ -9,4 +9,4 @@\n")
}

func TestComputeTrailingNewlineOnly(t *testing.T) {
	t.Parallel()

	res, err := Compute("a\nb", "a\nb\n", "x", "y")
	require.NoError(t, err)
	require.False(t, res.Empty())
	assert.Contains(t, res.Text, "-b\n\\ No newline at end of file\n+b\n")
}

func TestComputeFromEmpty(t *testing.T) {
	t.Parallel()

	res, err := Compute("", "x\ny\n", "x", "y")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "@@ -0,0 +1,2 @@\n+x\n+y\n")
	assert.Equal(t, Stats{Added: 2}, res.Stats)
}

func TestLineStats(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		a, b string
		want Stats
	}{
		"identical":      {a: "x\n", b: "x\n", want: Stats{}},
		"append":         {a: "x\n", b: "x\ny\n", want: Stats{Added: 1}},
		"delete":         {a: "x\ny\nz\n", b: "x\n", want: Stats{Removed: 2}},
		"replace":        {a: "x\ny\n", b: "x\nY\n", want: Stats{Added: 1, Removed: 1}},
		"no final break": {a: "x", b: "y", want: Stats{Added: 1, Removed: 1}},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, LineStats(tc.a, tc.b))
		})
	}
}

func TestResultLines(t *testing.T) {
	t.Parallel()

	res, err := Compute("x\n", "y", "old", "new")
	require.NoError(t, err)

	want := []string{
		"--- old",
		"+++ new",
		"@@ -1 +1 @@",
		"-x",
		"+y",
		"\\ No newline at end of file",
	}
	if d := cmp.Diff(want, res.Lines()); d != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", d)
	}
	assert.Nil(t, Result{}.Lines())
}
