package diff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompute_UnchangedText(t *testing.T) {
	req := require.New(t)

	req.Nil(Compute("", ""))
	req.Nil(Compute("a", "a"))
	req.Nil(Compute("abc", "abc"))
}

func TestCompute_FullTextAddition(t *testing.T) {
	req := require.New(t)

	req.Equal(&Change{Start: 0, End: 0, Text: "a"}, Compute("", "a"))
	req.Equal(&Change{Start: 0, End: 0, Text: "ab"}, Compute("", "ab"))
	req.Equal(&Change{Start: 0, End: 0, Text: "abc"}, Compute("", "abc"))
}

func TestCompute_FullTextRemoval(t *testing.T) {
	req := require.New(t)

	req.Equal(&Change{Start: 0, End: 1, Text: ""}, Compute("a", ""))
	req.Equal(&Change{Start: 0, End: 2, Text: ""}, Compute("ab", ""))
	req.Equal(&Change{Start: 0, End: 3, Text: ""}, Compute("abc", ""))
}

func TestCompute_FullTextReplacement(t *testing.T) {
	req := require.New(t)

	req.Equal(&Change{Start: 0, End: 1, Text: "b"}, Compute("a", "b"))
	req.Equal(&Change{Start: 0, End: 1, Text: "bc"}, Compute("a", "bc"))
	req.Equal(&Change{Start: 0, End: 2, Text: "b"}, Compute("za", "b"))
}

func TestCompute_SuffixTextAddition(t *testing.T) {
	req := require.New(t)

	req.Equal(&Change{Start: 1, End: 1, Text: "b"}, Compute("a", "ab"))
	req.Equal(&Change{Start: 2, End: 2, Text: "b"}, Compute("za", "zab"))
	req.Equal(&Change{Start: 2, End: 2, Text: "bc"}, Compute("za", "zabc"))
}

func TestCompute_SuffixTextRemoval(t *testing.T) {
	req := require.New(t)

	req.Equal(&Change{Start: 1, End: 2, Text: ""}, Compute("ab", "a"))
	req.Equal(&Change{Start: 2, End: 3, Text: ""}, Compute("zab", "za"))
	req.Equal(&Change{Start: 2, End: 4, Text: ""}, Compute("zabc", "za"))
}

func TestCompute_PrefixTextAddition(t *testing.T) {
	req := require.New(t)

	req.Equal(&Change{Start: 0, End: 0, Text: "z"}, Compute("a", "za"))
	req.Equal(&Change{Start: 0, End: 0, Text: "z"}, Compute("ab", "zab"))
	req.Equal(&Change{Start: 0, End: 0, Text: "yz"}, Compute("ab", "yzab"))
}

func TestCompute_PrefixTextRemoval(t *testing.T) {
	req := require.New(t)

	req.Equal(&Change{Start: 0, End: 1, Text: ""}, Compute("za", "a"))
	req.Equal(&Change{Start: 0, End: 1, Text: ""}, Compute("zab", "ab"))
	req.Equal(&Change{Start: 0, End: 2, Text: ""}, Compute("yza", "a"))
}

func TestCompute_InteriorEdit(t *testing.T) {
	req := require.New(t)

	// Both ends unchanged: only the interior range is reported.
	req.Equal(&Change{Start: 1, End: 2, Text: "x"}, Compute("abc", "axc"))
	req.Equal(&Change{Start: 2, End: 2, Text: "new "}, Compute("a sentence", "a new sentence"))
	req.Equal(&Change{Start: 2, End: 6, Text: ""}, Compute("a new sentence", "a sentence"))
}

func TestCompute_RoundTrip(t *testing.T) {
	req := require.New(t)

	cases := []struct{ prev, next string }{
		{"", ""},
		{"", "hello"},
		{"hello", ""},
		{"hello", "world"},
		{"hello world", "hello brave world"},
		{"hello brave world", "hello world"},
		{"abcdef", "abXYef"},
		{"typing", "typing more"},
		{"čau světe", "čau krásný světe"},
		{"aa", "aaa"},
		{"aba", "a"},
		{"ab", "ba"},
	}

	for _, c := range cases {
		change := Compute(c.prev, c.next)
		req.Equal(c.next, Apply(c.prev, change), "prev=%q next=%q", c.prev, c.next)
	}
}
