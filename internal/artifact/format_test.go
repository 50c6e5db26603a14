package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCSSBasic(t *testing.T) {
	out, err := Format(KindCSS, "button{color:red}")
	require.NoError(t, err)
	require.Equal(t, "button {\n  color: red;\n}", out)
}

func TestFormatCSSMultipleRules(t *testing.T) {
	out, err := Format(KindCSS, "h1{font-size:2em;margin:0} p { color : blue ; }")
	require.NoError(t, err)
	require.Equal(t, "h1 {\n  font-size: 2em;\n  margin: 0;\n}\n\np {\n  color: blue;\n}", out)
}

func TestFormatCSSNestedAtRule(t *testing.T) {
	out, err := Format(KindCSS, "@media (max-width: 600px){body{margin:0}}")
	require.NoError(t, err)
	require.Equal(t, "@media (max-width: 600px) {\n  body {\n    margin: 0;\n  }\n}", out)
}

func TestFormatCSSMalformed(t *testing.T) {
	for _, src := range []string{"button{color:red", "color:red", "{}"} {
		_, err := Format(KindCSS, src)
		require.Error(t, err, "src=%q", src)
	}
}

func TestFormatHTMLSingleLine(t *testing.T) {
	out, err := Format(KindHTML, "  <button>Hi</button>  ")
	require.NoError(t, err)
	require.Equal(t, "<button>Hi</button>", out)
}

func TestFormatHTMLReindents(t *testing.T) {
	src := "<div>\n<p>hello</p>\n<br>\n</div>"
	out, err := Format(KindHTML, src)
	require.NoError(t, err)
	require.Equal(t, "<div>\n  <p>hello</p>\n  <br>\n</div>", out)
}

func TestFormatHTMLUnbalanced(t *testing.T) {
	_, err := Format(KindHTML, "<div>\n<p>dangling\n")
	require.Error(t, err)
}

func TestFormatJSReindents(t *testing.T) {
	src := "function hi() {\nconsole.log('{');\nif (x) {\nrun();\n}\n}"
	out, err := Format(KindJS, src)
	require.NoError(t, err)
	require.Equal(t, "function hi() {\n  console.log('{');\n  if (x) {\n    run();\n  }\n}", out)
}

func TestFormatJSIgnoresBracketsInStringsAndComments(t *testing.T) {
	src := "const a = \"}{\"; // } not counted\nconst b = 1;"
	out, err := Format(KindJS, src)
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestFormatJSUnbalanced(t *testing.T) {
	_, err := Format(KindJS, "function broken() {")
	require.Error(t, err)
}

func TestFormatEmptyFragments(t *testing.T) {
	for _, kind := range []Kind{KindHTML, KindCSS, KindJS} {
		out, err := Format(kind, "")
		require.NoError(t, err)
		require.Empty(t, out)
	}
}

// Formatting already formatted output of the same kind must be a no-op.
func TestFormatIdempotent(t *testing.T) {
	cases := []struct {
		kind Kind
		src  string
	}{
		{KindCSS, "button{color:red}"},
		{KindCSS, "@media (max-width: 600px){body{margin:0}} a{color:red}"},
		{KindHTML, "<div>\n<p>hello</p>\n</div>"},
		{KindHTML, "<button>Hi</button>"},
		{KindJS, "function hi() {\nconsole.log('hi');\n}"},
	}
	for _, tc := range cases {
		once, err := Format(tc.kind, tc.src)
		require.NoError(t, err)
		twice, err := Format(tc.kind, once)
		require.NoError(t, err)
		require.Equal(t, once, twice, "kind=%d src=%q", tc.kind, tc.src)
	}
}
