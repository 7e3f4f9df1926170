package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

func TestCompilePattern_Semantics(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		text    string
		matches bool
	}{
		{"negative lookahead blocks", Source{Pattern: "^(?!Official).*Trailer"}, "Fan Trailer", true},
		{"negative lookahead spares", Source{Pattern: "^(?!Official).*Trailer"}, "Official Trailer", false},
		{"backreference", Source{Pattern: `^(\w)\1`}, "aab", true},
		{"backreference miss", Source{Pattern: `^(\w)\1`}, "abb", false},
		{"ignore case", Source{Pattern: "learning", Flags: "i"}, "Learning Go", true},
		{"case sensitive", Source{Pattern: "learning"}, "Learning Go", false},
		{"dot all", Source{Pattern: "a.b", Flags: "s"}, "a\nb", true},
		{"dot without s", Source{Pattern: "a.b"}, "a\nb", false},
		{"sticky at start", Source{Pattern: "abc", Flags: "y"}, "abcx", true},
		{"sticky elsewhere", Source{Pattern: "abc", Flags: "y"}, "xabc", false},
		{"global is a no-op", Source{Pattern: "abc", Flags: "g"}, "xabc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePattern(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, p.MatchString(tt.text))
		})
	}
}

func TestCompilePattern_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		msg  string
	}{
		{"unclosed group", Source{Pattern: "(unclosed"}, "compiling pattern"},
		{"unknown flag", Source{Pattern: "x", Flags: "q"}, "unsupported flag"},
		{"duplicate flag", Source{Pattern: "x", Flags: "ii"}, "duplicate flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompilePattern(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCompile_LookaroundPatternKept(t *testing.T) {
	c, errs := Compile(Spec{Patterns: map[string][]Source{
		Title: {{Pattern: "^(?!Official).*Trailer"}},
	}}, quietLogger())
	require.Empty(t, errs)
	require.False(t, c.IsEmpty())

	props := map[string]tree.PathSpec{Title: tree.Path("t")}
	assert.True(t, c.Match(props, map[string]interface{}{"t": "Fan Trailer"}))
	assert.False(t, c.Match(props, map[string]interface{}{"t": "Official Trailer"}))
}

func TestPattern_SourceAndString(t *testing.T) {
	p, err := CompilePattern(Source{Pattern: "x", Flags: "i"})
	require.NoError(t, err)

	assert.Equal(t, Source{Pattern: "x", Flags: "i"}, p.Source())
	assert.Equal(t, "/x/i", p.String())
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("(") })
	assert.True(t, MustCompile("^FE").MatchString("FEtrending"))
}
