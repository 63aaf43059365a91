package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomKeysSortedAndFiltered(t *testing.T) {
	o := Options{Extra: map[string]string{
		"uv-zeta":  "z",
		"verbose":  "x",
		"uv-alpha": "a",
		"uvbeta":   "b",
	}}

	assert.Equal(t, []string{"uv-alpha", "uv-zeta"}, o.CustomKeys())
}

func TestCloneIsIndependent(t *testing.T) {
	o := Options{
		From:  "in.md",
		Extra: map[string]string{"uv-a": "1"},
		Flags: map[string]bool{"verbose": true},
	}

	c := o.Clone()
	c.Extra["uv-a"] = "2"
	c.Flags["verbose"] = false

	assert.Equal(t, "1", o.Extra["uv-a"])
	assert.True(t, o.Flag("verbose"))
	assert.Equal(t, "in.md", c.From)
}

func TestWithExtraOnNilMap(t *testing.T) {
	o := Options{}
	o2 := o.WithExtra("uv-title", "Demo")

	assert.Nil(t, o.Extra)
	assert.Equal(t, "Demo", o2.Extra["uv-title"])
}

func TestSourceHelpers(t *testing.T) {
	tests := []struct {
		from      string
		wantStdin bool
		wantFile  bool
	}{
		{"", false, false},
		{"-", true, false},
		{"in.md", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			o := Options{From: tt.from}
			assert.Equal(t, tt.wantStdin, o.UsesStdin())
			assert.Equal(t, tt.wantFile, o.HasFile())
		})
	}
}
