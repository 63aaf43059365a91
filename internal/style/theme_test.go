package style

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemePlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	th := NewTheme(&buf)

	assert.Equal(t, "Error [FileNotFound] file not found: a.md", th.ErrorLine("FileNotFound", "file not found: a.md"))
	assert.Equal(t, "Error boom", th.ErrorLine("", "boom"))
	assert.Equal(t, "  path: a.md", th.Detail("path", "a.md"))
	assert.Equal(t, "fallback: used f_task.md", th.Notice("fallback:", "used f_task.md"))
}
