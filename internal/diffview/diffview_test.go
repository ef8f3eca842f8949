package diffview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const before = `int a;
void pd_loop(void)
{
	run();
}
int b;
`

const after = `int a;
int b;
`

func TestUnified(t *testing.T) {
	diff, err := Unified("pd.c", before, after)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(diff, "--- a/pd.c\n+++ b/pd.c\n"), diff)
	assert.Contains(t, diff, "@@ -1,")
	assert.Contains(t, diff, "-void pd_loop(void)\n")
	assert.Contains(t, diff, "-\trun();\n")
	assert.Contains(t, diff, " int b;\n")
	assert.NotContains(t, diff, "+int")
}

func TestUnified_Equal(t *testing.T) {
	diff, err := Unified("pd.c", before, before)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "pd.c", before, after, false))
	want, err := Unified("pd.c", before, after)
	require.NoError(t, err)
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, "pd.c", after, after, true))
	assert.Zero(t, buf.Len())
}

func TestColorize_KeepsText(t *testing.T) {
	diff, err := Unified("pd.c", before, after)
	require.NoError(t, err)

	colored := Colorize(diff)
	for _, line := range strings.Split(strings.TrimSpace(diff), "\n") {
		assert.Contains(t, colored, line)
	}
	assert.Equal(t, strings.Count(diff, "\n"), strings.Count(colored, "\n"))
}
