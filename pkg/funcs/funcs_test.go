package funcs

import (
	"errors"
	"testing"

	"github.com/l3aro/cprep/pkg/syntax"
	"github.com/l3aro/cprep/pkg/textbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `#include "usb_pe_sm.h"

static void pe_src_ready_entry(int port);

static int counter;

/*
 * Enter the ready state.
 */
static void pe_src_ready_entry(int port)
{
	if (port > 0) {
		counter++;
	}
}

static void pe_src_ready_run(int port)
{
	pe_src_ready_entry(port);
}
`

func TestRemoveDefinition(t *testing.T) {
	for _, engine := range []syntax.Engine{syntax.EngineLines, syntax.EngineAST} {
		t.Run(string(engine), func(t *testing.T) {
			res, err := Remove(textbuf.Split(source), []string{"pe_src_ready_entry"}, Options{Engine: engine})
			require.NoError(t, err)

			want := `#include "usb_pe_sm.h"

static void pe_src_ready_entry(int port);

static int counter;


static void pe_src_ready_run(int port)
{
	pe_src_ready_entry(port);
}
`
			assert.Equal(t, want, res.Lines.String())
			require.Len(t, res.Removals, 1)
			assert.Equal(t, textbuf.Span{Start: 6, End: 14}, res.Removals[0].Span)
			assert.Empty(t, res.Missing)
		})
	}
}

func TestRemoveKeepsOtherLines(t *testing.T) {
	lines := textbuf.Split(source)
	res, err := Remove(lines, []string{"pe_src_ready_run"}, Options{})
	require.NoError(t, err)

	// Lines 16-19 (0-based) are the body; the blank line before it stays.
	want := textbuf.Remove(lines, []textbuf.Span{{Start: 16, End: 19}})
	assert.Equal(t, want.String(), res.Lines.String())
}

func TestRemoveMissingName(t *testing.T) {
	res, err := Remove(textbuf.Split(source), []string{"pe_snk_ready_entry"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, source, res.Lines.String())
	assert.Equal(t, []string{"pe_snk_ready_entry"}, res.Missing)
	assert.False(t, res.Changed())
}

func TestRemoveIdempotent(t *testing.T) {
	names := []string{"pe_src_ready_entry", "pe_src_ready_run"}
	first, err := Remove(textbuf.Split(source), names, Options{})
	require.NoError(t, err)

	second, err := Remove(first.Lines, names, Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Lines.String(), second.Lines.String())
	assert.False(t, second.Changed())
}

func TestRemoveFirstOrAll(t *testing.T) {
	src := `void dup(void)
{
}

void dup(void)
{
}
`
	res, err := Remove(textbuf.Split(src), []string{"dup"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "\nvoid dup(void)\n{\n}\n", res.Lines.String())

	res, err = Remove(textbuf.Split(src), []string{"dup"}, Options{All: true})
	require.NoError(t, err)
	assert.Equal(t, "\n", res.Lines.String())
	assert.Len(t, res.Removals, 2)
}

func TestRemoveOneLineAndMultiLineSignature(t *testing.T) {
	src := `static int one(void) { return 1; }
int keep;
static int
two(int a,
    int b)
{
	return a + b;
}
int tail;
`
	res, err := Remove(textbuf.Split(src), []string{"one", "two"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "int keep;\nstatic int\nint tail;\n", res.Lines.String())
}

func TestRemoveIgnoresMacroLines(t *testing.T) {
	src := `#define CALL() target()
void other(void)
{
	target();
}
`
	res, err := Remove(textbuf.Split(src), []string{"target"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, src, res.Lines.String())
	assert.Equal(t, []string{"target"}, res.Missing)
}

func TestRemoveSkipsMacroContinuations(t *testing.T) {
	src := "#define KICK(port) \\\n" +
		"\tdo { pe_kick(port); } while (0)\n" +
		"\n" +
		"static void pe_kick(int port)\n" +
		"{\n" +
		"\tport++;\n" +
		"}\n"

	for _, engine := range []syntax.Engine{syntax.EngineLines, syntax.EngineAST} {
		t.Run(string(engine), func(t *testing.T) {
			res, err := Remove(textbuf.Split(src), []string{"pe_kick"}, Options{Engine: engine})
			require.NoError(t, err)

			want := "#define KICK(port) \\\n\tdo { pe_kick(port); } while (0)\n\n"
			assert.Equal(t, want, res.Lines.String())
			require.Len(t, res.Removals, 1)
			assert.Equal(t, textbuf.Span{Start: 3, End: 6}, res.Removals[0].Span)
		})
	}
}

func TestRemoveOldStyleDefinition(t *testing.T) {
	src := `int keep;
int sum(a, b)
int a;
char *b;
{
	return a + *b;
}
int add(a) int a; { return a + 1; }
void noreturn_fn(void) __attribute__((noreturn));
`
	res, err := Remove(textbuf.Split(src), []string{"sum", "add", "noreturn_fn"}, Options{})
	require.NoError(t, err)

	want := "int keep;\nvoid noreturn_fn(void) __attribute__((noreturn));\n"
	assert.Equal(t, want, res.Lines.String())
	assert.Equal(t, []string{"noreturn_fn"}, res.Missing)
}

func TestRemoveIgnoresInitializerCalls(t *testing.T) {
	src := `static int table[] = { pick(1), pick(2) };
int value = pick(3);
`
	res, err := Remove(textbuf.Split(src), []string{"pick"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, src, res.Lines.String())
	assert.Equal(t, []string{"pick"}, res.Missing)
}

func TestRemoveUnbalanced(t *testing.T) {
	src := "void broken(void)\n{\n\tif (x) {\n}\n"

	_, err := Remove(textbuf.Split(src), []string{"broken"}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, textbuf.ErrMalformed))

	var me *textbuf.MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, textbuf.KindUnbalancedBraces, me.Kind)
	assert.Equal(t, 1, me.Line)

	res, err := Remove(textbuf.Split(src), []string{"broken"}, Options{Lenient: true})
	require.NoError(t, err)
	assert.Equal(t, src, res.Lines.String())
	assert.Len(t, res.Skipped, 1)
}

func TestRemoveHeaderDeclarations(t *testing.T) {
	header := `#ifndef USB_PE_SM_H
#define USB_PE_SM_H

void
pe_got_hard_reset(int port);
bar(int port);
barrel(int port);
	bar (void);

#endif
`
	res, err := Remove(textbuf.Split(header), []string{"bar", "pe_got_hard_reset"}, Options{Header: true})
	require.NoError(t, err)

	want := `#ifndef USB_PE_SM_H
#define USB_PE_SM_H

void
barrel(int port);

#endif
`
	assert.Equal(t, want, res.Lines.String())
	assert.Len(t, res.Removals, 3)
}

func TestRemoveHeaderDeclarationsAST(t *testing.T) {
	header := `#ifndef USB_PE_SM_H
#define USB_PE_SM_H

void pe_got_hard_reset(int port);
int pe_is_running(int port);

#endif
`
	res, err := Remove(textbuf.Split(header), []string{"pe_got_hard_reset"}, Options{Header: true, Engine: syntax.EngineAST})
	require.NoError(t, err)
	assert.NotContains(t, res.Lines.String(), "pe_got_hard_reset")
	assert.Contains(t, res.Lines.String(), "int pe_is_running(int port);")
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader("src/usb_pe_sm.h"))
	assert.False(t, IsHeader("src/usb_pe_drp_sm.c"))
	assert.False(t, IsHeader("src/notes.hpp"))
}
