package stream

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/arloliu/spicestream/diag"
	"github.com/arloliu/spicestream/endian"
	"github.com/arloliu/spicestream/errs"
	"github.com/stretchr/testify/require"
)

func newTestInput(r io.Reader, sink *diag.Sink) *Input {
	if sink == nil {
		sink = diag.Nop()
	}

	return newInput("test.txt", bufio.NewReader(r), 0, endian.GetLittleEndianEngine(), sink)
}

func TestInputPushback(t *testing.T) {
	in := newTestInput(strings.NewReader("first\nsecond\n"), nil)
	defer in.release()

	line, err := in.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "first", string(line))

	require.NoError(t, in.Unread(line))
	require.True(t, in.HasPending())
	require.ErrorIs(t, in.Unread([]byte("again")), errs.ErrPushbackFull)

	line, err = in.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "first", string(line))
	require.False(t, in.HasPending())

	line, err = in.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "second", string(line))

	_, err = in.ReadLine()
	require.ErrorIs(t, err, io.EOF)

	// Re-delivered lines are not counted twice.
	require.Equal(t, int64(2), in.Counters().Lines)
}

func TestInputPushbackOwnStorage(t *testing.T) {
	in := newTestInput(strings.NewReader("aaaa\nbbbb\n"), nil)
	defer in.release()

	line, err := in.ReadLine()
	require.NoError(t, err)
	require.NoError(t, in.Unread(line))

	// Overwrite the line buffer the pushed-back line came from.
	_, err = in.line.ReadLine(in.br)
	require.NoError(t, err)

	line, err = in.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "aaaa", string(line))
}

func TestInputReadError(t *testing.T) {
	boom := errors.New("boom")
	in := newTestInput(iotest.ErrReader(boom), nil)
	defer in.release()

	_, err := in.ReadLine()
	require.ErrorIs(t, err, errs.ErrIO)
	require.ErrorIs(t, err, boom)
}

func TestInputReadFull(t *testing.T) {
	in := newTestInput(strings.NewReader("abcdefg"), nil)
	defer in.release()

	p := make([]byte, 4)
	require.NoError(t, in.ReadFull(p))
	require.Equal(t, "abcd", string(p))

	require.ErrorIs(t, in.ReadFull(p), errs.ErrTruncatedFile)
	require.ErrorIs(t, in.ReadFull(p), io.EOF)
}

func TestInputPeek(t *testing.T) {
	in := newTestInput(strings.NewReader("abc"), nil)
	defer in.release()

	head, err := in.Peek(2)
	require.NoError(t, err)
	require.Equal(t, "ab", string(head))

	head, err = in.Peek(8)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "abc", string(head))
}

func TestInputByteOrder(t *testing.T) {
	in := newTestInput(strings.NewReader(""), nil)
	defer in.release()

	require.Equal(t, !endian.IsNativeLittleEndian(), in.Swapped())

	in.SetByteOrder(endian.GetBigEndianEngine())
	require.Equal(t, endian.IsNativeLittleEndian(), in.Swapped())
}

func TestInputMsg(t *testing.T) {
	var msgs []string
	sink := diag.NewHookSink(func(msg string) { msgs = append(msgs, msg) }, diag.LevelWarn)

	in := newTestInput(strings.NewReader("x\ny\n"), sink)
	defer in.release()
	in.id = "lines"

	_, err := in.ReadLine()
	require.NoError(t, err)
	_, err = in.ReadLine()
	require.NoError(t, err)

	in.Warnf("expected %d values, got %d", 3, 1)
	in.Msg(diag.LevelDebug, "dropped")

	require.Equal(t, []string{"WARN lines: expected 3 values, got 1 source=test.txt line=2"}, msgs)
}

func TestInputLineBufferSize(t *testing.T) {
	in := newInput("x", bufio.NewReader(strings.NewReader("")), 4096, endian.GetLittleEndianEngine(), diag.Nop())
	defer in.release()

	require.GreaterOrEqual(t, in.line.Cap(), 4096)
}
