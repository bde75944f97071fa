package pool

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/spicestream/linebuf"
)

func TestGetFloat64Slice(t *testing.T) {
	t.Run("returns zeroed slice with correct size", func(t *testing.T) {
		slice, release := GetFloat64Slice(100)
		defer release()

		require.Len(t, slice, 100)
		for _, v := range slice {
			require.Zero(t, v)
		}
	})

	t.Run("clears reused slice", func(t *testing.T) {
		slice, release := GetFloat64Slice(8)
		for i := range slice {
			slice[i] = float64(i + 1)
		}
		release()

		again, release2 := GetFloat64Slice(8)
		defer release2()
		for _, v := range again {
			require.Zero(t, v)
		}
	})

	t.Run("grows when capacity insufficient", func(t *testing.T) {
		_, release := GetFloat64Slice(4)
		release()

		slice, release2 := GetFloat64Slice(1000)
		defer release2()
		require.Len(t, slice, 1000)
	})
}

func TestLineBufferPool(t *testing.T) {
	t.Run("returns empty buffer", func(t *testing.T) {
		buf := GetLineBuffer()
		require.NotNil(t, buf)
		require.Equal(t, 0, buf.Len())

		_, err := buf.ReadLine(bufio.NewReader(strings.NewReader("abc\n")))
		require.NoError(t, err)
		PutLineBuffer(buf)

		again := GetLineBuffer()
		require.Equal(t, 0, again.Len())
		PutLineBuffer(again)
	})

	t.Run("drops oversized buffers", func(t *testing.T) {
		buf := linebuf.NewBuffer(LineBufferMaxThreshold * 2)
		require.NotPanics(t, func() { PutLineBuffer(buf) })
		require.NotPanics(t, func() { PutLineBuffer(nil) })
	})
}
