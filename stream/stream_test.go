package stream

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arloliu/spicestream/diag"
	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
	"github.com/arloliu/spicestream/internal/collision"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

const threeRows = "#lines time v(out) i(r1)\n0 1.0 0.5\n1e-9 1.1 0.6\n2e-9 1.2 0.7\n"

func openString(t *testing.T, content string, opts ...Option) *Stream {
	t.Helper()

	opts = append([]Option{WithSink(diag.Nop())}, opts...)
	s, err := OpenReader(strings.NewReader(content), "test.txt", opts...)
	require.NoError(t, err)

	return s
}

func TestStreamThreeRows(t *testing.T) {
	s := openString(t, threeRows)
	defer s.Close()

	require.Equal(t, "lines", s.FormatName())
	require.Equal(t, "test.txt", s.Name())
	require.Equal(t, format.CompressionNone, s.Compression())
	require.Equal(t, "time", s.IVar().Name)
	require.Equal(t, format.Time, s.IVar().Type)
	require.Len(t, s.DVars(), 2)
	require.Equal(t, format.Voltage, s.DVars()[0].Type)
	require.Equal(t, format.Current, s.DVars()[1].Type)
	require.Equal(t, 2, s.NumCols())

	require.NoError(t, s.ReadSweep(nil))

	dvals := make([]float64, s.NumCols())
	var ivars []float64
	for {
		ivar, err := s.ReadRow(dvals)
		if err == ErrEndOfTable {
			break
		}
		require.NoError(t, err)
		ivars = append(ivars, ivar)
	}

	require.Equal(t, []float64{0, 1e-9, 2e-9}, ivars)
	require.InDelta(t, 1.2, dvals[0], 1e-12)
	require.InDelta(t, 0.7, dvals[1], 1e-12)

	_, err := s.ReadRow(dvals)
	require.ErrorIs(t, err, io.EOF)
	require.ErrorIs(t, s.ReadSweep(nil), io.EOF)

	c := s.Counters()
	require.Equal(t, int64(3), c.Rows)
	require.Equal(t, int64(1), c.Tables)
	require.Equal(t, int64(0), c.SweepSets)
	require.Equal(t, int64(4), c.Lines)
}

func TestStreamSweepTables(t *testing.T) {
	content := "#lines time v(out) @sweep\n@ 27\n0 1\n1 2\n@ 85\n0 3\n"
	s := openString(t, content)
	defer s.Close()

	require.Len(t, s.Sweeps(), 1)
	require.Equal(t, 0, s.Sweeps()[0].NCols)

	spar := make([]float64, 1)
	dvals := make([]float64, 1)

	var temps []float64
	var rows []int
	for {
		err := s.ReadSweep(spar)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		temps = append(temps, spar[0])

		n := 0
		for range s.Rows(dvals) {
			n++
		}
		require.NoError(t, s.Err())
		rows = append(rows, n)
	}

	require.Equal(t, []float64{27, 85}, temps)
	require.Equal(t, []int{2, 1}, rows)

	c := s.Counters()
	require.Equal(t, int64(3), c.Rows)
	require.Equal(t, int64(2), c.Tables)
	require.Equal(t, int64(2), c.SweepSets)
}

func TestStreamShortBuffer(t *testing.T) {
	s := openString(t, "#lines time v(a) v(b) @sweep\n@ 1\n0 1 2\n")
	defer s.Close()

	require.ErrorIs(t, s.ReadSweep(nil), errs.ErrShortBuffer)
	require.NoError(t, s.ReadSweep(make([]float64, 1)))

	_, err := s.ReadRow(make([]float64, 1))
	require.ErrorIs(t, err, errs.ErrShortBuffer)

	ivar, err := s.ReadRow(make([]float64, 2))
	require.NoError(t, err)
	require.Equal(t, 0.0, ivar)
}

func TestStreamRowsError(t *testing.T) {
	s := openString(t, "#lines time v(a)\n0 1\nbad\n1 2\n")
	defer s.Close()

	dvals := make([]float64, 1)
	n := 0
	for range s.Rows(dvals) {
		n++
	}
	require.Equal(t, 1, n)
	require.ErrorIs(t, s.Err(), errs.ErrMalformedRow)
}

func TestStreamRowsStopEarly(t *testing.T) {
	s := openString(t, threeRows)
	defer s.Close()

	dvals := make([]float64, 2)
	for ivar := range s.Rows(dvals) {
		require.Equal(t, 0.0, ivar)
		break
	}

	ivar, err := s.ReadRow(dvals)
	require.NoError(t, err)
	require.Equal(t, 1e-9, ivar)
}

func TestStreamLookupAndVarName(t *testing.T) {
	s := openString(t, "#lines time v(out) i(r1) @sweep\n")
	defer s.Close()

	v, cat, ok := s.Lookup("V(OUT)")
	require.True(t, ok)
	require.Equal(t, Dependent, cat)
	require.Equal(t, "v(out)", v.Name)
	require.Equal(t, 0, v.Col)

	v, cat, ok = s.Lookup("time")
	require.True(t, ok)
	require.Equal(t, Independent, cat)
	require.Equal(t, 1, v.NCols)

	_, cat, ok = s.Lookup("temp")
	require.True(t, ok)
	require.Equal(t, Sweep, cat)

	_, _, ok = s.Lookup("v(in)")
	require.False(t, ok)

	require.Equal(t, "time", s.VarName(Independent, 0))
	require.Equal(t, "i(r1)", s.VarName(Dependent, 1))
	require.Equal(t, "temp", s.VarName(Sweep, 0))
	require.Empty(t, s.VarName(Dependent, 2))
	require.Empty(t, s.VarName(Sweep, -1))
}

func TestStreamHeaderCopy(t *testing.T) {
	s := openString(t, threeRows)
	defer s.Close()

	h := s.Header()
	h.DVars[0].Name = "changed"
	require.Equal(t, "v(out)", s.DVars()[0].Name)
}

func TestOpenErrors(t *testing.T) {
	t.Run("Unrecognized", func(t *testing.T) {
		_, err := OpenReader(strings.NewReader("hello world\n"), "x", WithSink(diag.Nop()))
		require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := OpenReader(strings.NewReader(""), "x", WithSink(diag.Nop()))
		require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)
	})

	t.Run("UnknownFormatName", func(t *testing.T) {
		_, err := OpenReader(strings.NewReader(threeRows), "x", WithSink(diag.Nop()), WithFormat("nope"))
		require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)
	})

	t.Run("InconsistentHeader", func(t *testing.T) {
		_, err := OpenReader(strings.NewReader("#lines time v(a) @wide\n"), "x", WithSink(diag.Nop()))
		require.ErrorIs(t, err, errs.ErrInconsistentHeader)
	})

	t.Run("HeaderError", func(t *testing.T) {
		_, err := OpenReader(strings.NewReader("#lines\n"), "x", WithSink(diag.Nop()))
		require.ErrorIs(t, err, errs.ErrInconsistentHeader)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "missing.raw"), WithSink(diag.Nop()))
		require.ErrorIs(t, err, errs.ErrIO)
	})

	t.Run("InvalidOption", func(t *testing.T) {
		_, err := OpenReader(strings.NewReader(threeRows), "x", WithSniffSize(0))
		require.Error(t, err)
		require.Contains(t, err.Error(), "WithSniffSize")
	})

	t.Run("ErrorDiagnostic", func(t *testing.T) {
		var msgs []string
		sink := diag.NewHookSink(func(msg string) { msgs = append(msgs, msg) }, diag.LevelError)

		_, err := OpenReader(strings.NewReader("hello\n"), "x.txt", WithSink(sink))
		require.Error(t, err)
		require.Len(t, msgs, 1)
		require.True(t, strings.HasPrefix(msgs[0], "ERR stream: open x.txt"))
	})
}

func TestOpenWithFormat(t *testing.T) {
	// Detection would fail on the missing marker; the explicit name wins.
	s := openString(t, "#other time v(a)\n0 1\n", WithFormat("LINES"))
	defer s.Close()

	require.Equal(t, "lines", s.FormatName())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tran.txt")
	require.NoError(t, os.WriteFile(path, []byte(threeRows), 0o600))

	s, err := Open(path, WithSink(diag.Nop()))
	require.NoError(t, err)
	require.Equal(t, path, s.Name())
	require.NoError(t, s.Close())

	s, err = Open(path, WithSink(diag.Nop()), WithName("renamed"))
	require.NoError(t, err)
	require.Equal(t, "renamed", s.Name())
	require.NoError(t, s.Close())
}

func TestOpenCompressed(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(threeRows))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	s, err := OpenReader(bytes.NewReader(buf.Bytes()), "tran.txt.gz", WithSink(diag.Nop()))
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, format.CompressionGzip, s.Compression())

	dvals := make([]float64, 2)
	n := 0
	for range s.Rows(dvals) {
		n++
	}
	require.Equal(t, 3, n)

	_, err = OpenReader(bytes.NewReader(buf.Bytes()), "raw.gz", WithSink(diag.Nop()), WithoutDecompression())
	require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)
}

func TestCloseNeverRead(t *testing.T) {
	src := &trackingCloser{Reader: strings.NewReader(threeRows)}
	cfg, err := buildConfig([]Option{WithSink(diag.Nop())})
	require.NoError(t, err)

	before := testReleases
	s, err := open(src, "tracked", cfg, []io.Closer{src})
	require.NoError(t, err)
	require.Equal(t, 0, src.closed)

	require.NoError(t, s.Close())
	require.Equal(t, 1, src.closed)
	require.Equal(t, before+1, testReleases)
	require.Nil(t, s.in.line)
}

func TestOpenFailureClosesSource(t *testing.T) {
	src := &trackingCloser{Reader: strings.NewReader("#lines time v(a) @wide\n")}
	cfg, err := buildConfig([]Option{WithSink(diag.Nop())})
	require.NoError(t, err)

	_, err = open(src, "tracked", cfg, []io.Closer{src})
	require.ErrorIs(t, err, errs.ErrInconsistentHeader)
	require.Equal(t, 1, src.closed)
}

func BenchmarkReadRow(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("#lines time v(out) i(r1)\n")
	for i := range 1000 {
		sb.WriteString("1e-9 1.25 ")
		sb.WriteString(strings.Repeat("7", i%5+1))
		sb.WriteString("\n")
	}
	content := sb.String()
	dvals := make([]float64, 2)

	for b.Loop() {
		s, err := OpenReader(strings.NewReader(content), "bench", WithSink(diag.Nop()))
		if err != nil {
			b.Fatal(err)
		}
		for range s.Rows(dvals) {
		}
		_ = s.Close()
	}
}

func TestStreamDuplicateNames(t *testing.T) {
	var msgs []string
	sink := diag.NewHookSink(func(msg string) { msgs = append(msgs, msg) }, diag.LevelWarn)

	s, err := OpenReader(strings.NewReader("#lines time v(a) V(A) time\n"), "dup.txt", WithSink(sink))
	require.NoError(t, err)
	defer s.Close()

	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0], `duplicate dependent variable "V(A)"`)

	v, cat, ok := s.Lookup("v(a)")
	require.True(t, ok)
	require.Equal(t, Dependent, cat)
	require.Equal(t, 0, v.Col)

	// The independent variable is found before a dependent one of the same name.
	_, cat, ok = s.Lookup("time")
	require.True(t, ok)
	require.Equal(t, Independent, cat)
}

func TestStreamNoteCollisions(t *testing.T) {
	var msgs []string
	sink := diag.NewHookSink(func(msg string) { msgs = append(msgs, msg) }, diag.LevelDebug)

	s := openString(t, threeRows, WithSink(sink))
	defer s.Close()

	msgs = msgs[:0]
	tracker := collision.NewTracker()
	tracker.Track("v(a)", 7)
	s.noteCollisions(tracker, Dependent)
	require.Empty(t, msgs)

	tracker.Track("v(b)", 7)
	s.noteCollisions(tracker, Dependent)
	require.Len(t, msgs, 1)
	require.True(t, strings.HasPrefix(msgs[0], "DBG lines: hash collision among 2 dependent variable names"))
}
