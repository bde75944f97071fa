package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/spicestream/compress"
	"github.com/arloliu/spicestream/diag"
	"github.com/arloliu/spicestream/errs"
	"github.com/arloliu/spicestream/format"
	"github.com/arloliu/spicestream/internal/options"
)

// Open opens the result file at path.
//
// The format is detected from the leading bytes unless WithFormat names it. Compressed
// files are decompressed transparently unless WithoutDecompression is given.
//
// Parameters:
//   - path: File path, also the default source name
//   - opts: Open options
//
// Returns:
//   - *Stream: The open stream; the file is closed by Stream.Close
//   - error: ErrIO, ErrUnrecognizedFormat, ErrInconsistentHeader or a format's header
//     error. No file stays open on failure.
func Open(path string, opts ...Option) (*Stream, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("%w: %w", errs.ErrIO, err)
		cfg.sink.Msg(diag.LevelError, "stream", "open %s: %v", path, err)

		return nil, err
	}

	name := path
	if cfg.name != "" {
		name = cfg.name
	}

	return open(f, name, cfg, []io.Closer{f})
}

// OpenReader opens a result stream read from r.
//
// The stream does not take ownership of r: Stream.Close releases the buffers and any
// decompressor but leaves closing r to the caller.
//
// Parameters:
//   - r: Source reader
//   - name: Source name used in diagnostics, overridden by WithName
//   - opts: Open options
//
// Returns:
//   - *Stream: The open stream
//   - error: See Open
func OpenReader(r io.Reader, name string, opts ...Option) (*Stream, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.name != "" {
		name = cfg.name
	}

	return open(r, name, cfg, nil)
}

func buildConfig(opts []Option) (*Config, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.sink == nil {
		cfg.sink = diag.Default()
	}

	return cfg, nil
}

func open(r io.Reader, name string, cfg *Config, closers []io.Closer) (s *Stream, err error) {
	defer func() {
		if err == nil {
			return
		}
		cfg.sink.Msg(diag.LevelError, "stream", "open %s: %v", name, err)
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	br := bufio.NewReaderSize(r, cfg.bufferSize())

	compression := format.CompressionNone
	if cfg.decompress {
		head, err := peekHead(br, compress.MagicSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errs.ErrIO, name, err)
		}

		compression = compress.Detect(head)
		if compression != format.CompressionNone {
			rc, err := compress.NewReader(compression, br)
			if err != nil {
				return nil, err
			}
			closers = append(closers, rc)
			br = bufio.NewReaderSize(rc, cfg.bufferSize())

			cfg.sink.Msg(diag.LevelDebug, "stream", "%s: reading %s compressed data", name, compression)
		}
	}

	f, err := selectFormat(br, cfg)
	if err != nil {
		return nil, err
	}

	in := newInput(name, br, cfg.lineSize, cfg.engine, cfg.sink)
	in.id = f.Name()

	reader, header, err := f.NewReader(in)
	if err == nil {
		err = header.Validate()
	}
	if err != nil {
		if rr, ok := reader.(interface{ Release() }); ok {
			rr.Release()
		}
		in.release()

		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}

	s = newStream(name, f, header, reader, in)
	s.compression = compression
	s.closers = closers

	in.Msg(diag.LevelInfo, "opened: %d dependent variables, %d columns, %d sweep parameters",
		len(header.DVars), header.NCols, len(header.Sweeps))

	return s, nil
}

func selectFormat(br *bufio.Reader, cfg *Config) (Format, error) {
	if cfg.formatName != "" {
		return lookupOrErr(cfg.formatName)
	}

	head, err := peekHead(br, cfg.sniffSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if len(head) == 0 {
		return nil, fmt.Errorf("%w: empty file", errs.ErrUnrecognizedFormat)
	}

	return detect(head)
}

// peekHead returns up to n leading bytes; a shorter source is not an error.
func peekHead(br *bufio.Reader, n int) ([]byte, error) {
	head, err := br.Peek(n)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}

	return head, nil
}
