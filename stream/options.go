package stream

import (
	"errors"
	"fmt"

	"github.com/arloliu/spicestream/compress"
	"github.com/arloliu/spicestream/diag"
	"github.com/arloliu/spicestream/endian"
	"github.com/arloliu/spicestream/internal/options"
	"github.com/arloliu/spicestream/linebuf"
)

// DefaultSniffSize is the number of leading bytes handed to Format.Detect.
const DefaultSniffSize = 512

// MaxSniffSize bounds WithSniffSize.
const MaxSniffSize = 1 << 20

// Config holds the options of one Open call.
type Config struct {
	formatName string
	sink       *diag.Sink
	name       string
	engine     endian.EndianEngine
	sniffSize  int
	lineSize   int
	decompress bool
}

func newConfig() *Config {
	return &Config{
		engine:     endian.GetLittleEndianEngine(),
		sniffSize:  DefaultSniffSize,
		lineSize:   linebuf.DefaultSize,
		decompress: true,
	}
}

// bufferSize returns the bufio size needed to peek the sniff head.
func (c *Config) bufferSize() int {
	size := 4096
	if c.sniffSize > size {
		size = c.sniffSize
	}
	if compress.MagicSize > size {
		size = compress.MagicSize
	}

	return size
}

// Option represents a functional option for configuring Open and OpenReader.
type Option = options.Option[*Config]

// WithFormat selects a registered format by name and skips detection.
func WithFormat(name string) Option {
	return options.New("WithFormat", func(c *Config) error {
		if name == "" {
			return errors.New("empty format name")
		}
		c.formatName = name

		return nil
	})
}

// WithSink sets the diagnostics sink. The default is diag.Default() at open time.
func WithSink(sink *diag.Sink) Option {
	return options.New("WithSink", func(c *Config) error {
		if sink == nil {
			return errors.New("nil sink")
		}
		c.sink = sink

		return nil
	})
}

// WithName sets the source name used in diagnostics and returned by Stream.Name.
func WithName(name string) Option {
	return options.NoError("WithName", func(c *Config) {
		c.name = name
	})
}

// WithByteOrder sets the byte order of binary data. Little-endian is the default.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New("WithByteOrder", func(c *Config) error {
		if engine == nil {
			return errors.New("nil byte order")
		}
		c.engine = engine

		return nil
	})
}

// WithSniffSize sets the number of leading bytes inspected by format detection.
func WithSniffSize(size int) Option {
	return options.New("WithSniffSize", func(c *Config) error {
		if size <= 0 || size > MaxSniffSize {
			return fmt.Errorf("sniff size %d out of range (0, %d]", size, MaxSniffSize)
		}
		c.sniffSize = size

		return nil
	})
}

// WithLineBufferSize sets the initial capacity of the line buffer. The buffer still
// grows for longer lines.
func WithLineBufferSize(size int) Option {
	return options.New("WithLineBufferSize", func(c *Config) error {
		if size <= 0 {
			return fmt.Errorf("invalid line buffer size: %d", size)
		}
		c.lineSize = size

		return nil
	})
}

// WithoutDecompression disables transparent decompression of compressed input.
func WithoutDecompression() Option {
	return options.NoError("WithoutDecompression", func(c *Config) {
		c.decompress = false
	})
}
