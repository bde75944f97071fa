package pool

import (
	"sync"

	"github.com/arloliu/spicestream/linebuf"
)

// LineBufferMaxThreshold is the largest line buffer capacity kept for reuse.
const LineBufferMaxThreshold = 1024 * 64 // 64KiB

var lineBufferPool = sync.Pool{
	New: func() any {
		return linebuf.NewBuffer(linebuf.DefaultSize)
	},
}

// GetLineBuffer retrieves an empty line buffer from the pool.
func GetLineBuffer() *linebuf.Buffer {
	buf, _ := lineBufferPool.Get().(*linebuf.Buffer)
	buf.Reset()

	return buf
}

// PutLineBuffer returns a line buffer to the pool.
//
// Buffers grown beyond LineBufferMaxThreshold are dropped to avoid retaining memory
// for one unusually long line.
func PutLineBuffer(buf *linebuf.Buffer) {
	if buf == nil || buf.Cap() > LineBufferMaxThreshold {
		return
	}

	buf.Reset()
	lineBufferPool.Put(buf)
}
