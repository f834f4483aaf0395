package files

import (
	"io"
	"os"
)

const copyBufferSize = 32 * 1024

// bufferedStrategy is the portable read/write loop.
type bufferedStrategy struct{}

func (bufferedStrategy) Name() string { return "buffered" }

func (bufferedStrategy) copy(dst, src *os.File, size int64) (int64, error) {
	bufSize := int64(copyBufferSize)
	if size > 0 && size < bufSize {
		bufSize = size
	}
	buf := make([]byte, bufSize)
	// Hide ReaderFrom/WriterTo so io.CopyBuffer really uses buf.
	return io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, buf)
}
