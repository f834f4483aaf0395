//go:build linux

package files

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

const (
	// Below this size the syscall setup costs more than a buffered copy.
	sendfileThreshold = 64 * 1024
	maxSendfileChunk  = 1 << 30
)

// sendfileStrategy copies inside the kernel with sendfile(2).
type sendfileStrategy struct {
	fallback copyStrategy
}

func platformStrategy() copyStrategy {
	return sendfileStrategy{fallback: bufferedStrategy{}}
}

func (sendfileStrategy) Name() string { return "sendfile" }

func (s sendfileStrategy) copy(dst, src *os.File, size int64) (int64, error) {
	if size < sendfileThreshold {
		return s.fallback.copy(dst, src, size)
	}

	srcFd := int(src.Fd())
	dstFd := int(dst.Fd())

	// Advisory only.
	_ = unix.Fadvise(srcFd, 0, size, unix.FADV_SEQUENTIAL)
	if err := unix.Fallocate(dstFd, 0, 0, size); err != nil && errors.Is(err, unix.ENOSPC) {
		return 0, err
	}

	var written int64
	for written < size {
		chunk := size - written
		if chunk > maxSendfileChunk {
			chunk = maxSendfileChunk
		}
		n, err := unix.Sendfile(dstFd, srcFd, nil, int(chunk))
		if n > 0 {
			written += int64(n)
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			if written == 0 && (errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOSYS)) {
				return s.fallback.copy(dst, src, size)
			}
			return written, err
		}
		if n == 0 {
			// Source shrank under us.
			break
		}
	}
	return written, nil
}
