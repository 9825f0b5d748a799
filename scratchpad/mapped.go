package scratchpad

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// mappedReader is a read-only [Reader] backed by a memory-mapped file.
// Advance is pointer arithmetic into the mapping; nothing is ever evicted
// since the whole file is already resident.
type mappedReader struct {
	m    mmap.MMap
	f    *os.File
	pos  int
	done bool
}

// OpenMapped memory-maps the file at path for reading and returns a [Reader]
// over its contents. The returned Reader's Close method unmaps and closes the
// file.
func OpenMapped(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ioError{"read", err}
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, &ioError{"read", err}
	}
	return &mappedReader{m: m, f: f}, nil
}

func (r *mappedReader) Window() []byte { return r.m[r.pos:] }

func (r *mappedReader) Next(n int) error {
	if n < 0 {
		return ErrInvalidArgument
	}
	if r.pos+n > len(r.m) {
		return ErrUnexpectedEOF
	}
	return nil
}

func (r *mappedReader) Advance(k int) error {
	if k < 0 || r.pos+k > len(r.m) {
		return ErrInvalidArgument
	}
	r.pos += k
	return nil
}

func (r *mappedReader) Pos() int64 { return int64(r.pos) }

func (r *mappedReader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	if err := r.m.Unmap(); err != nil {
		_ = r.f.Close()
		return &ioError{"read", err}
	}
	return r.f.Close()
}
