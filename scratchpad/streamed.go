package scratchpad

import "io"

// DefaultIncrement is the chunk size used by [NewStreamedReader] and
// [NewStreamedWriter] when none is given.
const DefaultIncrement = 64 * 1024

// streamedReader is a [Reader] backed by chunked reads from an [io.Reader].
// It is grounded on the buffering discipline of the teacher's
// tlv.bufferedReader: a single growable slice holding [begin, end), filled in
// increment-sized chunks and compacted once the cursor has advanced past a
// sizable prefix.
type streamedReader struct {
	rd        io.Reader
	closer    io.Closer
	buf       []byte
	begin     int
	end       int
	pos       int64
	increment int
	eof       bool
}

// NewStreamedReader creates a [Reader] that reads from r in chunks of
// increment bytes. If increment is not positive, [DefaultIncrement] is used.
// If r implements [io.Closer], it is closed by [Reader.Close].
func NewStreamedReader(r io.Reader, increment int) Reader {
	if increment <= 0 {
		increment = DefaultIncrement
	}
	closer, _ := r.(io.Closer)
	return &streamedReader{rd: r, closer: closer, increment: increment}
}

func (s *streamedReader) Window() []byte { return s.buf[s.begin:s.end] }

func (s *streamedReader) Next(n int) error {
	if n < 0 {
		return ErrInvalidArgument
	}
	for s.end-s.begin < n {
		if s.eof {
			return ErrUnexpectedEOF
		}
		needed := s.begin + n
		if needed > len(s.buf) {
			s.buf = growSlice(s.buf, s.end, needed)
		}
		readLen := max(s.increment, n-(s.end-s.begin))
		if s.end+readLen > len(s.buf) {
			s.buf = growSlice(s.buf, s.end, s.end+readLen)
		}
		m, err := s.rd.Read(s.buf[s.end : s.end+readLen])
		if m < 0 {
			panic("scratchpad: reader returned negative count from Read")
		}
		s.end += m
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return &ioError{"read", err}
		}
	}
	return nil
}

func (s *streamedReader) Advance(k int) error {
	if k < 0 || k > s.end-s.begin {
		return ErrInvalidArgument
	}
	s.begin += k
	s.pos += int64(k)
	if s.begin > s.increment {
		copy(s.buf, s.buf[s.begin:s.end])
		s.end -= s.begin
		s.begin = 0
	}
	return nil
}

func (s *streamedReader) Pos() int64 { return s.pos }

func (s *streamedReader) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// streamedWriter is a [Writer] backed by chunked writes to an [io.Writer].
// Grounded on the teacher's tlv.bufferedWriter flush/checkpoint discipline.
type streamedWriter struct {
	wr        io.Writer
	closer    io.Closer
	buf       []byte
	n         int
	flushed   int64
	increment int
}

// NewStreamedWriter creates a [Writer] that buffers up to approximately
// increment bytes before flushing to w. If increment is not positive,
// [DefaultIncrement] is used. If w implements [io.Closer], it is closed by
// [Writer.Close] (after a final flush).
func NewStreamedWriter(w io.Writer, increment int) Writer {
	if increment <= 0 {
		increment = DefaultIncrement
	}
	closer, _ := w.(io.Closer)
	return &streamedWriter{wr: w, closer: closer, increment: increment, buf: make([]byte, 0, increment)}
}

func (s *streamedWriter) ObtainChunk(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidArgument
	}
	if s.n+n > s.increment {
		if err := s.Flush(); err != nil {
			return nil, err
		}
	}
	if s.n+n > cap(s.buf) {
		s.buf = growSlice(s.buf, s.n, s.n+n)
	}
	s.buf = s.buf[:s.n+n]
	chunk := s.buf[s.n : s.n+n]
	s.n += n
	return chunk, nil
}

func (s *streamedWriter) Write(p []byte) (written int, err error) {
	for len(p) > 0 {
		if s.n >= s.increment {
			if err = s.Flush(); err != nil {
				return written, err
			}
		}
		room := s.increment - s.n
		if cap(s.buf) < s.n+room {
			s.buf = growSlice(s.buf, s.n, s.n+room)
		}
		m := min(len(p), room)
		if m == 0 {
			// increment smaller than a single write; grow to fit this write.
			m = len(p)
			if cap(s.buf) < s.n+m {
				s.buf = growSlice(s.buf, s.n, s.n+m)
			}
		}
		s.buf = s.buf[:s.n+m]
		copy(s.buf[s.n:s.n+m], p[:m])
		s.n += m
		written += m
		p = p[m:]
	}
	return written, nil
}

func (s *streamedWriter) Flush() error {
	if s.n == 0 {
		return nil
	}
	want := s.n
	n, err := s.wr.Write(s.buf[:want])
	s.flushed += int64(n)
	if n > 0 {
		copy(s.buf, s.buf[n:want])
		s.n -= n
	}
	if err != nil {
		return &ioError{"write", err}
	}
	if n < want {
		return &ioError{"write", io.ErrShortWrite}
	}
	return nil
}

func (s *streamedWriter) Pos() int64 { return s.flushed + int64(s.n) }

func (s *streamedWriter) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
