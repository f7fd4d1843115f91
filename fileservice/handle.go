package fileservice

import (
	"io"
	"log/slog"
	"sync"

	"github.com/OpenAgentsInc/oanix/fserr"
)

// WriteBack commits a handle's full buffer to its owning service. It is
// invoked at most once per dirty period: Flush clears the dirty flag
// immediately after a successful call, so a second Flush with no
// intervening Write is a no-op.
type WriteBack func(data []byte) error

// BufferedHandle is the shared Handle implementation used by memfs,
// mapfs, funcfs, and cowfs. It owns an in-memory copy of the file's
// bytes, a cursor, and a dirty flag, and commits back to the owning
// service via a caller-supplied WriteBack closure on Flush or Close.
type BufferedHandle struct {
	mu     sync.Mutex
	buf    []byte
	cursor int
	dirty  bool
	closed bool

	readable bool
	writable bool
	appendMode bool

	writeback WriteBack
	log       *slog.Logger
	path      string // for error messages and log lines only
}

// NewHandle constructs a BufferedHandle seeded with initial (copied, not
// aliased) and bound to flags. writeback may be nil for a handle that can
// never be dirty (e.g. a read-only mapfs handle); Flush/Close on such a
// handle is always a no-op. A nil logger defaults to slog.Default().
func NewHandle(path string, initial []byte, flags OpenFlags, writeback WriteBack, log *slog.Logger) *BufferedHandle {
	buf := make([]byte, len(initial))
	copy(buf, initial)
	if flags.Truncate {
		buf = buf[:0]
	}
	if log == nil {
		log = slog.Default()
	}
	cursor := 0
	if flags.Append {
		cursor = len(buf)
	}
	return &BufferedHandle{
		buf:        buf,
		cursor:     cursor,
		readable:   flags.Read,
		writable:   flags.Write,
		appendMode: flags.Append,
		writeback:  writeback,
		log:        log,
		path:       path,
	}
}

// Read implements io.Reader, copying at most len(p) bytes starting at the
// cursor and advancing it. Returns io.EOF once the cursor reaches the end
// of the buffer, matching stdlib reader conventions.
func (h *BufferedHandle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, fserr.New("read", h.path, fserr.InvalidArgument)
	}
	if !h.readable {
		return 0, fserr.New("read", h.path, fserr.InvalidArgument)
	}
	if h.cursor >= len(h.buf) {
		return 0, io.EOF
	}
	n := copy(p, h.buf[h.cursor:])
	h.cursor += n
	return n, nil
}

// Write implements io.Writer, extending the buffer as needed (zero-filling
// any gap between the current length and the cursor) and marking the
// handle dirty. In append mode the cursor is forced to the end of the
// buffer before every write.
func (h *BufferedHandle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, fserr.New("write", h.path, fserr.InvalidArgument)
	}
	if !h.writable {
		return 0, fserr.New("write", h.path, fserr.InvalidArgument)
	}
	if h.appendMode {
		h.cursor = len(h.buf)
	}
	if gap := h.cursor - len(h.buf); gap > 0 {
		h.buf = append(h.buf, make([]byte, gap)...)
	}
	end := h.cursor + len(p)
	if end > len(h.buf) {
		h.buf = append(h.buf, make([]byte, end-len(h.buf))...)
	}
	n := copy(h.buf[h.cursor:end], p)
	h.cursor += n
	h.dirty = true
	return n, nil
}

// Seek implements io.Seeker. The resulting position may land past the end
// of the buffer; a subsequent Read then returns io.EOF immediately, and a
// subsequent Write zero-fills the gap.
func (h *BufferedHandle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = int64(h.cursor)
	case io.SeekEnd:
		base = int64(len(h.buf))
	default:
		return 0, fserr.New("seek", h.path, fserr.InvalidArgument)
	}

	pos := base + offset
	if pos < 0 {
		return 0, fserr.New("seek", h.path, fserr.InvalidArgument)
	}
	h.cursor = int(pos)
	return pos, nil
}

// Flush writes the buffer back to the owning service if dirty, then
// clears the dirty flag on success. Calling Flush again before any
// further Write is a no-op.
func (h *BufferedHandle) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flushLocked()
}

func (h *BufferedHandle) flushLocked() error {
	if !h.dirty || h.writeback == nil {
		return nil
	}
	data := make([]byte, len(h.buf))
	copy(data, h.buf)
	if err := h.writeback(data); err != nil {
		return err
	}
	h.dirty = false
	return nil
}

// Close performs a best-effort Flush: any write-back error is logged at
// Warn and swallowed. Callers that must observe a write-back failure
// should call Flush explicitly before Close.
func (h *BufferedHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if err := h.flushLocked(); err != nil {
		h.log.Warn("handle close: write-back failed", "path", h.path, "error", err)
	}
	h.closed = true
	return nil
}

var _ Handle = (*BufferedHandle)(nil)
