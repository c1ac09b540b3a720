package wal

import (
	"fmt"
	"io"
	"os"
)

// Reader replays a log file sequentially, or from an arbitrary byte
// offset via Seek.
type Reader struct {
	file   *os.File
	offset int64
}

// NewReader opens the log file at path for reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrWalIO, err)
	}

	return &Reader{file: f}, nil
}

// Seek repositions the read cursor to an absolute byte offset,
// typically one previously returned by Writer.Append or CurrentOffset.
func (r *Reader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek: %v", ErrWalIO, err)
	}
	r.offset = offset

	return nil
}

// Next returns the next record, or (Record{}, false, nil) at a clean
// end of file or on a magic/version mismatch — both are treated as
// end-of-valid-log, not an error, per the frame contract. A short read
// (a frame truncated mid-header or mid-body, as from a crash during
// append) is likewise treated as end-of-valid-log rather than
// surfaced as ErrWalIO, since a partially written final frame is the
// expected shape of a crash, not a corrupt log.
func (r *Reader) Next() (Record, bool, error) {
	start, err := r.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: tell: %v", ErrWalIO, err)
	}

	hdrBuf := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, hdrBuf); err != nil {
		return Record{}, false, nil
	}

	h, ok := unmarshalHeader(hdrBuf)
	if !ok {
		return Record{}, false, nil
	}

	id := make([]byte, h.idLen)
	var payload []byte
	if h.payloadLen > 0 {
		payload = make([]byte, h.payloadLen)
	}
	errBytes := make([]byte, h.errorLen)

	if _, err := io.ReadFull(r.file, id); err != nil {
		return Record{}, false, nil
	}
	if _, err := io.ReadFull(r.file, payload); err != nil {
		return Record{}, false, nil
	}
	if _, err := io.ReadFull(r.file, errBytes); err != nil {
		return Record{}, false, nil
	}

	r.offset = start

	return Record{
		Type:          RecordType(h.recType),
		TsMs:          h.tsMs,
		ID:            string(id),
		Payload:       payload,
		Error:         string(errBytes),
		NextRetryAtMs: h.nextRetryAtMs,
	}, true, nil
}

// CurrentOffset returns the offset of the record most recently
// returned by Next, not the offset of the next record to be read.
// Resuming from this value requires seeking past one frame's encoded
// length first; use the offset Writer.Append returned for each record
// instead if a precise resume point is needed.
func (r *Reader) CurrentOffset() int64 {
	return r.offset
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
