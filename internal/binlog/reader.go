// Package binlog implements the persistent, append-only binlog reader: a
// sequential reader over one binlog.<filenum> file that assembles framed
// logical records out of fixed-size blocks, the way a leveldb-style
// write-ahead log does. The framing matches
// other_examples/grailbio-base__logio.go's documented block/record layout
// (FULL/FIRST/MIDDLE/LAST, zero-padded block tails, no physical record
// crossing a block boundary; a logical record spans blocks as a FIRST,
// MIDDLE*, LAST sequence) with the narrower 4-byte header
// (original_source/include/zp_const.h: kHeaderSize = 1 + 3) this format
// uses in place of logio's checksum+offset header.
package binlog

import (
	"errors"
	"io"
	"os"

	"github.com/luzijia/zeppelin/internal/errs"
)

const (
	// BlockSize is the fixed framing unit within a binlog file.
	BlockSize = 64 * 1024
	// HeaderSize is 1 byte of record type plus 3 bytes of little-endian
	// payload length.
	HeaderSize = 4
)

type recordType byte

const (
	// recordZero marks trailer padding: the writer emits it (length 0)
	// when the space left in a block is large enough to hold a header
	// but too small for the next real record.
	recordZero   recordType = 0
	recordFull   recordType = 1
	recordFirst  recordType = 2
	recordMiddle recordType = 3
	recordLast   recordType = 4
)

// Reader reads framed logical records from one sequential binlog file.
// It is not safe for concurrent use; a SendTask owns its Reader exclusively
// between fetch-out and put-back.
type Reader struct {
	f *os.File

	buf     [BlockSize]byte
	bufLen  int  // valid bytes currently loaded into buf
	bufPos  int  // next unread byte within buf
	bufFull bool // true iff the last block load read a full BlockSize block

	blockStart int64 // absolute file offset of buf[0]
}

// NewReader wraps an already-open sequential file handle.
func NewReader(f *os.File) *Reader {
	return &Reader{f: f}
}

// Seek positions the reader at offset, which must be the start of a
// physical record or a block boundary. It fails with errs.InvalidArgument
// if offset is beyond the end of the file.
func (r *Reader) Seek(offset uint64) error {
	info, err := r.f.Stat()
	if err != nil {
		return errs.New(errs.IOError, "stat binlog file: %v", err)
	}
	size := uint64(info.Size())
	if offset > size {
		return errs.New(errs.InvalidArgument, "seek offset %d beyond file size %d", offset, size)
	}

	blockStart := offset - offset%BlockSize
	if _, err := r.f.Seek(int64(blockStart), io.SeekStart); err != nil {
		return errs.New(errs.IOError, "seek to block boundary: %v", err)
	}
	r.blockStart = int64(blockStart)
	r.bufLen, r.bufPos = 0, 0

	if err := r.fillBuffer(); err != nil {
		return err
	}

	within := int(offset - blockStart)
	if within > r.bufLen {
		return errs.New(errs.InvalidArgument, "seek offset %d is not within a loaded block", offset)
	}
	r.bufPos = within
	return nil
}

// fillBuffer loads the next block into buf, replacing whatever is left of
// the current one.
func (r *Reader) fillBuffer() error {
	r.blockStart += int64(r.bufLen)
	n, err := io.ReadFull(r.f, r.buf[:])
	switch {
	case err == nil:
		r.bufLen, r.bufFull = BlockSize, true
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.bufLen, r.bufFull = n, false
	case errors.Is(err, io.EOF):
		r.bufLen, r.bufFull = 0, false
	default:
		return errs.New(errs.IOError, "read binlog block: %v", err)
	}
	r.bufPos = 0
	return nil
}

// Consume assembles the next logical record: either a single FULL physical
// record, or a FIRST, MIDDLE*, LAST sequence possibly spanning blocks. It
// returns the concatenated payload and the number of bytes consumed
// (headers, payloads and any inter-block padding included).
func (r *Reader) Consume() (payload []byte, consumed int, err error) {
	var fragments []byte

	for {
		if r.bufPos >= r.bufLen {
			if err := r.fillBuffer(); err != nil {
				return nil, consumed, err
			}
			if r.bufLen == 0 {
				if len(fragments) > 0 {
					return nil, consumed, errs.New(errs.Incomplete,
						"binlog ends with an unterminated record fragment")
				}
				return nil, consumed, errs.New(errs.EndFile, "at end of binlog file")
			}
			continue
		}

		remaining := r.bufLen - r.bufPos
		if remaining < HeaderSize {
			// Zero-padded block tail: skip to the next block.
			consumed += remaining
			r.bufPos = r.bufLen
			continue
		}

		typ := recordType(r.buf[r.bufPos])
		length := int(r.buf[r.bufPos+1]) | int(r.buf[r.bufPos+2])<<8 | int(r.buf[r.bufPos+3])<<16
		payloadAvail := remaining - HeaderSize

		if length > payloadAvail {
			if !r.bufFull {
				// Torn write: the file itself ends before the record does.
				consumed += remaining
				r.bufPos = r.bufLen
				return nil, consumed, errs.New(errs.Incomplete,
					"record declares length %d but only %d bytes follow at end of file", length, payloadAvail)
			}
			return nil, consumed, errs.New(errs.Corruption,
				"record length %d exceeds remaining space %d in a full block", length, payloadAvail)
		}

		start := r.bufPos + HeaderSize
		rec := r.buf[start : start+length]
		consumed += HeaderSize + length
		r.bufPos += HeaderSize + length

		switch typ {
		case recordZero:
			if len(fragments) > 0 {
				return nil, consumed, errs.New(errs.Corruption, "zero-type trailer record with a fragment pending")
			}
			// Reserved padding marker; keep scanning the block.
		case recordFull:
			if len(fragments) > 0 {
				return nil, consumed, errs.New(errs.Corruption, "FULL record follows an unterminated fragment")
			}
			out := make([]byte, length)
			copy(out, rec)
			return out, consumed, nil
		case recordFirst:
			if len(fragments) > 0 {
				return nil, consumed, errs.New(errs.Corruption, "FIRST record follows an unterminated fragment")
			}
			fragments = append(fragments, rec...)
		case recordMiddle:
			if len(fragments) == 0 {
				return nil, consumed, errs.New(errs.Corruption, "MIDDLE record with no preceding FIRST")
			}
			fragments = append(fragments, rec...)
		case recordLast:
			if len(fragments) == 0 {
				return nil, consumed, errs.New(errs.Corruption, "LAST record with no preceding FIRST")
			}
			fragments = append(fragments, rec...)
			return fragments, consumed, nil
		default:
			return nil, consumed, errs.New(errs.Corruption, "unknown record type %d", typ)
		}
	}
}

// SkipNextBlock advances the reader to the next block boundary, used to
// resume after Consume reports corruption. It returns the number of bytes
// skipped to reach that boundary.
func (r *Reader) SkipNextBlock() (consumed int) {
	consumed = r.bufLen - r.bufPos
	r.bufPos = r.bufLen
	return consumed
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}
