// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sorter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"

	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/lazyerrors"
)

// Spill file layout: a sequence of blocks, each one is
//
//	magic:"DVSB" compression:byte count:uint32 rawSize:uint32 storedSize:uint32 checksum:uint64 payload
//
// where payload is storedSize bytes of (possibly compressed) count documents in sorter format,
// rawSize is the payload size after decompression, and checksum is xxhash64 of the stored payload.
const (
	blockMagic      = "DVSB"
	blockHeaderSize = 4 + 1 + 4 + 4 + 4 + 8

	// DefaultBlockSize is the default raw size at which BlockWriter flushes a block.
	DefaultBlockSize = 64 * 1024

	// maxBlockSize limits raw and stored block sizes accepted by BlockReader.
	maxBlockSize = 1 << 30
)

// Compression represents spill block compression.
type Compression byte

// Supported compressions.
const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

// String implements fmt.Stringer.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", byte(c))
	}
}

// ParseCompression returns compression by its name.
func ParseCompression(s string) (Compression, error) {
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		if c.String() == s {
			return c, nil
		}
	}

	return 0, lazyerrors.Errorf("unknown compression %q", s)
}

// blockHeader represents a decoded block header.
type blockHeader struct {
	compression Compression
	count       uint32
	rawSize     uint32
	storedSize  uint32
	checksum    uint64
}

// marshal encodes header into b of blockHeaderSize bytes.
func (h *blockHeader) marshal(b []byte) {
	copy(b, blockMagic)
	b[4] = byte(h.compression)
	binary.LittleEndian.PutUint32(b[5:], h.count)
	binary.LittleEndian.PutUint32(b[9:], h.rawSize)
	binary.LittleEndian.PutUint32(b[13:], h.storedSize)
	binary.LittleEndian.PutUint64(b[17:], h.checksum)
}

// unmarshal decodes and checks header from b of blockHeaderSize bytes.
func (h *blockHeader) unmarshal(b []byte) error {
	if string(b[:4]) != blockMagic {
		return fmt.Errorf("invalid block magic %x", b[:4])
	}

	h.compression = Compression(b[4])
	h.count = binary.LittleEndian.Uint32(b[5:])
	h.rawSize = binary.LittleEndian.Uint32(b[9:])
	h.storedSize = binary.LittleEndian.Uint32(b[13:])
	h.checksum = binary.LittleEndian.Uint64(b[17:])

	switch {
	case h.compression > CompressionLZ4:
		return fmt.Errorf("unknown block compression %d", byte(h.compression))
	case h.count == 0:
		return fmt.Errorf("empty block")
	case h.rawSize > maxBlockSize || h.storedSize > maxBlockSize:
		return fmt.Errorf("block is too large: raw %d, stored %d", h.rawSize, h.storedSize)
	case h.compression == CompressionNone && h.rawSize != h.storedSize:
		return fmt.Errorf("uncompressed block sizes mismatch: raw %d, stored %d", h.rawSize, h.storedSize)
	}

	return nil
}

// WriterOpts represents BlockWriter options.
type WriterOpts struct {
	// BlockSize is the raw size at which the block is flushed; DefaultBlockSize if zero.
	BlockSize int

	Compression Compression

	// Level is the compression level: zstd level for zstd, 1-9 for lz4 (high compression mode).
	// Nil means the library default.
	Level *int

	Settings Settings
	Logger   *zap.Logger
	Metrics  *Metrics
}

// ErrWriterClosed is returned by BlockWriter methods called after Close.
var ErrWriterClosed = errors.New("sorter: block writer is closed")

// BlockWriter writes documents to spill blocks.
//
// It is not safe for concurrent use.
type BlockWriter struct {
	w    io.Writer
	opts WriterOpts
	zenc *zstd.Encoder

	raw     []byte
	count   int
	scratch []byte

	blocks  int
	docs    int
	written int64

	closed bool
}

// NewBlockWriter creates a new writer.
func NewBlockWriter(w io.Writer, opts *WriterOpts) (*BlockWriter, error) {
	if opts == nil {
		opts = new(WriterOpts)
	}

	bw := &BlockWriter{
		w:    w,
		opts: *opts,
	}

	if bw.opts.BlockSize <= 0 {
		bw.opts.BlockSize = DefaultBlockSize
	}

	if bw.opts.BlockSize > maxBlockSize {
		return nil, lazyerrors.Errorf("block size %d is too large", bw.opts.BlockSize)
	}

	if bw.opts.Logger == nil {
		bw.opts.Logger = zap.NewNop()
	}

	switch bw.opts.Compression {
	case CompressionNone, CompressionLZ4:
		// nothing
	case CompressionZstd:
		level := zstd.SpeedDefault
		if bw.opts.Level != nil {
			level = zstd.EncoderLevelFromZstd(*bw.opts.Level)
		}

		var err error
		if bw.zenc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(level)); err != nil {
			return nil, lazyerrors.Error(err)
		}
	default:
		return nil, lazyerrors.Errorf("unknown compression %s", bw.opts.Compression)
	}

	return bw, nil
}

// Write buffers the document, flushing the block if it is full.
func (bw *BlockWriter) Write(doc types.Document) error {
	if bw.closed {
		return lazyerrors.Error(ErrWriterClosed)
	}

	bw.raw = AppendDocument(bw.raw, doc, bw.opts.Settings)
	bw.count++

	if len(bw.raw) >= bw.opts.BlockSize {
		return bw.Flush()
	}

	return nil
}

// Flush writes buffered documents as a block. It does nothing if there are none.
func (bw *BlockWriter) Flush() error {
	if bw.closed {
		return lazyerrors.Error(ErrWriterClosed)
	}

	if bw.count == 0 {
		return nil
	}

	if len(bw.raw) > maxBlockSize {
		return lazyerrors.Errorf("block of %d documents is too large: %d bytes", bw.count, len(bw.raw))
	}

	h := blockHeader{
		compression: CompressionNone,
		count:       uint32(bw.count),
		rawSize:     uint32(len(bw.raw)),
	}

	payload := bw.raw

	compressed, err := bw.compress(bw.raw)
	if err != nil {
		return err
	}

	if compressed != nil && len(compressed) < len(bw.raw) {
		payload = compressed
		h.compression = bw.opts.Compression
	}

	h.storedSize = uint32(len(payload))
	h.checksum = xxhash.Sum64(payload)

	var hb [blockHeaderSize]byte
	h.marshal(hb[:])

	if _, err = bw.w.Write(hb[:]); err != nil {
		return lazyerrors.Error(err)
	}

	if _, err = bw.w.Write(payload); err != nil {
		return lazyerrors.Error(err)
	}

	bw.opts.Logger.Debug(
		"Spill block flushed",
		zap.Uint32("documents", h.count),
		zap.Uint32("raw", h.rawSize),
		zap.Uint32("stored", h.storedSize),
		zap.Stringer("compression", h.compression),
	)
	bw.opts.Metrics.observeBlock("write", &h)

	bw.blocks++
	bw.docs += bw.count
	bw.written += int64(blockHeaderSize + len(payload))

	if compressed != nil {
		bw.scratch = compressed[:0]
	}

	bw.raw = bw.raw[:0]
	bw.count = 0

	return nil
}

// compress returns compressed src, or nil if compression is disabled or not effective.
func (bw *BlockWriter) compress(src []byte) ([]byte, error) {
	switch bw.opts.Compression {
	case CompressionZstd:
		return bw.zenc.EncodeAll(src, bw.scratch[:0]), nil

	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(src))
		if cap(bw.scratch) < bound {
			bw.scratch = make([]byte, bound)
		}

		dst := bw.scratch[:bound]

		var n int
		var err error

		if bw.opts.Level == nil {
			n, err = lz4.CompressBlock(src, dst, nil)
		} else {
			n, err = lz4.CompressBlockHC(src, dst, lz4Level(*bw.opts.Level), nil, nil)
		}

		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		// incompressible
		if n == 0 {
			return nil, nil
		}

		return dst[:n], nil

	default:
		return nil, nil
	}
}

// lz4Level converts 1-9 level to lz4 compression level.
func lz4Level(level int) lz4.CompressionLevel {
	level = min(max(level, 1), 9)
	return lz4.CompressionLevel(1 << (8 + level))
}

// Close flushes buffered documents and releases resources.
//
// It does not close the underlying writer. Subsequent calls do nothing.
func (bw *BlockWriter) Close() error {
	if bw.closed {
		return nil
	}

	err := bw.Flush()
	bw.closed = true

	if bw.zenc != nil {
		if e := bw.zenc.Close(); err == nil && e != nil {
			err = lazyerrors.Error(e)
		}

		bw.zenc = nil
	}

	bw.opts.Logger.Info(
		"Spill file written",
		zap.Int("blocks", bw.blocks),
		zap.Int("documents", bw.docs),
		zap.Int64("bytes", bw.written),
	)

	return err
}
