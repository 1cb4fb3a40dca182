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
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"

	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/iterator"
	"github.com/FerretDB/docvalue/internal/util/lazyerrors"
)

// ReaderOpts represents BlockReader options.
type ReaderOpts struct {
	Settings Settings
	Logger   *zap.Logger
	Metrics  *Metrics
}

// BlockReader reads documents from spill blocks written by BlockWriter.
//
// It is not safe for concurrent use.
type BlockReader struct {
	r    io.Reader
	opts ReaderOpts
	zdec *zstd.Decoder

	stored []byte
	raw    []byte
	cur    *Reader
	left   uint32

	n      int
	blocks int
	err    error
}

// NewBlockReader creates a new reader.
func NewBlockReader(r io.Reader, opts *ReaderOpts) *BlockReader {
	if opts == nil {
		opts = new(ReaderOpts)
	}

	br := &BlockReader{
		r:    r,
		opts: *opts,
	}

	if br.opts.Logger == nil {
		br.opts.Logger = zap.NewNop()
	}

	return br
}

// Next implements iterator.Interface.
//
// It returns the document number (starting from 0) and the document.
// Corrupted or truncated input fails with types.ErrParse; that error is returned by all subsequent calls.
func (br *BlockReader) Next() (int, types.Document, error) {
	if br.err != nil {
		return 0, types.Document{}, br.err
	}

	if br.left == 0 {
		if err := br.readBlock(); err != nil {
			br.err = err
			return 0, types.Document{}, err
		}
	}

	doc, err := br.cur.ReadDocument()
	if err != nil {
		br.err = err
		return 0, types.Document{}, err
	}

	br.left--

	if br.left == 0 && !br.cur.Done() {
		br.err = br.parseErrorf("trailing bytes in block %d", br.blocks-1)
		return 0, types.Document{}, br.err
	}

	n := br.n
	br.n++

	return n, doc, nil
}

// readBlock reads, checks and decompresses the next block.
//
// It returns iterator.ErrIteratorDone on clean end of input.
func (br *BlockReader) readBlock() error {
	var hb [blockHeaderSize]byte

	if _, err := io.ReadFull(br.r, hb[:]); err != nil {
		if errors.Is(err, io.EOF) {
			br.opts.Logger.Info("Spill file read", zap.Int("blocks", br.blocks), zap.Int("documents", br.n))
			return iterator.ErrIteratorDone
		}

		if errors.Is(err, io.ErrUnexpectedEOF) {
			return br.parseErrorf("truncated block %d header", br.blocks)
		}

		return lazyerrors.Error(err)
	}

	var h blockHeader
	if err := h.unmarshal(hb[:]); err != nil {
		return br.parseErrorf("block %d: %s", br.blocks, err)
	}

	br.stored = grow(br.stored, int(h.storedSize))

	if _, err := io.ReadFull(br.r, br.stored); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return br.parseErrorf("truncated block %d payload", br.blocks)
		}

		return lazyerrors.Error(err)
	}

	if sum := xxhash.Sum64(br.stored); sum != h.checksum {
		return br.parseErrorf("block %d checksum mismatch: expected %x, got %x", br.blocks, h.checksum, sum)
	}

	payload, err := br.decompress(&h)
	if err != nil {
		return br.parseErrorf("block %d: %s", br.blocks, err)
	}

	br.opts.Logger.Debug(
		"Spill block read",
		zap.Uint32("documents", h.count),
		zap.Uint32("raw", h.rawSize),
		zap.Uint32("stored", h.storedSize),
		zap.Stringer("compression", h.compression),
	)
	br.opts.Metrics.observeBlock("read", &h)

	br.cur = NewReader(payload, br.opts.Settings)
	br.left = h.count
	br.blocks++

	return nil
}

// decompress returns the decompressed payload of br.stored.
//
// Decompressed data is stored in br.raw that never aliases br.stored.
func (br *BlockReader) decompress(h *blockHeader) ([]byte, error) {
	switch h.compression {
	case CompressionNone:
		return br.stored, nil

	case CompressionZstd:
		if br.zdec == nil {
			var err error
			if br.zdec, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBlockSize)); err != nil {
				return nil, err
			}
		}

		raw, err := br.zdec.DecodeAll(br.stored, br.raw[:0])
		if err != nil {
			return nil, err
		}

		br.raw = raw

	case CompressionLZ4:
		br.raw = grow(br.raw, int(h.rawSize))

		n, err := lz4.UncompressBlock(br.stored, br.raw)
		if err != nil {
			return nil, err
		}

		br.raw = br.raw[:n]

	default:
		panic("not reached")
	}

	if len(br.raw) != int(h.rawSize) {
		return nil, fmt.Errorf("decompressed size mismatch: expected %d, got %d", h.rawSize, len(br.raw))
	}

	return br.raw, nil
}

// parseErrorf returns types.ErrParse error.
func (br *BlockReader) parseErrorf(format string, a ...any) error {
	return lazyerrors.Error(types.NewError(types.ErrParse, "sorter: "+fmt.Sprintf(format, a...)))
}

// Close implements iterator.Interface.
func (br *BlockReader) Close() {
	if br.zdec != nil {
		br.zdec.Close()
		br.zdec = nil
	}

	if br.err == nil {
		br.err = iterator.ErrIteratorDone
	}
}

// grow returns b resliced or reallocated to length n.
func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}

	return b[:n]
}

// check interfaces
var (
	_ iterator.Interface[int, types.Document] = (*BlockReader)(nil)
)
