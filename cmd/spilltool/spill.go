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

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	docbson "github.com/FerretDB/docvalue/internal/bson"
	"github.com/FerretDB/docvalue/internal/sorter"
	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/iterator"
	"github.com/FerretDB/docvalue/internal/util/lazyerrors"
)

// maxLineSize is the maximum size of a single extended JSON input line.
const maxLineSize = 64 * 1024 * 1024

// writeSpill reads extended JSON documents, one per line, and writes them to the spill file.
//
// Reserved $-prefixed fields are stored as metadata. Empty lines are skipped.
// It returns the number of written documents.
func writeSpill(r io.Reader, w io.Writer, opts *sorter.WriterOpts) (int, error) {
	bw, err := sorter.NewBlockWriter(w, opts)
	if err != nil {
		return 0, lazyerrors.Error(err)
	}

	s := bufio.NewScanner(r)
	s.Buffer(nil, maxLineSize)

	var n, line int

	for s.Scan() {
		line++

		b := bytes.TrimSpace(s.Bytes())
		if len(b) == 0 {
			continue
		}

		doc, err := parseLine(b)
		if err != nil {
			_ = bw.Close()
			return n, fmt.Errorf("line %d: %w", line, err)
		}

		if err = bw.Write(doc); err != nil {
			_ = bw.Close()
			return n, lazyerrors.Error(err)
		}

		n++
	}

	if err = s.Err(); err != nil {
		_ = bw.Close()
		return n, lazyerrors.Error(err)
	}

	if err = bw.Close(); err != nil {
		return n, lazyerrors.Error(err)
	}

	return n, nil
}

// parseLine converts extended JSON document to document with metadata.
func parseLine(b []byte) (types.Document, error) {
	var raw bson.Raw
	if err := bson.UnmarshalExtJSON(b, false, &raw); err != nil {
		return types.Document{}, lazyerrors.Error(err)
	}

	doc, err := docbson.DecodeDocumentWithMetadata(bsoncore.Document(raw))
	if err != nil {
		return types.Document{}, lazyerrors.Error(err)
	}

	return doc, nil
}

// dumpBatchSize is the number of documents read from the spill file at once.
const dumpBatchSize = 100

// dumpOpts represents dumpSpill options.
type dumpOpts struct {
	metadata  bool
	canonical bool
	limit     int // 0 means no limit
}

// dumpSpill writes documents from the spill file as extended JSON, one per line.
//
// It returns the number of written documents.
func dumpSpill(r io.Reader, w io.Writer, opts *dumpOpts, ropts *sorter.ReaderOpts) (int, error) {
	br := sorter.NewBlockReader(bufio.NewReader(r), ropts)
	defer br.Close()

	bw := bufio.NewWriter(w)

	var n int

	for opts.limit <= 0 || n < opts.limit {
		size := dumpBatchSize
		if opts.limit > 0 {
			size = min(size, opts.limit-n)
		}

		docs, err := iterator.ConsumeValuesN[int, types.Document](br, size)
		if err != nil {
			return n, lazyerrors.Error(err)
		}

		if len(docs) == 0 {
			break
		}

		for _, doc := range docs {
			if err = dumpDocument(bw, doc, opts); err != nil {
				return n, err
			}

			n++
		}
	}

	if err := bw.Flush(); err != nil {
		return n, lazyerrors.Error(err)
	}

	return n, nil
}

// dumpDocument writes a single document as extended JSON line.
func dumpDocument(w io.Writer, doc types.Document, opts *dumpOpts) error {
	var raw bsoncore.Document
	var err error

	if opts.metadata {
		raw, err = docbson.EncodeDocumentWithMetadata(doc)
	} else {
		raw, err = docbson.EncodeDocument(doc)
	}

	if err != nil {
		return lazyerrors.Error(err)
	}

	b, err := bson.MarshalExtJSON(bson.Raw(raw), opts.canonical, false)
	if err != nil {
		return lazyerrors.Error(err)
	}

	if _, err = w.Write(append(b, '\n')); err != nil {
		return lazyerrors.Error(err)
	}

	return nil
}
