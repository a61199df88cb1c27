// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package pixeljson

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// CompressedExtension marks document files stored zstd-compressed.
const CompressedExtension = ".zst"

// MaxDocumentSize bounds a document read from a file or stream, after
// decompression.
const MaxDocumentSize = 1 << 30

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderMaxMemory(MaxDocumentSize),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

// CompressDocument zstd-compresses an encoded document.
func CompressDocument(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	enc := zstdEncPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, nil)
	zstdEncPool.Put(enc)
	return out
}

// DecompressDocument reverses CompressDocument. Input without the zstd
// frame magic is returned unchanged.
func DecompressDocument(data []byte) ([]byte, error) {
	if !IsCompressedDocument(data) {
		return data, nil
	}

	dec := zstdDecPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, nil)
	zstdDecPool.Put(dec)
	if err != nil {
		return nil, decodeError("DecompressDocument", "failed to decompress document", err)
	}
	return out, nil
}

// IsCompressedDocument reports whether data starts with a zstd frame.
func IsCompressedDocument(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// WriteDocument encodes doc to w. The output is compressed when compress is set.
func WriteDocument(w io.Writer, doc *ImageDocument, indent, compress bool) error {
	data, err := MarshalDocument(doc, indent)
	if err != nil {
		return err
	}
	if compress {
		data = CompressDocument(data)
	}
	if _, err := w.Write(data); err != nil {
		return ioError("WriteDocument", "failed to write document", err)
	}
	return nil
}

// WriteDocumentFile writes doc to path, zstd-compressed when the path ends
// in CompressedExtension.
func WriteDocumentFile(path string, doc *ImageDocument, indent bool) error {
	f, err := os.Create(path)
	if err != nil {
		return ioError("WriteDocumentFile", "failed to create document file", err)
	}

	werr := WriteDocument(f, doc, indent, strings.HasSuffix(path, CompressedExtension))
	if cerr := f.Close(); werr == nil && cerr != nil {
		werr = ioError("WriteDocumentFile", "failed to close document file", cerr)
	}
	return werr
}

// ReadDocument reads an encoded document from r, decompressing it when it
// starts with a zstd frame. The JSON itself is not parsed; see ParseDocument.
func ReadDocument(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, ioError("ReadDocument", "failed to read document", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, validationError("ReadDocument", "document too large", nil)
	}
	return DecompressDocument(data)
}

// ReadDocumentFile reads an encoded document from path.
func ReadDocumentFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("ReadDocumentFile", "failed to open document file", err)
	}
	defer f.Close()

	return ReadDocument(f)
}
