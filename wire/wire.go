// Package wire implements the binary payload encoding shared by target
// plugins and tests. Scalars are fixed-width little-endian; objects are
// type-tagged, length-prefixed blobs rendered by a pluggable Codec.
package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/miladsoleymani/gridmux/core"
)

// Codec serializes arbitrary payload objects. Implement this interface
// for custom formats (Protobuf, Avro, etc.).
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec is the default object codec.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	return nil
}

// Object field tags.
const (
	tagNil    byte = 0
	tagObject byte = 1
)

// Writer renders operation payloads into an in-memory buffer.
// It implements core.PayloadWriter.
type Writer struct {
	buf     bytes.Buffer
	codec   Codec
	scratch [8]byte
}

// NewWriter creates a Writer. A nil codec defaults to JSONCodec.
func NewWriter(codec Codec) *Writer {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Writer{codec: codec}
}

func (w *Writer) WriteInt64(v int64) error {
	binary.LittleEndian.PutUint64(w.scratch[:], uint64(v))
	w.buf.Write(w.scratch[:])
	return nil
}

func (w *Writer) WriteUUID(id uuid.UUID) error {
	w.buf.Write(id[:])
	return nil
}

func (w *Writer) WriteObject(v any) error {
	if v == nil {
		w.buf.WriteByte(tagNil)
		return nil
	}
	data, err := w.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("wire: marshal object: %w", err)
	}
	w.buf.WriteByte(tagObject)
	binary.LittleEndian.PutUint32(w.scratch[:4], uint32(len(data)))
	w.buf.Write(w.scratch[:4])
	w.buf.Write(data)
	return nil
}

// Bytes returns the rendered payload.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Render encodes one payload with the given codec. A nil payload
// renders as an empty body.
func Render(payload core.PayloadFunc, codec Codec) ([]byte, error) {
	w := NewWriter(codec)
	if payload != nil {
		if err := payload(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// Reader decodes a payload or response buffer. It implements
// core.RawReader.
type Reader struct {
	buf   *bytes.Reader
	codec Codec
}

// NewReader creates a Reader over data. A nil codec defaults to JSONCodec.
func NewReader(data []byte, codec Codec) *Reader {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Reader{buf: bytes.NewReader(data), codec: codec}
}

// ReadUUID reads a 128-bit identifier. ok is false when the buffer
// holds no identifier at all.
func (r *Reader) ReadUUID() (uuid.UUID, bool, error) {
	if r.buf.Len() == 0 {
		return uuid.Nil, false, nil
	}
	var b [16]byte
	if _, err := io.ReadFull(r.buf, b[:]); err != nil {
		return uuid.Nil, false, fmt.Errorf("wire: read uuid: %w", err)
	}
	return uuid.UUID(b), true, nil
}

func (r *Reader) ReadInt64() (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.buf, b[:]); err != nil {
		return 0, fmt.Errorf("wire: read int64: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ReadObject decodes the next object field into v. It reports false
// when the field carries the absence marker.
func (r *Reader) ReadObject(v any) (bool, error) {
	tag, err := r.buf.ReadByte()
	if err != nil {
		return false, fmt.Errorf("wire: read object tag: %w", err)
	}
	if tag == tagNil {
		return false, nil
	}
	var lb [4]byte
	if _, err := io.ReadFull(r.buf, lb[:]); err != nil {
		return false, fmt.Errorf("wire: read object length: %w", err)
	}
	data := make([]byte, binary.LittleEndian.Uint32(lb[:]))
	if _, err := io.ReadFull(r.buf, data); err != nil {
		return false, fmt.Errorf("wire: read object body: %w", err)
	}
	if err := r.codec.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("wire: decode object: %w", err)
	}
	return true, nil
}

// Len reports how many undecoded bytes remain.
func (r *Reader) Len() int {
	return r.buf.Len()
}
