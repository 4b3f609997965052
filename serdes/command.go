package serdes

import (
	"encoding/binary"

	"github.com/gosuda/loco/common"
)

// Header is the fixed 18-byte command header. All integers are
// little-endian on the wire.
type Header struct {
	ID       uint32
	Status   uint16
	Method   Method
	DataType uint8
}

// Serialize writes the 18-byte header into dst.
func (h *Header) Serialize(dst []byte) error {
	if len(dst) < common.HeaderSize {
		return common.ErrInvalidLength
	}

	pos := 0

	binary.LittleEndian.PutUint32(dst[pos:pos+4], h.ID)
	pos += 4

	binary.LittleEndian.PutUint16(dst[pos:pos+2], h.Status)
	pos += 2

	copy(dst[pos:pos+common.MethodSize], h.Method[:])
	pos += common.MethodSize

	dst[pos] = h.DataType

	return nil
}

// DeserializeHeader decodes an 18-byte header.
func DeserializeHeader(data []byte) (*Header, error) {
	if len(data) < common.HeaderSize {
		return nil, common.ErrInvalidLength
	}

	h := &Header{}
	pos := 0

	h.ID = binary.LittleEndian.Uint32(data[pos : pos+4])
	pos += 4

	h.Status = binary.LittleEndian.Uint16(data[pos : pos+2])
	pos += 2

	method, err := MethodFromBytes(data[pos : pos+common.MethodSize])
	if err != nil {
		return nil, err
	}
	h.Method = method
	pos += common.MethodSize

	h.DataType = data[pos]

	return h, nil
}

// RawHead is the full 22-byte command head: header plus payload size.
type RawHead struct {
	Header   Header
	DataSize uint32
}

// Serialize writes the 22-byte head into dst.
func (rh *RawHead) Serialize(dst []byte) error {
	if len(dst) < common.HeadSize {
		return common.ErrInvalidLength
	}
	if err := rh.Header.Serialize(dst[:common.HeaderSize]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst[common.HeaderSize:common.HeadSize], rh.DataSize)
	return nil
}

// DeserializeRawHead decodes a 22-byte command head.
func DeserializeRawHead(data []byte) (*RawHead, error) {
	if len(data) < common.HeadSize {
		return nil, common.ErrInvalidLength
	}
	header, err := DeserializeHeader(data[:common.HeaderSize])
	if err != nil {
		return nil, err
	}
	return &RawHead{
		Header:   *header,
		DataSize: binary.LittleEndian.Uint32(data[common.HeaderSize:common.HeadSize]),
	}, nil
}

// Command is one framed protocol message: head plus payload. Data holds
// exactly DataSize bytes on the wire; no padding, no alignment.
type Command struct {
	Header Header
	Data   []byte
}

// SerializeSize returns the full wire size of the command.
func (c *Command) SerializeSize() int {
	return common.HeadSize + len(c.Data)
}

// Serialize writes the complete frame into dst.
func (c *Command) Serialize(dst []byte) error {
	if len(dst) < c.SerializeSize() {
		return common.ErrInvalidLength
	}

	head := RawHead{
		Header:   c.Header,
		DataSize: uint32(len(c.Data)),
	}
	if err := head.Serialize(dst[:common.HeadSize]); err != nil {
		return err
	}

	copy(dst[common.HeadSize:], c.Data)

	return nil
}

// DeserializeCommand decodes one complete frame. data must hold the entire
// frame; partial input is an error, not a would-block.
func DeserializeCommand(data []byte) (*Command, error) {
	head, err := DeserializeRawHead(data)
	if err != nil {
		return nil, err
	}

	frameEnd := common.HeadSize + int(head.DataSize)
	if len(data) < frameEnd {
		return nil, common.ErrInvalidLength
	}

	payload := make([]byte, head.DataSize)
	copy(payload, data[common.HeadSize:frameEnd])

	return &Command{
		Header: head.Header,
		Data:   payload,
	}, nil
}
