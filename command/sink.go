package command

import (
	"encoding/binary"

	"github.com/gosuda/loco/common"
	"github.com/gosuda/loco/serdes"
	"github.com/gosuda/loco/utils/bufq"
)

// Sink serializes outbound commands into a caller-drained write buffer.
// It performs no IO: the caller moves WriteBuffer bytes to the transport.
type Sink struct {
	// WriteBuffer receives serialized frames. The caller drains it.
	WriteBuffer *bufq.Queue
}

// NewSink creates a Sink with an empty write buffer.
func NewSink() *Sink {
	return &Sink{
		WriteBuffer: bufq.New(),
	}
}

// Send appends the full frame for cmd to WriteBuffer: 18 header bytes, a
// 4-byte little-endian payload length, then the payload. The append is
// atomic; a well-formed command cannot fail to serialize.
func (s *Sink) Send(cmd *serdes.Command) {
	var head [common.HeadSize]byte
	cmd.Header.Serialize(head[:common.HeaderSize])
	binary.LittleEndian.PutUint32(head[common.HeaderSize:], uint32(len(cmd.Data)))

	s.WriteBuffer.Write(head[:])
	s.WriteBuffer.Write(cmd.Data)
}

// Release frees the write buffer. The sink must not be used afterwards.
func (s *Sink) Release() {
	s.WriteBuffer.Release()
	s.WriteBuffer = nil
}
