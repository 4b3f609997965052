package command

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/loco/common"
	"github.com/gosuda/loco/serdes"
	"github.com/gosuda/loco/utils/bufq"
)

type readPhase uint8

const (
	phasePending readPhase = iota
	phaseHeader
	phaseCorrupted
)

// Stream is the inbound half of the command codec: an incremental,
// resumable parser over a caller-filled read buffer. A frame may arrive
// across any number of Write calls on ReadBuffer; Read yields each command
// exactly once when it is fully buffered.
type Stream struct {
	// ReadBuffer is filled by the caller from the transport.
	ReadBuffer *bufq.Queue

	phase readPhase
	head  serdes.RawHead
}

// NewStream creates a Stream in the pending state with an empty read
// buffer.
func NewStream() *Stream {
	return &Stream{
		ReadBuffer: bufq.New(),
	}
}

// Read returns the next fully buffered command, or (nil, nil) when the
// buffer holds less than a complete frame. Partially decoded state is
// retained across would-block returns, so a later Read resumes where the
// previous stopped.
//
// A head decode failure is fatal: the stream traps to a corrupted state
// and every further Read fails. The caller must discard the stream.
func (s *Stream) Read() (*serdes.Command, error) {
	for {
		switch s.phase {
		case phasePending:
			if s.ReadBuffer.Len() < common.HeadSize {
				return nil, nil
			}

			head, err := serdes.DeserializeRawHead(s.ReadBuffer.Peek(common.HeadSize))
			if err != nil {
				s.phase = phaseCorrupted
				log.Warn().Err(err).Msg("command stream corrupted on head decode")
				return nil, fmt.Errorf("%w: %w", common.ErrMalformedFrame, err)
			}
			s.ReadBuffer.Discard(common.HeadSize)

			s.head = *head
			s.phase = phaseHeader

		case phaseHeader:
			if s.ReadBuffer.Len() < int(s.head.DataSize) {
				return nil, nil
			}

			data := s.ReadBuffer.Next(int(s.head.DataSize))
			cmd := &serdes.Command{
				Header: s.head.Header,
				Data:   data,
			}

			s.head = serdes.RawHead{}
			s.phase = phasePending
			return cmd, nil

		case phaseCorrupted:
			return nil, common.ErrStreamCorrupted
		}
	}
}

// Release frees the read buffer. The stream must not be used afterwards.
func (s *Stream) Release() {
	s.ReadBuffer.Release()
	s.ReadBuffer = nil
}
