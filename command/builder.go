package command

import "github.com/gosuda/loco/serdes"

// Builder assembles a Command from its header fields. Status defaults to
// zero; the data type is passed to Build.
type Builder struct {
	id     uint32
	status uint16
	method serdes.Method
}

// NewBuilder starts a builder for the given correlation id and method.
func NewBuilder(id uint32, method serdes.Method) *Builder {
	return &Builder{
		id:     id,
		method: method,
	}
}

// Status sets the header status code.
func (b *Builder) Status(status uint16) *Builder {
	b.status = status
	return b
}

// Build produces the command with the given payload discriminator and
// payload bytes.
func (b *Builder) Build(dataType uint8, data []byte) *serdes.Command {
	return &serdes.Command{
		Header: serdes.Header{
			ID:       b.id,
			Status:   b.status,
			Method:   b.method,
			DataType: dataType,
		},
		Data: data,
	}
}
