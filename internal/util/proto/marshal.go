package proto

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
)

const sizePrefixLen = 4

// MarshalWithSize marshals protobuf message into bytes.
// It adds message's (32bit) size in front of the message.
func MarshalWithSize(m proto.Message) ([]byte, error) {
	b, err := proto.Marshal(m)
	if err != nil {
		return nil, err
	}

	out := make([]byte, sizePrefixLen, sizePrefixLen+len(b))
	binary.LittleEndian.PutUint32(out, uint32(len(b)))

	return append(out, b...), nil
}

type Encoder struct {
	dst io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{dst: w}
}

// Encode writes m with its size prefix in a single write.
func (e *Encoder) Encode(m proto.Message) error {
	b, err := MarshalWithSize(m)
	if err != nil {
		return errors.Wrap(err, "marshaling message")
	}

	if _, err := e.dst.Write(b); err != nil {
		return errors.Wrap(err, "writing message")
	}

	return nil
}
