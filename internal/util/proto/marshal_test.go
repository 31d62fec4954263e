package proto

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMarshalWithSize(t *testing.T) {
	data, err := structpb.NewStruct(map[string]interface{}{
		"job":      "orders-etl",
		"decision": "LARGE",
	})
	require.NoError(t, err)

	b, err := MarshalWithSize(data)
	require.NoError(t, err)

	if !assert.Greater(t, len(b), sizePrefixLen) {
		return
	}

	size := binary.LittleEndian.Uint32(b[:sizePrefixLen])
	if !assert.Len(t, b, int(size)+sizePrefixLen) {
		return
	}

	var dst structpb.Struct
	err = proto.Unmarshal(b[sizePrefixLen:], &dst)
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, data.AsMap(), dst.AsMap())
}
