package secure

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/loco/common"
	"github.com/gosuda/loco/cryptoops"
)

var (
	testKeyOnce sync.Once
	testRsaKey  *rsa.PrivateKey
)

func rsaTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testRsaKey = key
	})
	return testRsaKey
}

// moveBytes drains src's write buffer into dst's read buffer, playing the
// transport.
func moveBytes(src, dst *Layer) {
	n := src.WriteBuffer.Len()
	if n > 0 {
		dst.ReadBuffer.Write(src.WriteBuffer.Next(n))
	}
}

func TestLayerRoundTripAcrossSwap(t *testing.T) {
	key := cryptoops.GenerateKey()
	layer := NewLayer(key)

	sent := Packet{
		Data: []byte{0, 1, 2},
	}
	layer.Send(sent)

	// Loop the write buffer back into the read buffer.
	layer.ReadBuffer.Write(layer.WriteBuffer.Next(layer.WriteBuffer.Len()))

	got, err := layer.Read()
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, sent.IV, got.IV)
	assert.Equal(t, sent.Data, got.Data)
}

func TestLayerWireLayout(t *testing.T) {
	key := cryptoops.GenerateKey()
	layer := NewLayer(key)

	var iv [common.IVSize]byte
	for i := range iv {
		iv[i] = byte(i)
	}

	layer.Send(Packet{IV: iv, Data: []byte{1, 2, 3, 4, 5}})

	frame := layer.WriteBuffer.Next(layer.WriteBuffer.Len())
	require.Len(t, frame, common.SecureHeadSize+5)

	size := binary.LittleEndian.Uint32(frame[:4])
	assert.Equal(t, uint32(common.IVSize+5), size)
	assert.Equal(t, iv[:], frame[4:20])

	// Ciphertext, not plaintext, after the head.
	assert.NotEqual(t, []byte{1, 2, 3, 4, 5}, frame[20:])
}

func TestLayerEmptyPacket(t *testing.T) {
	key := cryptoops.GenerateKey()
	layer := NewLayer(key)

	layer.Send(Packet{})

	frame := layer.WriteBuffer.Next(layer.WriteBuffer.Len())
	require.Len(t, frame, common.SecureHeadSize)
	assert.Equal(t, uint32(common.IVSize), binary.LittleEndian.Uint32(frame[:4]))

	layer.ReadBuffer.Write(frame)
	got, err := layer.Read()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Data)
}

func TestLayerFragmentedRead(t *testing.T) {
	key := cryptoops.GenerateKey()
	sender := NewLayer(key)
	receiver := NewLayer(key)

	sender.Send(Packet{
		IV:   cryptoops.GenerateIV(),
		Data: []byte("fragmented delivery"),
	})

	frame := sender.WriteBuffer.Next(sender.WriteBuffer.Len())
	for i := 0; i < len(frame)-1; i++ {
		receiver.ReadBuffer.WriteByte(frame[i])

		got, err := receiver.Read()
		require.NoError(t, err)
		require.Nil(t, got, "packet yielded early at byte %d", i+1)
	}

	receiver.ReadBuffer.WriteByte(frame[len(frame)-1])
	got, err := receiver.Read()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("fragmented delivery"), got.Data)
}

func TestLayerDistinctIVDistinctCiphertext(t *testing.T) {
	key := cryptoops.GenerateKey()
	layer := NewLayer(key)

	plaintext := []byte("identical plaintext")

	layer.SendData(plaintext)
	first := layer.WriteBuffer.Next(layer.WriteBuffer.Len())

	layer.SendData(plaintext)
	second := layer.WriteBuffer.Next(layer.WriteBuffer.Len())

	assert.NotEqual(t, first, second, "two sends of the same plaintext must differ on the wire")
}

func TestLayerMalformedHead(t *testing.T) {
	key := cryptoops.GenerateKey()
	layer := NewLayer(key)

	// size < 16 cannot hold the IV.
	var head [common.SecureHeadSize]byte
	binary.LittleEndian.PutUint32(head[:4], 4)
	layer.ReadBuffer.Write(head[:])

	_, err := layer.Read()
	require.ErrorIs(t, err, common.ErrMalformedFrame)

	_, err = layer.Read()
	require.ErrorIs(t, err, common.ErrStreamCorrupted)
}

func TestLayerPeerRoundTrip(t *testing.T) {
	key := cryptoops.GenerateKey()
	client := NewLayer(key)
	server := NewLayer(key)

	client.SendData([]byte("hello server"))
	moveBytes(client, server)

	got, err := server.Read()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("hello server"), got.Data)

	server.SendData([]byte("hello client"))
	moveBytes(server, client)

	got, err = client.Read()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("hello client"), got.Data)
}
