package discovery

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacket_Encode(t *testing.T) {
	t.Run("layout is fixed and big-endian", func(t *testing.T) {
		p := Packet{ServerName: "Team Mystic", TCPPort: 54321}
		buf := p.Encode()

		require.Len(t, buf, PacketLength)
		assert.Equal(t, MagicCookie, binary.BigEndian.Uint32(buf[0:4]))
		assert.Equal(t, MessageTypeOffer, buf[4])
		assert.Equal(t, uint16(54321), binary.BigEndian.Uint16(buf[37:39]))
	})

	t.Run("short name is space-padded to 32 bytes", func(t *testing.T) {
		buf := Packet{ServerName: "Team Mystic"}.Encode()
		name := string(buf[5:37])
		assert.Equal(t, "Team Mystic"+strings.Repeat(" ", 21), name)
	})

	t.Run("long name is truncated to 32 bytes", func(t *testing.T) {
		long := strings.Repeat("x", 40)
		buf := Packet{ServerName: long}.Encode()
		assert.Equal(t, long[:32], string(buf[5:37]))
	})
}

func TestDecode(t *testing.T) {
	t.Run("round-trip preserves name and port", func(t *testing.T) {
		in := Packet{ServerName: "Team Mystic", TCPPort: 54321}
		out, err := Decode(in.Encode())
		require.NoError(t, err)
		assert.Equal(t, "Team Mystic", out.ServerName)
		assert.Equal(t, uint16(54321), out.TCPPort)
	})

	t.Run("bad magic cookie is rejected regardless of payload", func(t *testing.T) {
		buf := Packet{ServerName: "Team Mystic", TCPPort: 54321}.Encode()
		binary.BigEndian.PutUint32(buf[0:4], 0x12345678)
		_, err := Decode(buf)
		assert.ErrorIs(t, err, ErrBadMagicCookie)
	})

	t.Run("bad message type is rejected", func(t *testing.T) {
		buf := Packet{ServerName: "Team Mystic", TCPPort: 54321}.Encode()
		buf[4] = 0x4
		_, err := Decode(buf)
		assert.ErrorIs(t, err, ErrBadMessageType)
	})

	t.Run("short buffer is rejected", func(t *testing.T) {
		buf := Packet{ServerName: "Team Mystic"}.Encode()
		_, err := Decode(buf[:PacketLength-1])
		assert.ErrorIs(t, err, ErrPacketTooShort)
	})

	t.Run("empty buffer is rejected", func(t *testing.T) {
		_, err := Decode(nil)
		assert.ErrorIs(t, err, ErrPacketTooShort)
	})
}
