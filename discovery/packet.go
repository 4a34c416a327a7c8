// Package discovery implements the server presence protocol: a fixed-format
// offer packet broadcast over UDP while the lobby accepts players.
package discovery

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	// MagicCookie identifies a valid offer packet. Receivers must validate it
	// before trusting any other field.
	MagicCookie uint32 = 0xabcddcba

	// MessageTypeOffer is the only message type the server emits.
	MessageTypeOffer byte = 0x2

	// ServerNameLength is the fixed width of the server name field. Shorter
	// names are space-padded, longer names truncated.
	ServerNameLength = 32

	// PacketLength is the total encoded size: cookie (4) + type (1) +
	// name (32) + port (2).
	PacketLength = 7 + ServerNameLength
)

var (
	// ErrPacketTooShort is returned when a buffer cannot hold a full packet.
	ErrPacketTooShort = errors.New("discovery: packet too short")

	// ErrBadMagicCookie is returned when the magic cookie does not match.
	ErrBadMagicCookie = errors.New("discovery: bad magic cookie")

	// ErrBadMessageType is returned when the message type is not an offer.
	ErrBadMessageType = errors.New("discovery: bad message type")
)

// Packet is a decoded server offer: the announcing server's display name and
// the TCP port players should connect to.
type Packet struct {
	ServerName string
	TCPPort    uint16
}

// Encode serializes the packet into the fixed 39-byte big-endian layout:
// magic cookie, message type, space-padded server name, TCP port.
//
// Returns:
//   - The encoded packet bytes, always PacketLength long
func (p Packet) Encode() []byte {
	buf := make([]byte, PacketLength)
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = MessageTypeOffer

	name := p.ServerName
	if len(name) > ServerNameLength {
		name = name[:ServerNameLength]
	}
	copy(buf[5:5+ServerNameLength], name)
	for i := 5 + len(name); i < 5+ServerNameLength; i++ {
		buf[i] = ' '
	}

	binary.BigEndian.PutUint16(buf[5+ServerNameLength:], p.TCPPort)
	return buf
}

// Decode parses an offer packet, validating length, magic cookie, and message
// type. Callers receiving packets off the wire should silently discard
// buffers that fail to decode rather than treating them as errors.
//
// Parameters:
//   - buf: The raw datagram payload
//
// Returns:
//   - The decoded packet with the name trimmed of padding
//   - ErrPacketTooShort, ErrBadMagicCookie, or ErrBadMessageType on rejection
func Decode(buf []byte) (Packet, error) {
	if len(buf) < PacketLength {
		return Packet{}, ErrPacketTooShort
	}

	if binary.BigEndian.Uint32(buf[0:4]) != MagicCookie {
		return Packet{}, ErrBadMagicCookie
	}

	if buf[4] != MessageTypeOffer {
		return Packet{}, ErrBadMessageType
	}

	return Packet{
		ServerName: strings.TrimRight(string(buf[5:5+ServerNameLength]), " "),
		TCPPort:    binary.BigEndian.Uint16(buf[5+ServerNameLength:]),
	}, nil
}
