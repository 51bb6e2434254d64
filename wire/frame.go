// Package wire implements the fixed 50-byte binary frame of §6: the
// only format that ever crosses a multicast or TCP socket in this
// engine. Every multi-byte field is big-endian. There is no length
// prefix and no fragmentation — a datagram that is not exactly
// FrameSize bytes is malformed by definition.
package wire

import "errors"

// FrameSize is the fixed size of every wire frame (§6).
const FrameSize = 50

// Byte offsets of the common frame header, shared by every message
// type.
const (
	offMessageType = 0
	offProductID   = 1
	offSide        = 3
	offPriceType   = 4
	offPrice       = 5
	offQuantity    = 13
	offOrderID     = 21
	offSubmitTime  = 29
	offExpireTime  = 37
	offReserved    = 45
	reservedSize   = FrameSize - offReserved // 5
)

// MessageType identifies the wire message (§6).
type MessageType uint8

const (
	TypeOrderSubmit MessageType = 1
	TypeOrderCancel MessageType = 2
	TypeMatchResult MessageType = 3
	TypeEngineStatus MessageType = 4
	// TypeSnapshotEnd is the zero-sized sentinel the fuel server sends
	// to cleanly signal end-of-stream (§6 "Snapshot (TCP) protocol").
	TypeSnapshotEnd MessageType = 0
)

// The wireSide* / wirePrice* constants mirror domain.Side / domain.PriceType at
// the byte level, kept distinct so the wire package has no import
// dependency on domain's semantics beyond what it decodes into.
const (
	wireSideBuy  = 1
	wireSideSell = 2

	wirePriceLimit  = 1
	wirePriceMarket = 2
)

var (
	// ErrBadFrameSize is returned for any datagram whose length is not
	// exactly FrameSize.
	ErrBadFrameSize = errors.New("wire: frame is not 50 bytes")
	// ErrUnknownMessageType is returned for a message_type byte outside
	// the defined values, and by each Decode function for a frame whose
	// message_type is not the one that function decodes.
	ErrUnknownMessageType = errors.New("wire: unknown message_type")
	// ErrInvalidEnum is returned for an out-of-range side/price_type
	// enum value.
	ErrInvalidEnum = errors.New("wire: invalid enum value")
)

// PeekMessageType reads just the message_type byte, validating the
// frame size first. Ingress uses this to route a datagram to the
// right decoder without double-parsing.
func PeekMessageType(buf []byte) (MessageType, error) {
	if len(buf) != FrameSize {
		return 0, ErrBadFrameSize
	}
	mt := MessageType(buf[offMessageType])
	switch mt {
	case TypeOrderSubmit, TypeOrderCancel, TypeMatchResult, TypeEngineStatus, TypeSnapshotEnd:
		return mt, nil
	default:
		return 0, ErrUnknownMessageType
	}
}
