package wire

import (
	"encoding/binary"

	"matchcore/domain"
)

// EncodeOrderSubmit writes order as a 50-byte OrderSubmit frame. tag
// is the submitting instance's name (§6 "reserved/tag"), truncated to
// 5 bytes and zero-padded.
func EncodeOrderSubmit(order domain.Order, tag string) [FrameSize]byte {
	var buf [FrameSize]byte
	buf[offMessageType] = byte(TypeOrderSubmit)
	binary.BigEndian.PutUint16(buf[offProductID:], order.ProductID)
	buf[offSide] = sideToWire(order.Side)
	buf[offPriceType] = priceTypeToWire(order.PriceType)
	binary.BigEndian.PutUint64(buf[offPrice:], order.Price)
	binary.BigEndian.PutUint64(buf[offQuantity:], order.Quantity)
	binary.BigEndian.PutUint64(buf[offOrderID:], order.OrderID)
	binary.BigEndian.PutUint64(buf[offSubmitTime:], order.SubmitTime)
	binary.BigEndian.PutUint64(buf[offExpireTime:], order.ExpireTime)
	putTag(buf[offReserved:], tag)
	return buf
}

// DecodeOrderSubmit parses a 50-byte OrderSubmit frame.
func DecodeOrderSubmit(buf []byte) (domain.Order, error) {
	var o domain.Order
	if len(buf) != FrameSize {
		return o, ErrBadFrameSize
	}
	if MessageType(buf[offMessageType]) != TypeOrderSubmit {
		return o, ErrUnknownMessageType
	}
	side, err := sideFromWire(buf[offSide])
	if err != nil {
		return o, err
	}
	priceType, err := priceTypeFromWire(buf[offPriceType])
	if err != nil {
		return o, err
	}
	o.ProductID = binary.BigEndian.Uint16(buf[offProductID:])
	o.Side = side
	o.PriceType = priceType
	o.Price = binary.BigEndian.Uint64(buf[offPrice:])
	o.Quantity = binary.BigEndian.Uint64(buf[offQuantity:])
	o.OrderID = binary.BigEndian.Uint64(buf[offOrderID:])
	o.SubmitTime = binary.BigEndian.Uint64(buf[offSubmitTime:])
	o.ExpireTime = binary.BigEndian.Uint64(buf[offExpireTime:])
	return o, nil
}

// EncodeOrderCancel writes req as a 50-byte OrderCancel frame.
func EncodeOrderCancel(req domain.CancelRequest, tag string) [FrameSize]byte {
	var buf [FrameSize]byte
	buf[offMessageType] = byte(TypeOrderCancel)
	binary.BigEndian.PutUint16(buf[offProductID:], req.ProductID)
	binary.BigEndian.PutUint64(buf[offOrderID:], req.OrderID)
	putTag(buf[offReserved:], tag)
	return buf
}

// DecodeOrderCancel parses a 50-byte OrderCancel frame.
func DecodeOrderCancel(buf []byte) (domain.CancelRequest, error) {
	var req domain.CancelRequest
	if len(buf) != FrameSize {
		return req, ErrBadFrameSize
	}
	if MessageType(buf[offMessageType]) != TypeOrderCancel {
		return req, ErrUnknownMessageType
	}
	req.ProductID = binary.BigEndian.Uint16(buf[offProductID:])
	req.OrderID = binary.BigEndian.Uint64(buf[offOrderID:])
	return req, nil
}

// EncodeMatchResult writes r as a 50-byte MatchResult frame. Per §9's
// open question on sub-layout, this engine packs MatchResult as:
// price, quantity and taker order_id in their usual slots, the maker
// order_id in the expire_time slot, the execution timestamp in the
// submit_time slot, and the sequence number in the 5-byte reserved
// tail (40 bits — ample for a single process's lifetime match count).
func EncodeMatchResult(r domain.MatchResult) [FrameSize]byte {
	var buf [FrameSize]byte
	buf[offMessageType] = byte(TypeMatchResult)
	binary.BigEndian.PutUint16(buf[offProductID:], r.ProductID)
	binary.BigEndian.PutUint64(buf[offPrice:], r.Price)
	binary.BigEndian.PutUint64(buf[offQuantity:], r.Quantity)
	binary.BigEndian.PutUint64(buf[offOrderID:], r.TakerOrderID)
	binary.BigEndian.PutUint64(buf[offSubmitTime:], r.ExecTime)
	binary.BigEndian.PutUint64(buf[offExpireTime:], r.MakerOrderID)
	putUint40(buf[offReserved:], r.Sequence)
	return buf
}

// DecodeMatchResult parses a 50-byte MatchResult frame written by
// EncodeMatchResult.
func DecodeMatchResult(buf []byte) (domain.MatchResult, error) {
	var r domain.MatchResult
	if len(buf) != FrameSize {
		return r, ErrBadFrameSize
	}
	if MessageType(buf[offMessageType]) != TypeMatchResult {
		return r, ErrUnknownMessageType
	}
	r.ProductID = binary.BigEndian.Uint16(buf[offProductID:])
	r.Price = binary.BigEndian.Uint64(buf[offPrice:])
	r.Quantity = binary.BigEndian.Uint64(buf[offQuantity:])
	r.TakerOrderID = binary.BigEndian.Uint64(buf[offOrderID:])
	r.ExecTime = binary.BigEndian.Uint64(buf[offSubmitTime:])
	r.MakerOrderID = binary.BigEndian.Uint64(buf[offExpireTime:])
	r.Sequence = getUint40(buf[offReserved:])
	return r, nil
}

// EncodeEngineStatus writes s as a 50-byte EngineStatus frame. The
// ready flag reuses the `side` byte slot, the has-best-bid/has-best-ask
// flags are packed into the `price_type` byte slot, and RestingCount
// is packed into the 5-byte reserved tail — the fuller counter set
// (drop counters, structural rejects) does not fit the fixed frame and
// is exposed only through the metrics endpoint (SPEC_FULL §2).
func EncodeEngineStatus(s domain.EngineStatus) [FrameSize]byte {
	var buf [FrameSize]byte
	buf[offMessageType] = byte(TypeEngineStatus)
	binary.BigEndian.PutUint16(buf[offProductID:], s.ProductID)
	if s.Ready {
		buf[offSide] = 1
	}
	var flags byte
	if s.HasBestBid {
		flags |= 1 << 0
	}
	if s.HasBestAsk {
		flags |= 1 << 1
	}
	buf[offPriceType] = flags
	binary.BigEndian.PutUint64(buf[offPrice:], s.BestBid)
	binary.BigEndian.PutUint64(buf[offQuantity:], s.BestAsk)
	binary.BigEndian.PutUint64(buf[offOrderID:], s.MatchedCount)
	binary.BigEndian.PutUint64(buf[offSubmitTime:], s.Timestamp)
	binary.BigEndian.PutUint64(buf[offExpireTime:], s.LastSequence)
	putUint40(buf[offReserved:], s.RestingCount)
	return buf
}

// DecodeEngineStatus parses a 50-byte EngineStatus frame written by
// EncodeEngineStatus.
func DecodeEngineStatus(buf []byte) (domain.EngineStatus, error) {
	var s domain.EngineStatus
	if len(buf) != FrameSize {
		return s, ErrBadFrameSize
	}
	if MessageType(buf[offMessageType]) != TypeEngineStatus {
		return s, ErrUnknownMessageType
	}
	s.ProductID = binary.BigEndian.Uint16(buf[offProductID:])
	s.Ready = buf[offSide] == 1
	flags := buf[offPriceType]
	s.HasBestBid = flags&(1<<0) != 0
	s.HasBestAsk = flags&(1<<1) != 0
	s.BestBid = binary.BigEndian.Uint64(buf[offPrice:])
	s.BestAsk = binary.BigEndian.Uint64(buf[offQuantity:])
	s.MatchedCount = binary.BigEndian.Uint64(buf[offOrderID:])
	s.Timestamp = binary.BigEndian.Uint64(buf[offSubmitTime:])
	s.LastSequence = binary.BigEndian.Uint64(buf[offExpireTime:])
	s.RestingCount = getUint40(buf[offReserved:])
	return s, nil
}

func sideToWire(s domain.Side) byte {
	if s == domain.Sell {
		return wireSideSell
	}
	return wireSideBuy
}

func sideFromWire(b byte) (domain.Side, error) {
	switch b {
	case wireSideBuy:
		return domain.Buy, nil
	case wireSideSell:
		return domain.Sell, nil
	default:
		return 0, ErrInvalidEnum
	}
}

func priceTypeToWire(p domain.PriceType) byte {
	if p == domain.Market {
		return wirePriceMarket
	}
	return wirePriceLimit
}

func priceTypeFromWire(b byte) (domain.PriceType, error) {
	switch b {
	case wirePriceLimit:
		return domain.Limit, nil
	case wirePriceMarket:
		return domain.Market, nil
	default:
		return 0, ErrInvalidEnum
	}
}

// putTag writes up to len(dst) bytes of tag, zero-padding the rest.
func putTag(dst []byte, tag string) {
	n := copy(dst, tag)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// putUint40 writes the low 40 bits of v big-endian into a 5-byte slot.
func putUint40(dst []byte, v uint64) {
	dst[0] = byte(v >> 32)
	dst[1] = byte(v >> 24)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 8)
	dst[4] = byte(v)
}

func getUint40(src []byte) uint64 {
	return uint64(src[0])<<32 | uint64(src[1])<<24 | uint64(src[2])<<16 | uint64(src[3])<<8 | uint64(src[4])
}
