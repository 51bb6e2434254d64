// Package netio wires the order book's byte-level interfaces to real
// sockets: the UDP multicast ingress receiver and egress broadcaster
// (§4.3, §4.4), the TCP snapshot loader (§4.5), and the periodic status
// emitter (§5). It is grounded on the teacher's server.go/worker.go
// (saiputravu-Exchange), adapted from a length-prefixed TCP chat
// protocol to the fixed-50-byte UDP/TCP framing of §6.
package netio

import (
	"net"

	"github.com/rs/zerolog/log"

	"matchcore/domain"
	"matchcore/matching"
	"matchcore/wire"
)

// DefaultOrderMulticast is the default group/port orders are received
// on (§6).
const DefaultOrderMulticast = "224.0.0.1:5000"

// Ingress joins a UDP multicast group, decodes OrderSubmit/OrderCancel
// frames, and pushes them onto a bounded inbound queue with a
// non-blocking try-send (§4.3).
type Ingress struct {
	conn     *net.UDPConn
	productID uint16
	inbound  chan<- domain.Inbound
	stats    *matching.Stats
}

// DialIngress joins addr (a "host:port" multicast group) for reading.
func DialIngress(addr string, productID uint16, inbound chan<- domain.Inbound, stats *matching.Stats) (*Ingress, error) {
	group, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenMulticastUDP("udp", nil, group)
	if err != nil {
		return nil, err
	}
	conn.SetReadBuffer(1 << 20)
	return &Ingress{conn: conn, productID: productID, inbound: inbound, stats: stats}, nil
}

// Close releases the underlying socket.
func (g *Ingress) Close() error { return g.conn.Close() }

// Run reads datagrams until the connection is closed or the caller's
// shutdown signal fires. It is meant to run under a tomb.Tomb.Go;
// closing the socket from the Shutdown path is what unblocks the
// ReadFromUDP call below.
func (g *Ingress) Run(done <-chan struct{}) error {
	buf := make([]byte, wire.FrameSize+1) // +1 catches an oversized datagram
	for {
		select {
		case <-done:
			return nil
		default:
		}

		n, _, err := g.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-done:
				return nil
			default:
			}
			log.Error().Err(err).Msg("ingress read failed")
			continue
		}

		msg, ok := g.decode(buf[:n])
		if !ok {
			continue
		}

		select {
		case g.inbound <- msg:
		default:
			g.stats.InboundDrops.Add(1)
			log.Debug().Msg("inbound queue full, dropping packet")
		}
	}
}

func (g *Ingress) decode(buf []byte) (domain.Inbound, bool) {
	mt, err := wire.PeekMessageType(buf)
	if err != nil {
		g.stats.Malformed.Add(1)
		log.Debug().Err(err).Int("size", len(buf)).Msg("malformed ingress packet")
		return domain.Inbound{}, false
	}

	switch mt {
	case wire.TypeOrderSubmit:
		order, err := wire.DecodeOrderSubmit(buf)
		if err != nil {
			g.stats.Malformed.Add(1)
			log.Debug().Err(err).Msg("malformed order submit")
			return domain.Inbound{}, false
		}
		if order.ProductID != g.productID {
			g.stats.Malformed.Add(1)
			log.Debug().Uint16("product_id", order.ProductID).Msg("order submit for wrong product")
			return domain.Inbound{}, false
		}
		return domain.Inbound{Kind: domain.MsgOrderSubmit, Order: order}, true
	case wire.TypeOrderCancel:
		cancel, err := wire.DecodeOrderCancel(buf)
		if err != nil {
			g.stats.Malformed.Add(1)
			log.Debug().Err(err).Msg("malformed order cancel")
			return domain.Inbound{}, false
		}
		if cancel.ProductID != g.productID {
			g.stats.Malformed.Add(1)
			log.Debug().Uint16("product_id", cancel.ProductID).Msg("order cancel for wrong product")
			return domain.Inbound{}, false
		}
		return domain.Inbound{Kind: domain.MsgOrderCancel, Cancel: cancel}, true
	default:
		// MatchResult/EngineStatus/SnapshotEnd never arrive on the order
		// group; a peer misconfiguration, not a Matcher concern.
		g.stats.Malformed.Add(1)
		return domain.Inbound{}, false
	}
}
