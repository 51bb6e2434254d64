package netio

import (
	"net"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/domain"
	"matchcore/wire"
)

// DefaultResultMulticast / DefaultStatusMulticast are the default
// groups results and status records are sent on (§6). Spec and
// teacher convention both send these on separate sockets even when
// they share a group.
const (
	DefaultResultMulticast = "224.0.0.2:5000"
	DefaultStatusMulticast = "224.0.0.2:5000"
)

// Egress sends MatchResult and EngineStatus records on their
// respective multicast groups (§4.4). It never backpressures the
// Matcher: RunResults and RunStatus drain their channels strictly as
// fast as the socket write allows, and the channels are what absorb bursts (sized and
// drop-policed upstream, not here).
type Egress struct {
	resultConn *net.UDPConn
	statusConn *net.UDPConn
	tag        string
}

// DialEgress resolves and connects the result/status multicast
// destinations for sending.
func DialEgress(resultAddr, statusAddr, tag string) (*Egress, error) {
	resultConn, err := dialMulticastSend(resultAddr)
	if err != nil {
		return nil, err
	}
	statusConn, err := dialMulticastSend(statusAddr)
	if err != nil {
		resultConn.Close()
		return nil, err
	}
	return &Egress{resultConn: resultConn, statusConn: statusConn, tag: tag}, nil
}

func dialMulticastSend(addr string) (*net.UDPConn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	return net.DialUDP("udp", nil, raddr)
}

// Close releases both underlying sockets.
func (e *Egress) Close() {
	e.resultConn.Close()
	e.statusConn.Close()
}

// RunResults drains results until t dies, encoding and sending each as
// a MatchResult frame. On shutdown it returns at its next suspension
// point per §5, discarding whatever is still queued.
func (e *Egress) RunResults(t *tomb.Tomb, results <-chan domain.MatchResult) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case r := <-results:
			buf := wire.EncodeMatchResult(r)
			if _, err := e.resultConn.Write(buf[:]); err != nil {
				log.Error().Err(err).Uint64("sequence", r.Sequence).Msg("egress result send failed")
			}
		}
	}
}

// RunStatus drains status records until t dies, encoding and sending
// each as an EngineStatus frame.
func (e *Egress) RunStatus(t *tomb.Tomb, statuses <-chan domain.EngineStatus) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case s := <-statuses:
			buf := wire.EncodeEngineStatus(s)
			if _, err := e.statusConn.Write(buf[:]); err != nil {
				log.Error().Err(err).Uint16("product_id", s.ProductID).Msg("egress status send failed")
			}
		}
	}
}
