package netio

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"matchcore/orderbook"
	"matchcore/wire"
)

// DefaultSnapshotTimeout bounds the whole cold-start load (§4.5, §5:
// "The Snapshot Loader has a bounded total timeout; exceeding it
// aborts startup").
const DefaultSnapshotTimeout = 30 * time.Second

// ErrSnapshotTruncated is returned when the connection closes before a
// sentinel record is seen.
var ErrSnapshotTruncated = errors.New("netio: snapshot stream ended without a sentinel record")

// LoadSnapshot connects to addr, reads a stream of OrderSubmit-layout
// records terminated by a zero-sized sentinel (message_type=0), and
// inserts each directly into book via insert_resting — never through
// the matching path (§4.5). A connect failure or truncated stream is
// fatal at startup; the caller is expected to abort the process on a
// non-nil error.
func LoadSnapshot(addr string, book *orderbook.Book, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	loaded := 0
	buf := make([]byte, wire.FrameSize)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return ErrSnapshotTruncated
			}
			return err
		}

		mt, err := wire.PeekMessageType(buf)
		if err != nil {
			return err
		}
		if mt == wire.TypeSnapshotEnd {
			break
		}
		if mt != wire.TypeOrderSubmit {
			return wire.ErrUnknownMessageType
		}

		order, err := wire.DecodeOrderSubmit(buf)
		if err != nil {
			return err
		}
		if err := book.InsertResting(&order); err != nil {
			return err
		}
		loaded++
	}

	book.SetReady()
	log.Info().Int("orders_loaded", loaded).Str("fuel_server", addr).Msg("snapshot load complete")
	return nil
}
