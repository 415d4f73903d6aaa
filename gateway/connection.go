package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"tripchat/auth"
	"tripchat/contract"
	"tripchat/domain/event"
	"tripchat/errors"
)

const (
	writeWait       = 10 * time.Second
	maxInboundBytes = 64 * 1024
)

var _ contract.EventSink = (*Conn)(nil)

// Conn is one authenticated websocket connection. It doubles as the
// participant's event sink: the fanout enqueues broadcast envelopes on
// the send channel and the write pump flushes them, so a slow client
// never blocks a room processor.
type Conn struct {
	identity auth.Identity
	gw       *Gateway
	sock     *websocket.Conn
	send     chan Envelope
	bucket   *tokenBucket
	log      *slog.Logger

	missedPongs atomic.Int32
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

func newConn(gw *Gateway, sock *websocket.Conn, identity auth.Identity) *Conn {
	ctx, cancel := context.WithCancel(gw.baseCtx)
	return &Conn{
		identity: identity,
		gw:       gw,
		sock:     sock,
		send:     make(chan Envelope, gw.cfg.ConnectionBufferSize),
		bucket:   newTokenBucket(gw.cfg.RateLimitEvents, gw.cfg.RateLimitWindow),
		log:      gw.log.With("actor_id", identity.ActorID),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Consume implements contract.EventSink. A successful enqueue of a
// message:new for a recipient acknowledges delivery: the message moves
// SENT -> DELIVERED once the first connected recipient has it buffered.
func (c *Conn) Consume(ctx context.Context, e event.DomainEvent) error {
	env, err := EventEnvelope(e)
	if err != nil {
		return err
	}
	select {
	case c.send <- env:
	case <-ctx.Done():
		c.gw.stats.DeliveryFailures.Add(1)
		return errors.TransportError{Recipient: c.identity.ActorID.String(), Err: ctx.Err()}
	case <-c.ctx.Done():
		return errors.TransportError{Recipient: c.identity.ActorID.String(), Err: c.ctx.Err()}
	}

	if accepted, ok := e.(event.MessageNew); ok && accepted.Message.SenderID != c.identity.ActorID {
		go c.gw.ackDelivery(accepted.Message.RoomID, accepted.Message.ID)
	}
	return nil
}

// reply pushes an envelope to this connection only, dropping it when the
// client's buffer is full.
func (c *Conn) reply(env Envelope) {
	select {
	case <-c.ctx.Done():
	case c.send <- env:
	default:
		c.gw.stats.DeliveryFailures.Add(1)
		c.log.Warn("Dropped reply, connection buffer full", "event", env.Type)
	}
}

func (c *Conn) replyError(err error) {
	env, mErr := NewEnvelope(EventError, ErrorPayload{
		Code:    errors.Code(err),
		Message: err.Error(),
	})
	if mErr != nil {
		c.log.Error("Cannot marshal error envelope", "error", mErr)
		return
	}
	c.reply(env)
}

// readPump decodes inbound envelopes and hands them to the gateway. It
// exits on any read error and tears the connection down.
func (c *Conn) readPump() {
	defer c.gw.drop(c)

	c.sock.SetReadLimit(maxInboundBytes)
	deadline := time.Duration(c.gw.cfg.HeartbeatMisses+1) * c.gw.cfg.HeartbeatInterval
	_ = c.sock.SetReadDeadline(time.Now().Add(deadline))

	for {
		_, raw, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Connection read failed", "error", err)
			}
			return
		}
		_ = c.sock.SetReadDeadline(time.Now().Add(deadline))

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.replyError(errors.NewValidation("malformed envelope: %v", err))
			continue
		}
		c.gw.handleEvent(c.ctx, c, env)
	}
}

// writePump owns all writes to the socket: buffered envelopes and the
// heartbeat pings. A connection missing too many pongs in a row is
// evicted.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.gw.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		c.gw.drop(c)
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.sock.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
			return
		case env := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteJSON(env); err != nil {
				c.log.Debug("Connection write failed", "error", err)
				return
			}
		case <-ticker.C:
			if int(c.missedPongs.Load()) >= c.gw.cfg.HeartbeatMisses {
				c.gw.stats.ConnectionsEvicted.Add(1)
				c.log.Info("Evicting unresponsive connection",
					"missed_pongs", c.missedPongs.Load())
				return
			}
			c.missedPongs.Add(1)
			ping, err := NewEnvelope(EventPing, map[string]int64{"timestamp": time.Now().UnixMilli()})
			if err != nil {
				continue
			}
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteJSON(ping); err != nil {
				return
			}
		}
	}
}
