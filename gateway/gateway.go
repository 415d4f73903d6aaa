package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"tripchat/auth"
	"tripchat/contract"
	"tripchat/domain"
	"tripchat/domain/event"
	"tripchat/errors"
	"tripchat/observability"
	"tripchat/services"
)

type GatewayConfig struct {
	PoolCapacity         int
	ConnectionBufferSize int
	RateLimitEvents      int
	RateLimitWindow      time.Duration
	HeartbeatInterval    time.Duration
	HeartbeatMisses      int
}

// Gateway admits authenticated websocket connections, enforces the
// per-connection event budget and translates wire envelopes into calls
// on the room and message services. Errors are only ever reported on
// the originating connection.
type Gateway struct {
	cfg      GatewayConfig
	secret   []byte
	registry contract.IRegistry
	rooms    services.IRoomService
	messages services.IMessageService
	stats    *observability.Stats
	log      *slog.Logger

	upgrader websocket.Upgrader
	baseCtx  context.Context

	mu    sync.RWMutex
	conns map[uuid.UUID]*Conn
}

func NewGateway(
	ctx context.Context,
	cfg GatewayConfig,
	secret []byte,
	registry contract.IRegistry,
	rooms services.IRoomService,
	messages services.IMessageService,
	stats *observability.Stats,
	log *slog.Logger,
) *Gateway {
	return &Gateway{
		cfg:      cfg,
		secret:   secret,
		registry: registry,
		rooms:    rooms,
		messages: messages,
		stats:    stats,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		baseCtx: ctx,
		conns:   make(map[uuid.UUID]*Conn),
	}
}

// HandleWS is the /ws endpoint. Admission control runs before the
// upgrade: a full pool refuses the connection with a capacity error and
// existing connections stay untouched.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	if !g.reserveSlot() {
		g.stats.ConnectionsRefused.Add(1)
		g.writeRefusal(w, errors.CapacityError{Limit: g.cfg.PoolCapacity}, http.StatusServiceUnavailable)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	identity, err := auth.ParseIdentity(token, g.secret)
	if err != nil {
		g.releaseSlot()
		g.stats.ConnectionsRefused.Add(1)
		g.writeRefusal(w, err, http.StatusUnauthorized)
		return
	}

	sock, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.releaseSlot()
		g.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	conn := newConn(g, sock, identity)
	g.register(conn)

	go conn.writePump()
	go conn.readPump()
}

// reserveSlot claims a pool slot before any further admission work. The
// increment-then-check keeps concurrent upgrades from overshooting the
// capacity; a refused or failed admission gives the slot back.
func (g *Gateway) reserveSlot() bool {
	if g.stats.CurrentConnections.Add(1) > int64(g.cfg.PoolCapacity) {
		g.releaseSlot()
		return false
	}
	return true
}

func (g *Gateway) releaseSlot() {
	g.stats.CurrentConnections.Add(-1)
}

// register installs the connection, replacing any previous connection of
// the same actor.
func (g *Gateway) register(conn *Conn) {
	g.mu.Lock()
	previous := g.conns[conn.identity.ActorID]
	g.conns[conn.identity.ActorID] = conn
	g.mu.Unlock()

	if previous != nil {
		g.drop(previous)
	}
	g.stats.ConnectionsAccepted.Add(1)
	g.log.Info("Connection accepted", "actor_id", conn.identity.ActorID)
}

// drop tears a connection down exactly once: room subscriptions are
// released, the socket closed and both pumps unwound.
func (g *Gateway) drop(conn *Conn) {
	conn.closeOnce.Do(func() {
		g.mu.Lock()
		if g.conns[conn.identity.ActorID] == conn {
			delete(g.conns, conn.identity.ActorID)
		}
		g.mu.Unlock()

		g.registry.UnsubscribeAll(conn.identity.ActorID)
		conn.cancel()
		_ = conn.sock.Close()
		g.releaseSlot()
		g.log.Info("Connection closed", "actor_id", conn.identity.ActorID)
	})
}

// handleEvent dispatches one inbound envelope. Heartbeat pings and pongs
// are exempt from the rate limit; everything else consumes one token.
func (g *Gateway) handleEvent(ctx context.Context, conn *Conn, env Envelope) {
	switch env.Type {
	case EventPong:
		conn.missedPongs.Store(0)
		return
	case EventPing:
		pong, err := NewEnvelope(EventPong, map[string]int64{"timestamp": time.Now().UnixMilli()})
		if err == nil {
			conn.reply(pong)
		}
		return
	}

	now := time.Now()
	if !conn.bucket.Allow(now) {
		g.stats.EventsRateLimited.Add(1)
		conn.replyError(errors.RateLimitError{RetryAfter: conn.bucket.RetryAfter(now)})
		return
	}

	switch env.Type {
	case EventMessageSend:
		g.handleSend(ctx, conn, env.Payload)
	case EventRoomCreate:
		g.handleCreateRoom(ctx, conn, env.Payload)
	case EventParticipantAdd:
		g.handleParticipants(ctx, conn, env.Payload, services.OpAdd)
	case EventParticipantRemove:
		g.handleParticipants(ctx, conn, env.Payload, services.OpRemove)
	case EventRoomUpdate:
		g.handleUpdateRoom(ctx, conn, env.Payload)
	case EventSync:
		g.handleSync(ctx, conn, env.Payload)
	default:
		conn.replyError(errors.NewValidation("unknown event type %q", env.Type))
	}
}

func (g *Gateway) handleSend(ctx context.Context, conn *Conn, payload json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		conn.replyError(errors.NewValidation("malformed message:send payload: %v", err))
		return
	}

	message, err := g.messages.Send(ctx, services.SendMessageInput{
		RoomID:   p.RoomID,
		SenderID: conn.identity.ActorID,
		Type:     p.Type,
		Content:  p.Content,
		ThreadID: p.ThreadID,
	})
	if err != nil {
		conn.replyError(err)
		if message.ID != uuid.Nil {
			g.replyStatus(conn, message)
		}
		return
	}

	// The sender observes the room from now on; members receive the
	// broadcast through the fanout.
	g.registry.Subscribe(conn.identity.ActorID, p.RoomID, conn)
	g.replyStatus(conn, message)
}

func (g *Gateway) replyStatus(conn *Conn, message domain.Message) {
	env, err := NewEnvelope(event.KindMessageStatus, StatusPayload{
		RoomID:    message.RoomID,
		MessageID: message.ID,
		Status:    message.Status,
	})
	if err != nil {
		g.log.Error("Cannot marshal status payload", "error", err)
		return
	}
	conn.reply(env)
}

func (g *Gateway) handleCreateRoom(ctx context.Context, conn *Conn, payload json.RawMessage) {
	var p CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		conn.replyError(errors.NewValidation("malformed room:create payload: %v", err))
		return
	}
	creator := conn.identity.ActorID
	isCreator := lo.SomeBy(p.Spec.Participants, func(spec services.ParticipantSpec) bool {
		return spec.UserID == creator
	})
	if !isCreator {
		conn.replyError(errors.NewValidation("creator must be a participant of the room"))
		return
	}

	room, err := g.rooms.CreateRoom(ctx, p.Spec)
	if err != nil {
		conn.replyError(err)
		return
	}

	g.subscribeMembers(room)

	// Direct reply as well: the subscription may land after the created
	// event already fanned out.
	env, mErr := NewEnvelope(event.KindRoomCreated, event.RoomCreated{Room: room})
	if mErr == nil {
		conn.reply(env)
	}
}

func (g *Gateway) handleParticipants(ctx context.Context, conn *Conn, payload json.RawMessage, op services.ParticipantOp) {
	var p ParticipantsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		conn.replyError(errors.NewValidation("malformed participant payload: %v", err))
		return
	}

	room, err := g.rooms.ManageParticipants(ctx, p.RoomID, conn.identity.ActorID, op, p.Participants)
	if err != nil {
		conn.replyError(err)
		return
	}

	switch op {
	case services.OpAdd:
		g.subscribeMembers(room)
	case services.OpRemove:
		for _, spec := range p.Participants {
			g.registry.Unsubscribe(spec.UserID, p.RoomID)
		}
	}
}

func (g *Gateway) handleUpdateRoom(ctx context.Context, conn *Conn, payload json.RawMessage) {
	var p UpdateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		conn.replyError(errors.NewValidation("malformed room:update payload: %v", err))
		return
	}
	if _, err := g.rooms.UpdateRoom(ctx, p.RoomID, conn.identity.ActorID, p.Patch); err != nil {
		conn.replyError(err)
	}
}

// handleSync subscribes the connection to a room it belongs to and
// redelivers every message still in SENT, so a reconnecting client
// catches up on what it missed.
func (g *Gateway) handleSync(ctx context.Context, conn *Conn, payload json.RawMessage) {
	var p SyncPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		conn.replyError(errors.NewValidation("malformed sync payload: %v", err))
		return
	}
	if !g.rooms.ValidateRoomAccess(ctx, p.RoomID, conn.identity.ActorID) {
		conn.replyError(errors.NewAuthorization("not a participant of room %s", p.RoomID))
		return
	}

	g.registry.Subscribe(conn.identity.ActorID, p.RoomID, conn)

	undelivered, err := g.messages.Undelivered(ctx, p.RoomID)
	if err != nil {
		conn.replyError(err)
		return
	}
	for _, message := range undelivered {
		env, mErr := NewEnvelope(event.KindMessageNew, event.MessageNew{Message: message})
		if mErr != nil {
			continue
		}
		conn.reply(env)
		if message.SenderID != conn.identity.ActorID {
			go g.ackDelivery(message.RoomID, message.ID)
		}
	}
}

// subscribeMembers attaches every room member with a live connection to
// the room's fanout.
func (g *Gateway) subscribeMembers(room domain.Room) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, participant := range room.Participants {
		if conn, ok := g.conns[participant.UserID]; ok {
			g.registry.Subscribe(participant.UserID, room.ID, conn)
		}
	}
}

// ackDelivery drives SENT -> DELIVERED after a recipient has the message
// buffered. Idempotent on the processor side, so concurrent acks from
// several recipients are harmless.
func (g *Gateway) ackDelivery(roomID, messageID uuid.UUID) {
	ctx, cancel := context.WithTimeout(g.baseCtx, 5*time.Second)
	defer cancel()
	if _, err := g.messages.AckDelivery(ctx, roomID, messageID); err != nil {
		g.stats.DeliveryFailures.Add(1)
		g.log.Warn("Delivery acknowledgment failed",
			"room_id", roomID, "message_id", messageID, "error", err)
	}
}

func (g *Gateway) writeRefusal(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorPayload{Code: errors.Code(err), Message: err.Error()})
}
