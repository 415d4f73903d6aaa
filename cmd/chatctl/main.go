// chatctl is the development client for the chat gateway: an interactive
// websocket session plus small helpers to mint identity tokens and to
// render the /statsz endpoint.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"

	"tripchat/auth"
	"tripchat/domain"
	"tripchat/domain/event"
	"tripchat/gateway"
	"tripchat/projection"
	"tripchat/services"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "gateway host:port")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "identity token secret")
	actor := flag.String("actor", "", "actor id (random when empty)")
	room := flag.String("room", "", "default room id for plain text input")
	flag.Parse()

	actorID := uuid.New()
	if *actor != "" {
		parsed, err := uuid.Parse(*actor)
		if err != nil {
			fatal("invalid actor id: %v", err)
		}
		actorID = parsed
	}

	switch flag.Arg(0) {
	case "stats":
		runStats(*addr)
	case "token":
		token := mintToken(actorID, *secret)
		fmt.Println(token)
	default:
		runChat(*addr, *secret, actorID, *room)
	}
}

func fatal(format string, args ...any) {
	color.Red.Printf(format+"\n", args...)
	os.Exit(1)
}

func mintToken(actorID uuid.UUID, secret string) string {
	if secret == "" {
		fatal("a secret is required (flag -secret or JWT_SECRET)")
	}
	token, err := auth.NewToken(actorID, []string{"member"}, []byte(secret), 24*time.Hour)
	if err != nil {
		fatal("cannot mint token: %v", err)
	}
	return token
}

// runStats renders the gateway counters as a table.
func runStats(addr string) {
	resp, err := http.Get(fmt.Sprintf("http://%s/statsz", addr))
	if err != nil {
		fatal("stats request failed: %v", err)
	}
	defer resp.Body.Close()

	var snapshot map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		fatal("cannot decode stats: %v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for metric, value := range snapshot {
		table.Append([]string{metric, fmt.Sprintf("%v", value)})
	}
	table.Render()
}

func runChat(addr, secret string, actorID uuid.UUID, defaultRoom string) {
	token := mintToken(actorID, secret)
	endpoint := url.URL{Scheme: "ws", Host: addr, Path: "/ws", RawQuery: "token=" + token}

	sock, _, err := websocket.DefaultDialer.Dial(endpoint.String(), nil)
	if err != nil {
		fatal("cannot connect to %s: %v", endpoint.String(), err)
	}
	defer sock.Close()

	color.Green.Printf("connected as %s\n", actorID)
	printHelp()

	timeline := projection.NewTimeline()
	go receive(sock, timeline)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return
		}
		if roomID, ok := strings.CutPrefix(line, "/history "); ok {
			printHistory(timeline, strings.TrimSpace(roomID))
			continue
		}
		env, ok := parseInput(line, actorID, defaultRoom)
		if !ok {
			continue
		}
		if err := sock.WriteJSON(env); err != nil {
			fatal("write failed: %v", err)
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  /create <name> <memberId>...   create a GROUP room (you become OWNER)
  /direct <memberId>             create a DIRECT room
  /sync <roomId>                 subscribe and redeliver pending messages
  /msg <roomId> <text>           send a message
  /add <roomId> <memberId>...    add members
  /history <roomId>              print the local timeline of a room
  /quit
plain text goes to the -room room`)
}

func parseInput(line string, actorID uuid.UUID, defaultRoom string) (gateway.Envelope, bool) {
	fields := strings.Fields(line)

	sendTo := func(roomID, text string) (gateway.Envelope, bool) {
		id, err := uuid.Parse(roomID)
		if err != nil {
			color.Red.Printf("invalid room id: %v\n", err)
			return gateway.Envelope{}, false
		}
		return envelope(gateway.EventMessageSend, gateway.SendMessagePayload{
			RoomID:  id,
			Type:    domain.MessageText,
			Content: domain.MessageContent{Text: text},
		})
	}

	switch {
	case strings.HasPrefix(line, "/create ") && len(fields) >= 3:
		participants := []services.ParticipantSpec{{UserID: actorID, Role: domain.RoleOwner}}
		for _, member := range fields[2:] {
			id, err := uuid.Parse(member)
			if err != nil {
				color.Red.Printf("invalid member id %q: %v\n", member, err)
				return gateway.Envelope{}, false
			}
			participants = append(participants, services.ParticipantSpec{UserID: id, Role: domain.RoleMember})
		}
		return envelope(gateway.EventRoomCreate, gateway.CreateRoomPayload{
			Spec: services.CreateRoomSpec{Type: domain.RoomGroup, Name: fields[1], Participants: participants},
		})
	case strings.HasPrefix(line, "/direct ") && len(fields) == 2:
		id, err := uuid.Parse(fields[1])
		if err != nil {
			color.Red.Printf("invalid member id: %v\n", err)
			return gateway.Envelope{}, false
		}
		return envelope(gateway.EventRoomCreate, gateway.CreateRoomPayload{
			Spec: services.CreateRoomSpec{Type: domain.RoomDirect, Participants: []services.ParticipantSpec{
				{UserID: actorID, Role: domain.RoleMember},
				{UserID: id, Role: domain.RoleMember},
			}},
		})
	case strings.HasPrefix(line, "/sync ") && len(fields) == 2:
		id, err := uuid.Parse(fields[1])
		if err != nil {
			color.Red.Printf("invalid room id: %v\n", err)
			return gateway.Envelope{}, false
		}
		return envelope(gateway.EventSync, gateway.SyncPayload{RoomID: id})
	case strings.HasPrefix(line, "/msg ") && len(fields) >= 3:
		return sendTo(fields[1], strings.TrimSpace(strings.TrimPrefix(line, "/msg "+fields[1])))
	case strings.HasPrefix(line, "/add ") && len(fields) >= 3:
		roomID, err := uuid.Parse(fields[1])
		if err != nil {
			color.Red.Printf("invalid room id: %v\n", err)
			return gateway.Envelope{}, false
		}
		var members []services.ParticipantSpec
		for _, member := range fields[2:] {
			id, err := uuid.Parse(member)
			if err != nil {
				color.Red.Printf("invalid member id %q: %v\n", member, err)
				return gateway.Envelope{}, false
			}
			members = append(members, services.ParticipantSpec{UserID: id, Role: domain.RoleMember})
		}
		return envelope(gateway.EventParticipantAdd, gateway.ParticipantsPayload{RoomID: roomID, Participants: members})
	case strings.HasPrefix(line, "/"):
		printHelp()
		return gateway.Envelope{}, false
	default:
		if defaultRoom == "" {
			color.Yellow.Println("no default room, use /msg <roomId> <text> or start with -room")
			return gateway.Envelope{}, false
		}
		return sendTo(defaultRoom, line)
	}
}

func envelope(eventType string, payload any) (gateway.Envelope, bool) {
	env, err := gateway.NewEnvelope(eventType, payload)
	if err != nil {
		color.Red.Printf("cannot build %s: %v\n", eventType, err)
		return gateway.Envelope{}, false
	}
	return env, true
}

func printHistory(timeline *projection.Timeline, roomID string) {
	id, err := uuid.Parse(roomID)
	if err != nil {
		color.Red.Printf("invalid room id: %v\n", err)
		return
	}
	for _, message := range timeline.Messages(id) {
		fmt.Printf("%s [%s] %s> %s\n",
			message.CreatedAt.Format("15:04:05"),
			message.Status,
			shortID(message.SenderID),
			message.Content.Text)
	}
}

// receive renders inbound events, feeds the local timeline and answers
// heartbeat pings.
func receive(sock *websocket.Conn, timeline *projection.Timeline) {
	ctx := context.Background()
	for {
		var env gateway.Envelope
		if err := sock.ReadJSON(&env); err != nil {
			fatal("connection lost: %v", err)
		}

		switch env.Type {
		case gateway.EventPing:
			pong, _ := gateway.NewEnvelope(gateway.EventPong, nil)
			_ = sock.WriteJSON(pong)
		case gateway.EventError:
			var p gateway.ErrorPayload
			_ = json.Unmarshal(env.Payload, &p)
			color.Red.Printf("[%s] %s\n", p.Code, p.Message)
		case "message:new":
			var p event.MessageNew
			_ = json.Unmarshal(env.Payload, &p)
			_ = timeline.Consume(ctx, p)
			style := color.New(color.FgCyan)
			if p.Message.Type == domain.MessageAIResponse {
				style = color.New(color.FgMagenta)
			}
			style.Printf("%s %s> %s\n",
				p.Message.CreatedAt.Format("15:04:05"),
				shortID(p.Message.SenderID),
				p.Message.Content.Text)
		case "message:status":
			var p event.MessageStatus
			_ = json.Unmarshal(env.Payload, &p)
			_ = timeline.Consume(ctx, p)
			color.Gray.Printf("message %s is %s\n", shortID(p.MessageID), p.Status)
		default:
			color.Yellow.Printf("%s %s\n", env.Type, string(env.Payload))
		}
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
