package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/planbay/planbay/internal/api"
	"github.com/planbay/planbay/internal/scene"
)

// room fans one layout session out to its connected clients. The room owns
// the session's store subscription and violation callback; both broadcast.
type room struct {
	layoutID    string
	sess        *api.Session
	clients     map[string]*Client
	unsubscribe func()
}

type Manager struct {
	service *api.Service

	mu         sync.RWMutex
	rooms      map[string]*room
	register   chan *Client
	unregister chan *Client
}

func NewManager(service *api.Service) *Manager {
	return &Manager{
		service:    service,
		rooms:      make(map[string]*room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.addClient(client)
		case client := <-m.unregister:
			m.removeClient(client)
		}
	}
}

func (m *Manager) Register(client *Client) {
	m.register <- client
}

func (m *Manager) addClient(client *Client) {
	sess, err := m.service.Open(context.Background(), client.LayoutID)
	if err != nil {
		slog.Warn("live join rejected", "layout", client.LayoutID, "error", err)
		payload, _ := json.Marshal(map[string]string{"error": "layout not found"})
		client.Send(&Message{Type: TypeError, Payload: payload})
		close(client.send)
		return
	}

	m.mu.Lock()
	rm, ok := m.rooms[client.LayoutID]
	if !ok {
		rm = &room{
			layoutID: client.LayoutID,
			sess:     sess,
			clients:  make(map[string]*Client),
		}
		rm.unsubscribe = sess.Editor.Store().Subscribe(func(sc scene.Scene) {
			m.broadcastScene(rm.layoutID, sc)
		})
		sess.Editor.OnViolations(func(ids []string) {
			m.broadcastViolations(rm.layoutID, ids)
		})
		m.rooms[client.LayoutID] = rm
	}
	rm.clients[client.ClientID] = client
	m.mu.Unlock()

	payload, _ := json.Marshal(WelcomePayload{
		ClientID: client.ClientID,
		Scene:    sess.Editor.Scene(),
	})
	client.Send(&Message{Type: TypeWelcome, Payload: payload})

	slog.Info("client joined", "client", client.ClientID, "layout", client.LayoutID)
}

func (m *Manager) removeClient(client *Client) {
	m.mu.Lock()
	rm, ok := m.rooms[client.LayoutID]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, joined := rm.clients[client.ClientID]; !joined {
		m.mu.Unlock()
		return
	}

	delete(rm.clients, client.ClientID)
	close(client.send)

	if len(rm.clients) == 0 {
		rm.unsubscribe()
		delete(m.rooms, client.LayoutID)
	}
	m.mu.Unlock()

	slog.Info("client left", "client", client.ClientID, "layout", client.LayoutID)
}

func (m *Manager) handleMessage(sender *Client, msg *Message) {
	m.mu.RLock()
	rm, ok := m.rooms[sender.LayoutID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	ed := rm.sess.Editor

	switch msg.Type {
	case TypeOpSubmit:
		var payload OpSubmitPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			slog.Warn("invalid op payload", "error", err, "client", sender.ClientID)
			return
		}
		result, err := rm.sess.Apply(payload.Operation)
		if err != nil {
			nack, _ := json.Marshal(OpNackPayload{Reason: err.Error()})
			sender.Send(&Message{Type: TypeOpNack, Seq: msg.Seq, Payload: nack})
			return
		}
		ack, _ := json.Marshal(OpAckPayload{Result: result})
		sender.Send(&Message{Type: TypeOpAck, Seq: msg.Seq, Payload: ack})

	case TypeObjectMoved:
		var payload ObjectMovedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			slog.Warn("invalid move payload", "error", err, "client", sender.ClientID)
			return
		}
		ed.ObjectMoved(payload.ItemID, payload.X, payload.Y, payload.AngleDeg)

	case TypeObjectRemoved:
		var payload ObjectRemovedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			slog.Warn("invalid remove payload", "error", err, "client", sender.ClientID)
			return
		}
		ed.ObjectRemoved(payload.ItemID)

	case TypeSelectionChanged:
		var payload SelectionChangedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			slog.Warn("invalid selection payload", "error", err, "client", sender.ClientID)
			return
		}
		ed.SetSelection(payload.Selection)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
	}
}

func (m *Manager) broadcastScene(layoutID string, sc scene.Scene) {
	payload, err := json.Marshal(SceneSyncPayload{Scene: sc})
	if err != nil {
		slog.Error("marshal scene sync", "error", err)
		return
	}
	m.broadcast(layoutID, &Message{Type: TypeSceneSync, Payload: payload})
}

func (m *Manager) broadcastViolations(layoutID string, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	payload, _ := json.Marshal(ViolationPayload{Violations: ids})
	m.broadcast(layoutID, &Message{Type: TypeViolationReport, Payload: payload})
}

func (m *Manager) broadcast(layoutID string, msg *Message) {
	m.mu.RLock()
	rm, ok := m.rooms[layoutID]
	if !ok {
		m.mu.RUnlock()
		return
	}
	clients := make([]*Client, 0, len(rm.clients))
	for _, c := range rm.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
