package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slices"

	"github.com/obinnaa/labyrinth-server/game"
	"github.com/obinnaa/labyrinth-server/token"
	"github.com/obinnaa/labyrinth-server/util"
)

type ClientList map[string]*Client

// Manager owns every live connection and routes inbound events to their
// handlers. Rooms map a game name to the clients (players and spectators)
// receiving its broadcasts.
type Manager struct {
	clients  ClientList
	handlers map[string]EventHandler
	Rooms    map[string][]*Client

	registry   *game.Registry
	tokenMaker token.Maker
	validate   *validator.Validate
	config     *util.Config

	sync.RWMutex
}

func NewManager(config *util.Config, maker token.Maker, registry *game.Registry) *Manager {
	m := &Manager{
		clients:    make(ClientList),
		handlers:   make(map[string]EventHandler),
		Rooms:      make(map[string][]*Client),
		registry:   registry,
		tokenMaker: maker,
		validate:   validator.New(),
		config:     config,
	}

	m.setupEventHandlers()

	return m
}

func (m *Manager) setupEventHandlers() {
	m.handlers[EventIdentify] = IdentifyHandler
	m.handlers[EventCreateGame] = CreateGameHandler
	m.handlers[EventJoinGame] = JoinGameHandler
	m.handlers[EventMakeMove] = MakeMoveHandler
	m.handlers[EventSpectateGame] = SpectateGameHandler
	m.handlers[EventLeaveGame] = LeaveGameHandler
}

func (m *Manager) routeEvent(ctx context.Context, evt Event, c *Client) error {
	if handler, ok := m.handlers[evt.Type]; ok {
		return handler(ctx, evt, c)
	}

	return errors.New("there is no such event type")
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client.SocketID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.clients[client.SocketID]; ok {
		client.connection.Close()
		delete(m.clients, client.SocketID)
	}
}

func (m *Manager) clientBySocket(socketID string) (*Client, bool) {
	m.RLock()
	defer m.RUnlock()

	c, ok := m.clients[socketID]
	return c, ok
}

// roomClients snapshots a room's membership so events can be pushed without
// holding the manager lock.
func (m *Manager) roomClients(roomID string) []*Client {
	m.RLock()
	defer m.RUnlock()

	return slices.Clone(m.Rooms[roomID])
}

func (m *Manager) closeRoom(roomID string) {
	m.Lock()
	defer m.Unlock()

	delete(m.Rooms, roomID)
}

// EmitToRoom fans an event out to every client in a room.
func (m *Manager) EmitToRoom(roomID string, evt Event) {
	for _, client := range m.roomClients(roomID) {
		client.PushToEgress(evt)
	}
}

// EmitToRoomExcept fans an event out to a room, skipping one socket. Used so
// a mover's own update is not echoed back.
func (m *Manager) EmitToRoomExcept(roomID, socketID string, evt Event) {
	for _, client := range m.roomClients(roomID) {
		if client.SocketID != socketID {
			client.PushToEgress(evt)
		}
	}
}

// Websocket connection handler. Identity comes from the token issued by the
// username endpoint, so every event on this socket has a stable username.
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")

	if tokenString == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	payload, err := m.tokenMaker.VerifyToken(tokenString)

	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)

	if err != nil {
		log.Printf("error upgrading to websocket connection: %v", err)
		return
	}

	client := NewClient(payload.ID.String(), payload.Username, conn, m)
	m.addClient(client)

	ctx, cancel := context.WithCancel(r.Context())

	defer func() {
		// mark the client closed before tearing down the write pump, so a
		// concurrent broadcast from another disconnecting client cannot
		// block on this socket's egress and stall its own settlement
		client.markClosed()
		cancel()
		m.handleDisconnect(client)

		err := client.connection.WriteMessage(websocket.CloseMessage, nil)
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			log.Println("error sending close message:", err)
		}

		m.removeClient(client)
	}()

	go client.readMessages(ctx)
	go client.writeMessages(ctx)

	err = <-client.Err()

	log.Printf("client %v (%v) disconnected: %v", client.Username, client.SocketID, err)
}

// handleDisconnect settles every game the dropped socket was part of: a
// player vanishing mid-game forfeits to the opponent, a waiting host takes
// the session down with them, a spectator is just unsubscribed.
func (m *Manager) handleDisconnect(c *Client) {
	for _, roomID := range slices.Clone(c.JoinedRooms) {
		s, err := m.registry.Get(roomID)
		if err != nil {
			continue
		}

		username, seated := s.PlayerBySocket(c.SocketID)

		if !seated {
			s.RemoveSpectator(c.SocketID)
			continue
		}

		m.settlePlayerExit(s, c, username)
	}

	c.LeaveAllRooms()
}

// settlePlayerExit applies the forfeiture policy after a seated player leaves,
// whether by leave_game or by dropping the socket. The caller has already
// decided the player is gone; the leaver's own socket gets no broadcast.
func (m *Manager) settlePlayerExit(s *game.Session, c *Client, username string) {
	leftEvt, err := NewEvent(EventPlayerLeft, PayloadPlayerLeft{Player: username})
	if err != nil {
		log.Println("error building player_left event:", err)
		return
	}

	if outcome, ok := s.Forfeit(username); ok {
		m.EmitToRoomExcept(s.Name, c.SocketID, leftEvt)

		overEvt, err := NewEvent(EventGameOver, PayloadGameOver{
			Winner:      outcome.Winner,
			HostBoard:   outcome.HostBoard,
			JoinerBoard: outcome.JoinerBoard,
		})
		if err != nil {
			log.Println("error building game_over event:", err)
			return
		}

		m.EmitToRoomExcept(s.Name, c.SocketID, overEvt)
		m.registry.Remove(s.Name)
		m.closeRoom(s.Name)
		return
	}

	// not playing: a waiting session dies with its host, a finished one is
	// already settled
	if s.CurrentStatus() == game.StatusWaiting {
		m.EmitToRoomExcept(s.Name, c.SocketID, leftEvt)
		m.registry.Remove(s.Name)
		m.closeRoom(s.Name)
	}
}

func (m *Manager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// non-browser clients send no origin
	if origin == "" {
		return true
	}

	return slices.Contains(m.config.CORSOrigins, origin)
}
