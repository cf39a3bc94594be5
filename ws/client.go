package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slices"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10

	// a create_game payload carries a 20-wall board, so the limit is
	// comfortably above the largest legal message
	maxMessageSize int64 = 2048
)

// Client is one websocket connection with its identity and room membership.
type Client struct {
	ID          string
	SocketID    string
	Username    string
	connection  *websocket.Conn
	manager     *Manager
	egress      chan Event
	JoinedRooms []string
	err         chan error
	closed      chan struct{}
	closeOnce   sync.Once
}

func NewClient(id, username string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:          id,
		SocketID:    uuid.NewString(),
		Username:    username,
		connection:  conn,
		manager:     manager,
		egress:      make(chan Event),
		JoinedRooms: []string{},
		err:         make(chan error),
		closed:      make(chan struct{}),
	}
}

// Reads incoming messages from the client's websocket connection
func (c *Client) readMessages(ctx context.Context) {
	c.connection.SetReadLimit(maxMessageSize)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}

	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, payload, err := c.connection.ReadMessage()

			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error reading message: %v", err)
				}
				c.handleError(err)
				return
			}

			var evt Event

			if err := json.Unmarshal(payload, &evt); err != nil {
				// a malformed frame is the sender's problem only
				c.pushError("cannot parse message")
				continue
			}

			if err := c.manager.routeEvent(ctx, evt, c); err != nil {
				log.Printf("event %v from %v rejected: %v", evt.Type, c.Username, err)
				c.pushError(err.Error())
			}
		}
	}
}

// writes messages pushed to the client's egress channel
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
	}()

	for {
		select {
		// if the context is cancelled, return
		case <-ctx.Done():
			return
		case message, ok := <-c.egress:
			if !ok { // if client egress conn is closed unexpectedly
				c.handleError(errors.New("client egress channel unexpectedly closed"))
				return
			}

			data, err := json.Marshal(message)

			if err != nil {
				c.handleError(err)
				return
			}

			if err := c.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			if err := c.connection.WriteMessage(websocket.PingMessage, []byte("")); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(pongMsg string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// Push error to client error channel. This is used by the
// http handler to know when an error has occurred in a client's readMessages
// or writeMessages goroutine. The http handler closes the connection and
// removes the client when an error is pushed to the channel.
func (c *Client) handleError(e error) {
	c.err <- e
}

// Returns the error channel
func (c *Client) Err() chan error {
	return c.err
}

// pushError emits an error event to this client only.
func (c *Client) pushError(message string) {
	evt, err := NewErrorEvent(message)
	if err != nil {
		log.Println("error building error event:", err)
		return
	}
	c.PushToEgress(evt)
}

// Creates an event and pushes to client's egress
func (c *Client) PushEventToEgress(evtType string, payload any) error {
	evt, err := NewEvent(evtType, payload)
	if err != nil {
		return err
	}
	c.PushToEgress(evt)
	return nil
}

// markClosed turns further egress pushes into no-ops. It must be called
// before the write pump is stopped, otherwise a broadcast to this client
// could block forever on the unbuffered egress channel.
func (c *Client) markClosed() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// Pushes an event to the client's egress to be delivered via the websocket
// connection. Events pushed after the client is closed are dropped.
func (c *Client) PushToEgress(evt Event) {
	select {
	case c.egress <- evt:
	case <-c.closed:
	}
}

// Helper method to join a room
func (c *Client) Join(roomID string) {
	c.manager.Lock()
	defer c.manager.Unlock()

	room, ok := c.manager.Rooms[roomID]

	// if room doesn't exist, create one
	if !ok {
		c.manager.Rooms[roomID] = make([]*Client, 0)
		room = c.manager.Rooms[roomID]
	}

	if !slices.Contains(room, c) {
		c.manager.Rooms[roomID] = append(room, c)
	}

	if !slices.Contains(c.JoinedRooms, roomID) {
		c.JoinedRooms = append(c.JoinedRooms, roomID)
	}
}

// Leave causes a client to leave a room
func (c *Client) Leave(roomID string) {
	c.manager.Lock()
	defer c.manager.Unlock()

	if room, ok := c.manager.Rooms[roomID]; ok {
		if index := slices.Index(room, c); index >= 0 {
			c.manager.Rooms[roomID] = append(room[:index], room[index+1:]...)
		}
	}

	if index := slices.Index(c.JoinedRooms, roomID); index >= 0 {
		c.JoinedRooms = append(c.JoinedRooms[:index], c.JoinedRooms[index+1:]...)
	}
}

func (c *Client) LeaveAllRooms() {
	for _, room := range slices.Clone(c.JoinedRooms) {
		c.Leave(room)
	}
}
