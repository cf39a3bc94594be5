package ws

import (
	"context"
	"encoding/json"
)

// Event is the wire envelope for every message in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type EventHandler func(ctx context.Context, evt Event, c *Client) error

// Inbound event types.
const (
	EventIdentify     = "identify"
	EventCreateGame   = "create_game"
	EventJoinGame     = "join_game"
	EventMakeMove     = "make_move"
	EventSpectateGame = "spectate_game"
	EventLeaveGame    = "leave_game"
)

// Outbound event types.
const (
	EventIdentified        = "identified"
	EventGameCreated       = "game_created"
	EventGameStarted       = "game_started"
	EventOpponentData      = "opponent_data"
	EventMoveResult        = "move_result"
	EventGameUpdate        = "game_update"
	EventTurnUpdate        = "turn_update"
	EventGameOver          = "game_over"
	EventSpectatingStarted = "spectating_started"
	EventPlayerLeft        = "player_left"
	EventError             = "error"
)

type PayloadIdentify struct {
	Username string `json:"username" validate:"required"`
}

type PayloadCreateGame struct {
	Name     string   `json:"name" validate:"required,min=1,max=64"`
	Password string   `json:"password" validate:"required"`
	Board    []string `json:"board" validate:"required"`
	Start    string   `json:"start" validate:"required"`
	End      string   `json:"end" validate:"required"`
}

type PayloadJoinGame struct {
	Name     string   `json:"name" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Board    []string `json:"board" validate:"required"`
	Start    string   `json:"start" validate:"required"`
	End      string   `json:"end" validate:"required"`
}

type PayloadMakeMove struct {
	GameName   string `json:"game_name" validate:"required"`
	TargetCell string `json:"target_cell" validate:"required"`
}

// PayloadGameName covers spectate_game and leave_game.
type PayloadGameName struct {
	Name string `json:"name" validate:"required"`
}

type PayloadIdentified struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type PayloadGameCreated struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PayloadGameStarted struct {
	Host   string `json:"host"`
	Joiner string `json:"joiner"`
	Turn   string `json:"turn"`
}

// PayloadOpponentData carries the other player's start and end cells; the
// opponent's walls stay hidden until game_over.
type PayloadOpponentData struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type PayloadMoveResult struct {
	Success  bool   `json:"success"`
	Position string `json:"position"`
}

type PayloadGameUpdate struct {
	Player string `json:"player"`
	From   string `json:"from"`
	To     string `json:"to"`
	Move   string `json:"move"`
}

type PayloadTurnUpdate struct {
	Turn string `json:"turn"`
}

type PayloadGameOver struct {
	Winner      string   `json:"winner"`
	HostBoard   []string `json:"host_board"`
	JoinerBoard []string `json:"joiner_board"`
}

type PayloadSpectatingStarted struct {
	Host         string   `json:"host"`
	Joiner       string   `json:"joiner"`
	HostPos      string   `json:"host_pos"`
	JoinerPos    string   `json:"joiner_pos"`
	HostTarget   string   `json:"host_target"`
	JoinerTarget string   `json:"joiner_target"`
	Status       string   `json:"status"`
	Turn         string   `json:"turn"`
	Log          []string `json:"log"`
}

type PayloadPlayerLeft struct {
	Player string `json:"player"`
}

type PayloadError struct {
	Message string `json:"message"`
}

func NewEvent(evtType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)

	if err != nil {
		return Event{}, err
	}

	return Event{
		Type:    evtType,
		Payload: b,
	}, nil
}

func NewErrorEvent(message string) (Event, error) {
	return NewEvent(EventError, PayloadError{Message: message})
}
