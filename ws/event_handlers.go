package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/obinnaa/labyrinth-server/game"
	"github.com/obinnaa/labyrinth-server/maze"
)

// IdentifyHandler answers a presence-layer identity check. The username is
// fixed by the connection token, so this only echoes the canonical identity.
func IdentifyHandler(ctx context.Context, e Event, c *Client) error {
	var payload PayloadIdentify

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return errors.New("cannot parse identify payload")
	}

	if err := c.manager.validate.Struct(payload); err != nil {
		return err
	}

	return c.PushEventToEgress(EventIdentified, PayloadIdentified{
		ID:       c.ID,
		Username: c.Username,
	})
}

// CreateGameHandler validates the submitted board and reserves a session
// under the requested name.
func CreateGameHandler(ctx context.Context, e Event, c *Client) error {
	var payload PayloadCreateGame

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return errors.New("cannot parse create_game payload")
	}

	if err := c.manager.validate.Struct(payload); err != nil {
		return err
	}

	board, err := maze.NewBoard(payload.Board, payload.Start, payload.End)
	if err != nil {
		return err
	}

	s, err := c.manager.registry.Create(payload.Name, payload.Password, game.Slot{
		Username: c.Username,
		SocketID: c.SocketID,
		Board:    board,
	})
	if err != nil {
		return err
	}

	c.Join(s.Name)

	log.Printf("game %q (%v) created by %v", s.Name, s.ID, c.Username)

	return c.PushEventToEgress(EventGameCreated, PayloadGameCreated{ID: s.ID, Name: s.Name})
}

// JoinGameHandler seats the second player and starts the game: both players
// learn the matchup and the first turn, and each receives the other's start
// and end cells. Wall layouts stay private until the game ends.
func JoinGameHandler(ctx context.Context, e Event, c *Client) error {
	var payload PayloadJoinGame

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return errors.New("cannot parse join_game payload")
	}

	if err := c.manager.validate.Struct(payload); err != nil {
		return err
	}

	board, err := maze.NewBoard(payload.Board, payload.Start, payload.End)
	if err != nil {
		return err
	}

	s, err := c.manager.registry.Join(payload.Name, payload.Password, game.Slot{
		Username: c.Username,
		SocketID: c.SocketID,
		Board:    board,
	})
	if err != nil {
		return err
	}

	c.Join(s.Name)

	host, joiner := s.Seats()

	startedEvt, err := NewEvent(EventGameStarted, PayloadGameStarted{
		Host:   host.Username,
		Joiner: joiner.Username,
		Turn:   host.Username,
	})
	if err != nil {
		return err
	}

	c.manager.EmitToRoom(s.Name, startedEvt)

	if hostClient, ok := c.manager.clientBySocket(host.SocketID); ok {
		if err := hostClient.PushEventToEgress(EventOpponentData, PayloadOpponentData{
			Start: joiner.Board.Start.Key(),
			End:   joiner.Board.End.Key(),
		}); err != nil {
			return err
		}
	}

	log.Printf("game %q started: %v vs %v", s.Name, host.Username, joiner.Username)

	return c.PushEventToEgress(EventOpponentData, PayloadOpponentData{
		Start: host.Board.Start.Key(),
		End:   host.Board.End.Key(),
	})
}

// MakeMoveHandler applies one step for the sender. The session re-validates
// turn order and legality against the opponent's walls; a rejection is
// reported to the mover only, so a failed attempt leaks nothing to anyone else.
func MakeMoveHandler(ctx context.Context, e Event, c *Client) error {
	var payload PayloadMakeMove

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return errors.New("cannot parse make_move payload")
	}

	if err := c.manager.validate.Struct(payload); err != nil {
		return err
	}

	target, err := maze.ParseCell(payload.TargetCell)
	if err != nil {
		return err
	}

	s, err := c.manager.registry.Get(payload.GameName)
	if err != nil {
		return err
	}

	outcome, err := s.MakeMove(c.Username, target)
	if err != nil {
		return err
	}

	if err := c.PushEventToEgress(EventMoveResult, PayloadMoveResult{
		Success:  true,
		Position: outcome.To.Key(),
	}); err != nil {
		return err
	}

	updateEvt, err := NewEvent(EventGameUpdate, PayloadGameUpdate{
		Player: outcome.Player,
		From:   outcome.From.Key(),
		To:     outcome.To.Key(),
		Move:   outcome.Move,
	})
	if err != nil {
		return err
	}

	c.manager.EmitToRoomExcept(s.Name, c.SocketID, updateEvt)

	if outcome.Won {
		overEvt, err := NewEvent(EventGameOver, PayloadGameOver{
			Winner:      outcome.Winner,
			HostBoard:   outcome.HostBoard,
			JoinerBoard: outcome.JoinerBoard,
		})
		if err != nil {
			return err
		}

		c.manager.EmitToRoom(s.Name, overEvt)
		c.manager.registry.Remove(s.Name)
		c.manager.closeRoom(s.Name)

		log.Printf("game %q won by %v", s.Name, outcome.Winner)
		return nil
	}

	turnEvt, err := NewEvent(EventTurnUpdate, PayloadTurnUpdate{Turn: outcome.NextTurn})
	if err != nil {
		return err
	}

	c.manager.EmitToRoom(s.Name, turnEvt)

	return nil
}

// SpectateGameHandler subscribes a read-only observer and replays the
// current state so a mid-game arrival needs no history.
func SpectateGameHandler(ctx context.Context, e Event, c *Client) error {
	var payload PayloadGameName

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return errors.New("cannot parse spectate_game payload")
	}

	if err := c.manager.validate.Struct(payload); err != nil {
		return err
	}

	s, err := c.manager.registry.Get(payload.Name)
	if err != nil {
		return err
	}

	if s.HasPlayer(c.SocketID) {
		return errors.New("players cannot spectate their own game")
	}

	s.AddSpectator(c.SocketID)
	c.Join(s.Name)

	snap := s.Snapshot()

	return c.PushEventToEgress(EventSpectatingStarted, PayloadSpectatingStarted{
		Host:         snap.Host,
		Joiner:       snap.Joiner,
		HostPos:      snap.HostPos,
		JoinerPos:    snap.JoinerPos,
		HostTarget:   snap.HostTarget,
		JoinerTarget: snap.JoinerTarget,
		Status:       string(snap.Status),
		Turn:         snap.Turn,
		Log:          snap.Log,
	})
}

// LeaveGameHandler is the voluntary exit: players forfeit a running game,
// spectators just unsubscribe.
func LeaveGameHandler(ctx context.Context, e Event, c *Client) error {
	var payload PayloadGameName

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return errors.New("cannot parse leave_game payload")
	}

	if err := c.manager.validate.Struct(payload); err != nil {
		return err
	}

	s, err := c.manager.registry.Get(payload.Name)
	if err != nil {
		return err
	}

	if username, seated := s.PlayerBySocket(c.SocketID); seated {
		c.manager.settlePlayerExit(s, c, username)
	} else {
		s.RemoveSpectator(c.SocketID)
	}

	c.Leave(payload.Name)

	return nil
}
