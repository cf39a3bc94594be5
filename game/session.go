package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/obinnaa/labyrinth-server/maze"
)

var (
	ErrNotPlaying  = errors.New("game is not in progress")
	ErrNotYourTurn = errors.New("it is not your turn")
	ErrNotAPlayer  = errors.New("you are not a player in this game")

	// the message stays vague so a rejected move never reveals wall placement
	ErrIllegalMove = errors.New("illegal move")
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Slot is one seat in a match: who sits there, the maze they built, and how
// far they have advanced through the maze their opponent built.
type Slot struct {
	Username string
	SocketID string
	Board    *maze.Board
	Position maze.Cell
}

// Session is the full state of one match. All mutation goes through methods
// holding mu, so concurrent gateway handlers for the same game serialize.
type Session struct {
	mu sync.Mutex

	ID       string
	Name     string
	password string

	Host   *Slot
	Joiner *Slot

	Turn   string
	Status Status
	Winner string
	Log    []string

	spectators []string
}

func NewSession(name, password string, host Slot) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Name:     name,
		password: password,
		Host:     &host,
		Status:   StatusWaiting,
	}
	s.Log = append(s.Log, fmt.Sprintf("%s created the game", host.Username))
	return s
}

// Join seats the second player, flips the session to playing and hands the
// host the first turn. Each player starts at the start cell of the maze the
// other player built.
func (s *Session) Join(password string, joiner Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Joiner != nil {
		return ErrSessionFull
	}

	if s.Status != StatusWaiting {
		return ErrNotFound
	}

	if s.password != password {
		return ErrBadPassword
	}

	s.Joiner = &joiner
	s.Joiner.Position = s.Host.Board.Start
	s.Host.Position = s.Joiner.Board.Start

	s.Status = StatusPlaying
	s.Turn = s.Host.Username

	s.Log = append(s.Log,
		fmt.Sprintf("%s joined the game", joiner.Username),
		fmt.Sprintf("game started, %s moves first", s.Host.Username),
	)

	return nil
}

// MoveOutcome describes one accepted move, with everything the gateway needs
// to fan out without touching session state again.
type MoveOutcome struct {
	Player   string
	From     maze.Cell
	To       maze.Cell
	Move     string
	NextTurn string

	Won         bool
	Winner      string
	HostBoard   []string
	JoinerBoard []string
}

// MakeMove validates and applies one step for the named player. The step is
// checked against the opponent's wall set; client claims about legality are
// ignored. Landing on the opponent's end cell finishes the game.
func (s *Session) MakeMove(username string, target maze.Cell) (MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusPlaying {
		return MoveOutcome{}, ErrNotPlaying
	}

	mover, opponent, err := s.seats(username)
	if err != nil {
		return MoveOutcome{}, err
	}

	if s.Turn != mover.Username {
		return MoveOutcome{}, ErrNotYourTurn
	}

	if opponent.Board.Blocked(mover.Position, target) {
		return MoveOutcome{}, ErrIllegalMove
	}

	outcome := MoveOutcome{
		Player: mover.Username,
		From:   mover.Position,
		To:     target,
		Move:   fmt.Sprintf("%s moved from %s to %s", mover.Username, mover.Position.Key(), target.Key()),
	}

	mover.Position = target
	s.Log = append(s.Log, outcome.Move)

	if target == opponent.Board.End {
		s.finish(mover.Username)
		outcome.Won = true
		outcome.Winner = mover.Username
		outcome.HostBoard = s.Host.Board.WallKeys()
		outcome.JoinerBoard = s.Joiner.Board.WallKeys()
		return outcome, nil
	}

	s.Turn = opponent.Username
	outcome.NextTurn = opponent.Username

	return outcome, nil
}

// Forfeit ends a running game in favor of the player who stayed. Returns the
// reveal outcome, or false if the session was not playing or the leaver held
// no seat.
func (s *Session) Forfeit(leaver string) (MoveOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusPlaying {
		return MoveOutcome{}, false
	}

	_, opponent, err := s.seats(leaver)
	if err != nil {
		return MoveOutcome{}, false
	}

	s.finish(opponent.Username)
	s.Log = append(s.Log, fmt.Sprintf("%s left, %s wins by forfeit", leaver, opponent.Username))

	return MoveOutcome{
		Won:         true,
		Winner:      opponent.Username,
		HostBoard:   s.Host.Board.WallKeys(),
		JoinerBoard: s.Joiner.Board.WallKeys(),
	}, true
}

func (s *Session) finish(winner string) {
	s.Status = StatusFinished
	s.Winner = winner
	s.Turn = ""
	s.Log = append(s.Log, fmt.Sprintf("%s won the game", winner))
}

// seats resolves the mover and opponent slots for a username.
func (s *Session) seats(username string) (mover, opponent *Slot, err error) {
	switch username {
	case s.Host.Username:
		return s.Host, s.Joiner, nil
	case s.Joiner.Username:
		return s.Joiner, s.Host, nil
	default:
		return nil, nil, ErrNotAPlayer
	}
}

// CurrentStatus reads the lifecycle status under the session lock.
func (s *Session) CurrentStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status
}

// Seats returns copies of both slots. Joiner is the zero Slot while the
// session is still waiting.
func (s *Session) Seats() (host, joiner Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	host = *s.Host
	if s.Joiner != nil {
		joiner = *s.Joiner
	}
	return host, joiner
}

// HasPlayer reports whether a socket occupies one of the two seats.
func (s *Session) HasPlayer(socketID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Host != nil && s.Host.SocketID == socketID {
		return true
	}
	return s.Joiner != nil && s.Joiner.SocketID == socketID
}

// PlayerBySocket returns the username seated on the given socket.
func (s *Session) PlayerBySocket(socketID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Host != nil && s.Host.SocketID == socketID {
		return s.Host.Username, true
	}
	if s.Joiner != nil && s.Joiner.SocketID == socketID {
		return s.Joiner.Username, true
	}
	return "", false
}

func (s *Session) AddSpectator(socketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.spectators, socketID) {
		s.spectators = append(s.spectators, socketID)
	}
}

func (s *Session) RemoveSpectator(socketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.spectators, socketID); i >= 0 {
		s.spectators = append(s.spectators[:i], s.spectators[i+1:]...)
	}
}

func (s *Session) SpectatorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spectators)
}

// Snapshot is the state a spectator needs on arrival. It carries positions,
// targets, turn and log, but never wall layouts.
type Snapshot struct {
	Host         string
	Joiner       string
	HostPos      string
	JoinerPos    string
	HostTarget   string
	JoinerTarget string
	Status       Status
	Turn         string
	Log          []string
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Host:   s.Host.Username,
		Status: s.Status,
		Turn:   s.Turn,
		Log:    slices.Clone(s.Log),
	}

	if s.Joiner != nil {
		snap.Joiner = s.Joiner.Username
		snap.HostPos = s.Host.Position.Key()
		snap.JoinerPos = s.Joiner.Position.Key()
		// each player races toward the end cell of the opponent's maze
		snap.HostTarget = s.Joiner.Board.End.Key()
		snap.JoinerTarget = s.Host.Board.End.Key()
	}

	return snap
}
