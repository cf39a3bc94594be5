package game

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryCreate(t *testing.T) {
	t.Run("reserves the name", func(t *testing.T) {
		r := NewRegistry()

		s, err := r.Create("alpha", "pw1", Slot{Username: "ada", Board: openBoard(t, "0-0", "5-5")})
		require.NoError(t, err)
		require.Equal(t, StatusWaiting, s.Status)

		_, err = r.Create("alpha", "other", Slot{Username: "ben", Board: openBoard(t, "5-0", "0-5")})
		require.ErrorIs(t, err, ErrNameTaken)
	})

	t.Run("a finished session frees its name", func(t *testing.T) {
		r := NewRegistry()

		s, err := r.Create("alpha", "pw1", Slot{Username: "ada", Board: openBoard(t, "0-0", "5-5")})
		require.NoError(t, err)
		require.NoError(t, s.Join("pw1", Slot{Username: "ben", Board: openBoard(t, "5-0", "0-5")}))

		_, ok := s.Forfeit("ben")
		require.True(t, ok)

		_, err = r.Create("alpha", "pw2", Slot{Username: "eve", Board: openBoard(t, "0-0", "5-5")})
		require.NoError(t, err)
	})
}

func TestRegistryJoin(t *testing.T) {
	r := NewRegistry()

	_, err := r.Create("alpha", "pw1", Slot{Username: "ada", Board: openBoard(t, "0-0", "5-5")})
	require.NoError(t, err)

	t.Run("unknown name", func(t *testing.T) {
		_, err := r.Join("beta", "pw1", Slot{Username: "ben", Board: openBoard(t, "5-0", "0-5")})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := r.Join("alpha", "nope", Slot{Username: "ben", Board: openBoard(t, "5-0", "0-5")})
		require.ErrorIs(t, err, ErrBadPassword)
	})

	t.Run("success starts the game", func(t *testing.T) {
		s, err := r.Join("alpha", "pw1", Slot{Username: "ben", Board: openBoard(t, "5-0", "0-5")})
		require.NoError(t, err)
		require.Equal(t, StatusPlaying, s.Status)
	})

	t.Run("session already full", func(t *testing.T) {
		_, err := r.Join("alpha", "pw1", Slot{Username: "eve", Board: openBoard(t, "5-0", "0-5")})
		require.ErrorIs(t, err, ErrSessionFull)
	})
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()

	_, err := r.Create("alpha", "pw1", Slot{Username: "ada", Board: openBoard(t, "0-0", "5-5")})
	require.NoError(t, err)

	r.Remove("alpha")

	_, err = r.Get("alpha")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryJoinable(t *testing.T) {
	r := NewRegistry()

	exists, joinable := r.Joinable("alpha")
	require.False(t, exists)
	require.False(t, joinable)

	s, err := r.Create("alpha", "pw1", Slot{Username: "ada", Board: openBoard(t, "0-0", "5-5")})
	require.NoError(t, err)

	exists, joinable = r.Joinable("alpha")
	require.True(t, exists)
	require.True(t, joinable)

	require.NoError(t, s.Join("pw1", Slot{Username: "ben", Board: openBoard(t, "5-0", "0-5")}))

	exists, joinable = r.Joinable("alpha")
	require.True(t, exists)
	require.False(t, joinable)
}

// Create checks an existing session's status while Join may be flipping it to
// playing under the session lock; both orderings must reject the duplicate.
func TestRegistryConcurrentCreateAndJoin(t *testing.T) {
	r := NewRegistry()

	benBoard := openBoard(t, "5-0", "0-5")
	eveBoard := openBoard(t, "0-0", "5-5")

	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("game-%d", i)

		_, err := r.Create(name, "pw1", Slot{Username: "ada", Board: openBoard(t, "0-0", "5-5")})
		require.NoError(t, err)

		var (
			wg        sync.WaitGroup
			createErr error
			joinErr   error
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, joinErr = r.Join(name, "pw1", Slot{Username: "ben", Board: benBoard})
		}()
		go func() {
			defer wg.Done()
			_, createErr = r.Create(name, "other", Slot{Username: "eve", Board: eveBoard})
		}()
		wg.Wait()

		require.NoError(t, joinErr)
		require.ErrorIs(t, createErr, ErrNameTaken)
	}
}
