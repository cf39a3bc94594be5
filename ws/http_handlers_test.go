package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/obinnaa/labyrinth-server/game"
	"github.com/obinnaa/labyrinth-server/maze"
)

func TestTokenHandler(t *testing.T) {
	t.Run("returns token (happy case)", func(t *testing.T) {
		body := map[string]string{
			"username": "judge",
		}

		request, response := newRequest(t, http.MethodPost, "/auth/username", body)

		testManager.TokenHandler(response, request)

		require.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("invalid or no body", func(t *testing.T) {
		body := map[string]string{}

		request, response := newRequest(t, http.MethodPost, "/auth/username", body)

		testManager.TokenHandler(response, request)

		require.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("username too short", func(t *testing.T) {
		body := map[string]string{
			"username": "j",
		}

		request, response := newRequest(t, http.MethodPost, "/auth/username", body)

		testManager.TokenHandler(response, request)

		require.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		request, response := newRequest(t, http.MethodGet, "/auth/username", nil)

		testManager.TokenHandler(response, request)

		require.Equal(t, http.StatusMethodNotAllowed, response.Code)
	})
}

func TestAuthMiddlewareAndTokenVerifier(t *testing.T) {
	t.Run("allow valid token entry", func(t *testing.T) {
		token, _, err := testManager.tokenMaker.CreateToken("judge", time.Minute)

		require.NoError(t, err)

		request, response := newRequest(t, http.MethodGet, "/auth/verify", nil)
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %v", token))

		testManager.AuthMiddleWare(http.HandlerFunc(testManager.TokenVerifier))(response, request)

		require.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("disallow invalid token entry", func(t *testing.T) {
		token, _, err := testManager.tokenMaker.CreateToken("judge", time.Minute)

		require.NoError(t, err)

		request, response := newRequest(t, http.MethodGet, "/auth/verify", nil)
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %v", token+"hhh"))

		testManager.AuthMiddleWare(http.HandlerFunc(testManager.TokenVerifier))(response, request)

		require.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("return unauthorized expired token entry", func(t *testing.T) {
		token, _, err := testManager.tokenMaker.CreateToken("judge", -time.Minute)

		require.NoError(t, err)

		request, response := newRequest(t, http.MethodGet, "/auth/verify", nil)
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %v", token))

		testManager.AuthMiddleWare(http.HandlerFunc(testManager.TokenVerifier))(response, request)

		require.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		request, response := newRequest(t, http.MethodGet, "/auth/verify", nil)

		testManager.AuthMiddleWare(http.HandlerFunc(testManager.TokenVerifier))(response, request)

		require.Equal(t, http.StatusUnauthorized, response.Code)
	})
}

func TestCheckGame(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/games/check", nil)
		response := httptest.NewRecorder()

		testManager.CheckGame(response, request)

		require.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("unknown game", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/games/check?name=nope", nil)
		response := httptest.NewRecorder()

		testManager.CheckGame(response, request)

		require.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("waiting game is joinable", func(t *testing.T) {
		board, err := maze.NewBoard(testBoardKeys(), "0-0", "5-5")
		require.NoError(t, err)

		_, err = testManager.registry.Create("check-me", "pw", game.Slot{Username: "ada", Board: board})
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/games/check?name=check-me", nil)
		response := httptest.NewRecorder()

		testManager.CheckGame(response, request)

		require.Equal(t, http.StatusOK, response.Code)

		var body struct {
			Data struct {
				Name     string `json:"name"`
				Joinable bool   `json:"joinable"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
		require.Equal(t, "check-me", body.Data.Name)
		require.True(t, body.Data.Joinable)
	})
}

func newRequest(t *testing.T, method, url string, body any) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	data, err := json.Marshal(body)

	require.NoError(t, err)

	request, err := http.NewRequest(method, url, bytes.NewReader(data))
	require.NoError(t, err)

	response := httptest.NewRecorder()

	return request, response
}
