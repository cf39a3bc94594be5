package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/obinnaa/labyrinth-server/http_utils"
	"github.com/obinnaa/labyrinth-server/token"
)

type contextkey string

const AuthContextKey contextkey = "auth_payload"

const tokenDuration = 24 * time.Hour

func GetPayload(ctx context.Context) (*token.Payload, bool) {
	payload, ok := ctx.Value(AuthContextKey).(*token.Payload)
	return payload, ok
}

type userTokenRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32"`
}

// TokenHandler issues the identity token a client must present when opening
// the game socket. The username it carries is what other players see.
func (m *Manager) TokenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http_utils.SendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var data userTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http_utils.SendError(w, http.StatusBadRequest, "invalid body, username required")
		return
	}

	if vErr := http_utils.ValidateStruct(m.validate, data); !reflect.ValueOf(vErr).IsZero() {
		http_utils.SendResponse(w, http.StatusBadRequest, vErr)
		return
	}

	tokenString, payload, err := m.tokenMaker.CreateToken(data.Username, tokenDuration)

	if err != nil {
		log.Println("error creating token:", err)
		http_utils.SendError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	http_utils.SendResponse(w, http.StatusOK, http_utils.NewDataResponse("token created", map[string]string{
		"id":       payload.ID.String(),
		"username": payload.Username,
		"token":    tokenString,
	}))
}

func (m *Manager) AuthMiddleWare(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		header := r.Header.Get("authorization")
		s := strings.Split(header, " ")

		if len(s) < 2 {
			http_utils.SendError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		payload, err := m.tokenMaker.VerifyToken(s[1])

		if err != nil {
			http_utils.SendError(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), AuthContextKey, payload)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (m *Manager) TokenVerifier(w http.ResponseWriter, r *http.Request) {
	payload, ok := GetPayload(r.Context())

	if !ok {
		http.Error(w, "could not verify authentication", http.StatusInternalServerError)
		log.Println(errors.New("value in auth_payload key of request context could not be cast to *token.Payload"))
		return
	}

	http_utils.SendResponse(w, http.StatusOK, http_utils.NewDataResponse("auth data", map[string]string{
		"id":       payload.ID.String(),
		"username": payload.Username,
	}))
}

type checkGameRequest struct {
	Name string `validate:"required"`
}

// CheckGame is the lobby pre-flight: tells a prospective joiner whether a
// name exists and still has an open seat, before they bother building a
// board.
func (m *Manager) CheckGame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req := checkGameRequest{
		Name: r.URL.Query().Get("name"),
	}

	if vErr := http_utils.ValidateStruct(m.validate, req); !reflect.ValueOf(vErr).IsZero() {
		http_utils.SendResponse(w, http.StatusBadRequest, vErr)
		return
	}

	exists, joinable := m.registry.Joinable(req.Name)

	if !exists {
		http_utils.SendError(w, http.StatusNotFound, "game not found")
		return
	}

	http_utils.SendResponse(w, http.StatusOK, http_utils.NewDataResponse("game status", map[string]any{
		"name":     req.Name,
		"joinable": joinable,
	}))
}
