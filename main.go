package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/rs/cors"

	"github.com/obinnaa/labyrinth-server/game"
	"github.com/obinnaa/labyrinth-server/token"
	"github.com/obinnaa/labyrinth-server/util"
	"github.com/obinnaa/labyrinth-server/ws"
)

func main() {
	util.InitValidator()

	config, err := util.LoadConfig()

	if err != nil {
		log.Fatal(err)
	}

	maker, err := token.NewPasetoMaker(config.TokenSymmetricKey)

	if err != nil {
		log.Fatal(err)
	}

	manager := ws.NewManager(config, maker, game.NewRegistry())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", manager.ServeWS)
	mux.HandleFunc("/auth/username", manager.TokenHandler)
	mux.Handle("/auth/verify", manager.AuthMiddleWare(http.HandlerFunc(manager.TokenVerifier)))
	mux.HandleFunc("/games/check", manager.CheckGame)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)

	addr := fmt.Sprintf(":%v", config.Port)
	log.Println("labyrinth server listening on", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
