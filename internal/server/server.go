// Package server exposes the game over HTTP: session lifecycle, turn
// prompts, the streaming endpoint, speech synthesis, and history.
package server

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"showdown/internal/ai"
	"showdown/internal/game"
)

type Server struct {
	mgr      *game.Manager
	provider ai.Provider
	speaker  ai.Speaker

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(mgr *game.Manager) *Server {
	return &Server{
		mgr: mgr,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetProvider installs the generation backend. A nil provider switches
// the server to the static offline prompt tables.
func (s *Server) SetProvider(p ai.Provider) { s.provider = p }

// SetSpeaker installs the speech backend. Without one the speech
// endpoint reports the feature as unavailable.
func (s *Server) SetSpeaker(sp ai.Speaker) { s.speaker = sp }

func (s *Server) rollWildcardPoints() int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return game.WildcardMinPoints + s.rng.Intn(game.WildcardMaxPoints-game.WildcardMinPoints+1)
}

func (s *Server) rngLocked(fn func(r *rand.Rand) string) string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return fn(s.rng)
}

// Mount attaches all API routes to the given engine.
func (s *Server) Mount(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/session", s.handleSession)
	api.GET("/history", s.handleHistory)

	gameGroup := api.Group("/game")
	gameGroup.POST("/begin", s.handleBegin)
	gameGroup.POST("/players", s.handlePlayers)
	gameGroup.POST("/start", s.handleStart)
	gameGroup.POST("/prompt", s.handlePrompt)
	gameGroup.POST("/turn", s.handleTurn)
	gameGroup.POST("/end", s.handleEnd)
	gameGroup.POST("/again", s.handleAgain)
	gameGroup.POST("/tts", s.handleTTS)
	gameGroup.POST("/history/show", s.handleShowHistory)
	gameGroup.POST("/history/back", s.handleHistoryBack)

	api.POST("/stream", s.handleStream)
	api.POST("/speech", s.handleSpeech)
}
