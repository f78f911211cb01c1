package server

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"showdown/internal/ai"
	"showdown/internal/game"
	"showdown/internal/prompt"
)

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.state())
}

// state builds the full client-facing view of the session.
func (s *Server) state() gin.H {
	sess := s.mgr.Session()
	current, total := sess.Round()
	out := gin.H{
		"screen":       sess.Screen(),
		"players":      sess.Players(),
		"config":       sess.Config(),
		"currentRound": current,
		"rounds":       total,
		"suddenDeath":  sess.SuddenDeath(),
		"resumed":      s.mgr.Resumed(),
		"ttsActive":    sess.TTSActive(),
	}
	if player, err := sess.CurrentPlayer(); err == nil {
		out["currentPlayer"] = player
		out["turnToken"] = sess.TurnToken()
	}
	if sess.Screen() == game.ScreenLeaderboard {
		out["leaderboard"] = sess.Leaderboard()
	}
	return out
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": s.mgr.History()})
}

func (s *Server) handleBegin(c *gin.Context) {
	s.mgr.Begin()
	c.JSON(http.StatusOK, s.state())
}

func (s *Server) handlePlayers(c *gin.Context) {
	var req struct {
		Players []game.Player `json:"players"`
	}
	if err := c.BindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid_request", "Malformed player list.")
		return
	}
	if err := s.mgr.SetPlayers(req.Players); err != nil {
		apiError(c, http.StatusBadRequest, "invalid_players", err.Error())
		return
	}
	c.JSON(http.StatusOK, s.state())
}

func (s *Server) handleStart(c *gin.Context) {
	var cfg game.Config
	if err := c.BindJSON(&cfg); err != nil {
		apiError(c, http.StatusBadRequest, "invalid_request", "Malformed game configuration.")
		return
	}
	if err := s.mgr.Start(cfg); err != nil {
		apiError(c, http.StatusBadRequest, "invalid_config", err.Error())
		return
	}
	c.JSON(http.StatusOK, s.state())
}

type promptRequest struct {
	PromptType game.PromptKind `json:"promptType"`
	TurnToken  string          `json:"turnToken"`
}

func (s *Server) handlePrompt(c *gin.Context) {
	var req promptRequest
	if err := c.BindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid_request", "Malformed prompt request.")
		return
	}
	if !validKind(req.PromptType) {
		apiError(c, http.StatusBadRequest, "invalid_request", "Unknown prompt type.")
		return
	}
	sess := s.mgr.Session()
	if err := sess.CheckTurn(req.TurnToken); err != nil {
		apiError(c, http.StatusConflict, "stale_turn", "This turn has already moved on.")
		return
	}
	player, err := sess.CurrentPlayer()
	if err != nil {
		apiError(c, http.StatusConflict, "no_active_player", "No game in progress.")
		return
	}

	cfg := sess.Config()
	turn, err := s.generatePrompt(c, sess, cfg, player, req.PromptType)
	if err != nil {
		log.Error().Err(err).Str("kind", string(req.PromptType)).Msg("prompt generation failed")
		apiError(c, http.StatusBadGateway, "ai_unavailable", "The AI is sleeping on the job. Please try again.")
		return
	}

	// The generation call can outlive the turn it was issued for; a
	// result for a since-abandoned turn is discarded, latest wins.
	if err := sess.CheckTurn(req.TurnToken); err != nil {
		apiError(c, http.StatusConflict, "stale_turn", "This turn has already moved on.")
		return
	}
	s.mgr.RecordPrompt(turn.Text)
	c.JSON(http.StatusOK, turn)
}

func (s *Server) generatePrompt(c *gin.Context, sess *game.Session, cfg game.Config, player game.Player, kind game.PromptKind) (*game.TurnPrompt, error) {
	if s.provider == nil {
		text := s.rngLocked(func(r *rand.Rand) string {
			return prompt.Fallback(cfg.Category, cfg.Intensity, kind, r)
		})
		points := prompt.PointsFor(kind)
		if kind == game.KindWildcard {
			points = s.rollWildcardPoints()
		}
		return &game.TurnPrompt{Kind: kind, Text: text, Points: points}, nil
	}

	rendered := prompt.Render(prompt.Request{
		Player:          player,
		Others:          sess.OtherPlayers(),
		Category:        cfg.Category,
		Intensity:       cfg.Intensity,
		Kind:            kind,
		PreviousPrompts: sess.RecentPrompts(),
	})
	result, err := s.provider.Generate(c.Request.Context(), ai.GenerateRequest{
		Prompt:   rendered,
		Safety:   prompt.SafetyFor(cfg.Category, cfg.Intensity),
		Wildcard: kind == game.KindWildcard,
	})
	if err != nil {
		return nil, err
	}

	points := prompt.PointsFor(kind)
	if kind == game.KindWildcard {
		points = result.Points
		if points < game.WildcardMinPoints || points > game.WildcardMaxPoints {
			points = s.rollWildcardPoints()
		}
	}
	return &game.TurnPrompt{
		Kind:         kind,
		Text:         result.Text,
		Points:       points,
		TimerSeconds: prompt.SanitizeTimer(result.Text, result.TimerSeconds),
	}, nil
}

type turnRequest struct {
	Points    int    `json:"points"`
	Skip      bool   `json:"skip"`
	TurnToken string `json:"turnToken"`
}

func (s *Server) handleTurn(c *gin.Context) {
	var req turnRequest
	if err := c.BindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid_request", "Malformed turn request.")
		return
	}
	sess := s.mgr.Session()
	if err := sess.CheckTurn(req.TurnToken); err != nil {
		apiError(c, http.StatusConflict, "stale_turn", "This turn has already moved on.")
		return
	}

	var (
		outcome game.TurnOutcome
		err     error
	)
	if req.Skip {
		outcome, err = s.mgr.Skip()
	} else {
		if req.Points < 0 || req.Points > game.WildcardMaxPoints {
			apiError(c, http.StatusBadRequest, "invalid_points", "Point value out of range.")
			return
		}
		outcome, err = s.mgr.CompleteTurn(req.Points)
	}
	if err != nil {
		apiError(c, http.StatusConflict, "invalid_turn", err.Error())
		return
	}

	out := s.state()
	out["roundOver"] = outcome.RoundOver
	out["gameOver"] = outcome.GameOver
	if outcome.SuddenDeath {
		out["tiedPlayers"] = outcome.TiedPlayers
	}
	if outcome.Result != nil {
		out["result"] = outcome.Result
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleEnd(c *gin.Context) {
	result, err := s.mgr.EndGame()
	if err != nil {
		apiError(c, http.StatusConflict, "no_game", "No game in progress.")
		return
	}
	out := s.state()
	out["result"] = result
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleAgain(c *gin.Context) {
	s.mgr.PlayAgain()
	c.JSON(http.StatusOK, s.state())
}

func (s *Server) handleTTS(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid_request", "Malformed request.")
		return
	}
	s.mgr.SetTTSEnabled(req.Enabled)
	c.JSON(http.StatusOK, s.state())
}

func (s *Server) handleShowHistory(c *gin.Context) {
	s.mgr.Session().ShowHistory()
	c.JSON(http.StatusOK, s.state())
}

func (s *Server) handleHistoryBack(c *gin.Context) {
	s.mgr.Session().Back()
	c.JSON(http.StatusOK, s.state())
}

// handleStream relays the generated prompt as plain-text chunks. The
// point value has to be known before the text finishes streaming, so
// it travels out-of-band in a response header.
func (s *Server) handleStream(c *gin.Context) {
	var req promptRequest
	if err := c.BindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid_request", "Malformed stream request.")
		return
	}
	if !validKind(req.PromptType) {
		apiError(c, http.StatusBadRequest, "invalid_request", "Unknown prompt type.")
		return
	}
	sess := s.mgr.Session()
	if err := sess.CheckTurn(req.TurnToken); err != nil {
		apiError(c, http.StatusConflict, "stale_turn", "This turn has already moved on.")
		return
	}
	player, err := sess.CurrentPlayer()
	if err != nil {
		apiError(c, http.StatusConflict, "no_active_player", "No game in progress.")
		return
	}

	points := prompt.PointsFor(req.PromptType)
	if req.PromptType == game.KindWildcard {
		points = s.rollWildcardPoints()
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Prompt-Points", strconv.Itoa(points))

	cfg := sess.Config()
	if s.provider == nil {
		text := s.rngLocked(func(r *rand.Rand) string {
			return prompt.Fallback(cfg.Category, cfg.Intensity, req.PromptType, r)
		})
		c.String(http.StatusOK, text)
		s.mgr.RecordPrompt(text)
		return
	}

	rendered := prompt.Render(prompt.Request{
		Player:          player,
		Others:          sess.OtherPlayers(),
		Category:        cfg.Category,
		Intensity:       cfg.Intensity,
		Kind:            req.PromptType,
		PreviousPrompts: sess.RecentPrompts(),
	})

	c.Status(http.StatusOK)
	var full []byte
	err = s.provider.GenerateStream(c.Request.Context(), ai.GenerateRequest{
		Prompt:   rendered,
		Safety:   prompt.SafetyFor(cfg.Category, cfg.Intensity),
		Wildcard: req.PromptType == game.KindWildcard,
	}, func(chunk string) error {
		full = append(full, chunk...)
		if _, werr := c.Writer.WriteString(chunk); werr != nil {
			return werr
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		// Headers are gone already; all we can do is log and cut off.
		log.Error().Err(err).Msg("prompt stream failed")
		return
	}
	if sess.CheckTurn(req.TurnToken) == nil && len(full) > 0 {
		s.mgr.RecordPrompt(string(full))
	}
}

type speechRequest struct {
	Text   string `json:"text"`
	Gender string `json:"gender"`
}

func (s *Server) handleSpeech(c *gin.Context) {
	var req speechRequest
	if err := c.BindJSON(&req); err != nil || req.Text == "" {
		apiError(c, http.StatusBadRequest, "invalid_request", "Malformed speech request.")
		return
	}
	if req.Gender != string(game.GenderMale) && req.Gender != string(game.GenderFemale) {
		apiError(c, http.StatusBadRequest, "invalid_request", "Unknown gender.")
		return
	}
	sess := s.mgr.Session()
	if !sess.TTSActive() {
		c.JSON(http.StatusOK, gin.H{"disabled": true})
		return
	}
	if s.speaker == nil {
		c.JSON(http.StatusOK, gin.H{"disabled": true})
		return
	}

	uri, err := s.speaker.Synthesize(c.Request.Context(), req.Text, req.Gender)
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExhausted) {
			// Quota is gone for good this session, stop asking.
			s.mgr.DisableTTS()
			log.Warn().Err(err).Msg("tts quota exhausted, voice disabled for this session")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "tts_quota",
				"message": "Voice is taking a break. It has been turned off for this game.",
			})
			return
		}
		// Speech is a non-critical feature, degrade quietly.
		log.Warn().Err(err).Msg("tts generation failed")
		c.JSON(http.StatusOK, gin.H{"disabled": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audioDataUri": uri})
}

func validKind(kind game.PromptKind) bool {
	switch kind {
	case game.KindTruth, game.KindDare, game.KindWildcard:
		return true
	}
	return false
}

func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}
