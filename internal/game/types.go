package game

type Screen string

const (
	ScreenWelcome     Screen = "welcome"
	ScreenPlayerSetup Screen = "player-setup"
	ScreenCategory    Screen = "category-selection"
	ScreenGame        Screen = "game"
	ScreenLeaderboard Screen = "leaderboard"
	ScreenHistory     Screen = "history"
)

type Category string

const (
	CategoryKids  Category = "kids"
	CategoryTeens Category = "teens"
	CategoryAdult Category = "18+"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type PromptKind string

const (
	KindTruth    PromptKind = "truth"
	KindDare     PromptKind = "dare"
	KindWildcard PromptKind = "wildcard"
)

// Point values per prompt kind. Wildcard points are assigned per prompt
// within [WildcardMinPoints, WildcardMaxPoints].
const (
	TruthPoints       = 5
	DarePoints        = 10
	WildcardMinPoints = 15
	WildcardMaxPoints = 30
	SkipPenalty       = -5
)

const (
	DefaultRounds = 5
	MinRounds     = 3
	MaxRounds     = 15
	MaxIntensity  = 5
	HistoryLimit  = 20
)

type Player struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
}

type Config struct {
	Category   Category `json:"category"`
	Intensity  int      `json:"intensity"` // 1..5, meaningful only for 18+
	Rounds     int      `json:"rounds"`
	TTSEnabled bool     `json:"ttsEnabled"`
}

// TurnPrompt is the prompt handed to the current player for one turn.
type TurnPrompt struct {
	Kind         PromptKind `json:"kind"`
	Text         string     `json:"text"`
	Points       int        `json:"points"`
	TimerSeconds int        `json:"timerSeconds,omitempty"`
}

type ResultPlayer struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Avatar string `json:"avatar"`
}

// GameResult is one entry in the persisted game history.
type GameResult struct {
	ID         int64          `json:"id"` // unix millis at game end
	Date       string         `json:"date"`
	Players    []ResultPlayer `json:"players"`
	WinnerName string         `json:"winnerName"`
}

// Snapshot is the full resumable in-progress state, persisted while a
// game is running so a reload picks up the same turn.
type Snapshot struct {
	Screen             Screen   `json:"screen"`
	Players            []Player `json:"players"`
	Config             Config   `json:"config"`
	CurrentRound       int      `json:"currentRound"`
	CurrentPlayerIndex int      `json:"currentPlayerIndex"`
	SuddenDeath        bool     `json:"suddenDeath"`
	TurnToken          string   `json:"turnToken"`
	UsedPrompts        []string `json:"usedPrompts,omitempty"`
	TTSDisabled        bool     `json:"ttsDisabled,omitempty"`
}
