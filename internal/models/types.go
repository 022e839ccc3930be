package models

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// GameState is the single persisted record shared by every request.
type GameState struct {
	RewardBoxes    []int                    `json:"rewardBoxes"`
	ClaimedRewards int                      `json:"claimedRewards"`
	Winners        []Winner                 `json:"winners"`
	Players        map[string]*PlayerRecord `json:"players"`
}

type Winner struct {
	Username  string `json:"username"`
	BoxNumber int    `json:"boxNumber"`
}

type PlayerRecord struct {
	ID               string `json:"id"`
	RemainingChances int    `json:"remainingChances"`
	PlayedBoxes      []int  `json:"playedBoxes"`
}

type SelectionStatus int

const (
	SelectionResolved SelectionStatus = iota
	SelectionUnregistered
	SelectionExhausted
	SelectionDuplicate
)

func (s SelectionStatus) String() string {
	switch s {
	case SelectionResolved:
		return "resolved"
	case SelectionUnregistered:
		return "unregistered"
	case SelectionExhausted:
		return "exhausted"
	case SelectionDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

type SelectionOutcome struct {
	Status           SelectionStatus
	Won              bool
	RemainingChances int
	RewardsLeft      int
}

type RegisterResult struct {
	RemainingChances  int
	AlreadyRegistered bool
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
}

type SelectBoxRequest struct {
	Username  string `json:"username" binding:"required"`
	BoxNumber *int   `json:"boxNumber" binding:"required"`
}

// GameService is the set of operations the HTTP layer maps onto.
type GameService interface {
	RegisterPlayer(ctx context.Context, username string) (RegisterResult, error)
	SelectBox(ctx context.Context, username string, boxNumber int) (SelectionOutcome, error)
	Reset(ctx context.Context) error
	Snapshot(ctx context.Context) (*GameState, error)
}

// Recorder receives operation results for metrics.
type Recorder interface {
	ObserveRegistration(alreadyRegistered bool)
	ObserveSelection(outcome SelectionOutcome)
	ObserveReset()
	ObserveFailure(operation string)
}

type RateLimiterEntry struct {
	Limiter    *rate.Limiter
	LastAccess time.Time
}

type App struct {
	Game           GameService
	Metrics        Recorder
	LimiterMap     map[string]*RateLimiterEntry
	LimiterMutex   sync.RWMutex
	IsProduction   bool
	StartTime      time.Time
	AllowedOrigins []string
	StoreDriver    string
	RateLimitRPS   int
	RateLimitBurst int
	RateLimiterTTL time.Duration
}
