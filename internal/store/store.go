// Package store persists the shared game state record.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/mysterybox/internal/constants"
	models "github.com/CodeAndHammer/mysterybox/internal/models"
)

// Store loads and saves the whole game state record. Load returns an empty
// state when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*models.GameState, error)
	Save(ctx context.Context, state *models.GameState) error
	Close() error
}

func NewEmptyState() *models.GameState {
	return &models.GameState{
		RewardBoxes: []int{},
		Winners:     []models.Winner{},
		Players:     make(map[string]*models.PlayerRecord),
	}
}

// Open picks a Store implementation by driver name.
func Open(ctx context.Context, driver, gameFile, sqlitePath string) (Store, error) {
	switch driver {
	case constants.StoreDriverFile, "":
		return NewFileStore(gameFile)
	case constants.StoreDriverSQLite:
		return NewSQLiteStore(ctx, sqlitePath)
	case constants.StoreDriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func decodeState(data []byte) (*models.GameState, error) {
	state := NewEmptyState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}
	legacy, err := legacyPlayers(data)
	if err != nil {
		return nil, err
	}
	normalize(state, legacy)
	return state, nil
}

// encodeState marshals a shallow copy so the caller's state is left as is.
func encodeState(state *models.GameState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("game state is nil")
	}
	out := *state
	if out.RewardBoxes == nil {
		out.RewardBoxes = []int{}
	}
	if out.Winners == nil {
		out.Winners = []models.Winner{}
	}
	if out.Players == nil {
		out.Players = map[string]*models.PlayerRecord{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	return data, nil
}

// legacyPlayers reports, for each player record written before per-player
// chances existed, whether that player had already played.
func legacyPlayers(data []byte) (map[string]bool, error) {
	var raw struct {
		Players map[string]map[string]json.RawMessage `json:"players"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode player records: %w", err)
	}
	legacy := make(map[string]bool)
	for name, fields := range raw.Players {
		if fields == nil {
			continue
		}
		if _, ok := fields["remainingChances"]; ok {
			continue
		}
		var played bool
		if msg, ok := fields["played"]; ok {
			if err := json.Unmarshal(msg, &played); err != nil {
				return nil, fmt.Errorf("player %q: invalid played flag: %w", name, err)
			}
		}
		legacy[name] = played
	}
	return legacy, nil
}

// normalize fills nil collections and gives legacy player records a chance
// counter: a full set when they had not played, none when they had.
func normalize(state *models.GameState, legacy map[string]bool) {
	if state.RewardBoxes == nil {
		state.RewardBoxes = []int{}
	}
	if state.Winners == nil {
		state.Winners = []models.Winner{}
	}
	if state.Players == nil {
		state.Players = make(map[string]*models.PlayerRecord)
	}
	for name, p := range state.Players {
		if p == nil {
			delete(state.Players, name)
			continue
		}
		if p.PlayedBoxes == nil {
			p.PlayedBoxes = []int{}
		}
		if played, ok := legacy[name]; ok {
			p.RemainingChances = lo.Ternary(played, 0, constants.StartChances)
		}
		p.PlayedBoxes = slices.Compact(slices.Sorted(slices.Values(p.PlayedBoxes)))
	}
}
