package game

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/mysterybox/internal/constants"
	models "github.com/CodeAndHammer/mysterybox/internal/models"
	store "github.com/CodeAndHammer/mysterybox/internal/store"
	util "github.com/CodeAndHammer/mysterybox/internal/util"
)

// Manager owns the game state record. Every operation loads the full record,
// applies one transition and saves it back while holding mu, so concurrent
// requests cannot interleave their read and write phases.
type Manager struct {
	mu          sync.Mutex
	store       store.Store
	pickRewards func() ([]int, error)
	newID       func() string
}

func NewManager(s store.Store) *Manager {
	return &Manager{
		store:       s,
		pickRewards: GenerateRewardBoxes,
		newID:       uuid.NewString,
	}
}

// GenerateRewardBoxes draws RewardBoxCount distinct box numbers uniformly
// from [MinBoxNumber, MaxBoxNumber] using a partial Fisher-Yates shuffle.
func GenerateRewardBoxes() ([]int, error) {
	return pickDistinct(constants.MinBoxNumber, constants.MaxBoxNumber, constants.RewardBoxCount)
}

func pickDistinct(low, high, count int) ([]int, error) {
	pool := lo.RangeFrom(low, high-low+1)
	if count > len(pool) {
		return nil, fmt.Errorf("cannot pick %d distinct values from %d", count, len(pool))
	}
	for i := range count {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool)-i)))
		if err != nil {
			return nil, fmt.Errorf("failed to generate random number: %w", err)
		}
		j := i + int(n.Int64())
		pool[i], pool[j] = pool[j], pool[i]
	}
	picked := slices.Clone(pool[:count])
	slices.Sort(picked)
	return picked, nil
}

// Initialize makes sure a state record exists and that the reward boxes have
// been drawn. Call it once at startup before serving requests.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load game state: %w", err)
	}

	if len(state.RewardBoxes) == 0 {
		boxes, err := m.pickRewards()
		if err != nil {
			return err
		}
		state.RewardBoxes = boxes
		util.LogInfo("Drew %d reward boxes", len(boxes))
	}

	if err := m.store.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	util.LogInfo("Game state ready: %d players, %d rewards claimed", len(state.Players), state.ClaimedRewards)
	return nil
}

func (m *Manager) RegisterPlayer(ctx context.Context, username string) (models.RegisterResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx)
	if err != nil {
		return models.RegisterResult{}, fmt.Errorf("failed to load game state: %w", err)
	}

	if player, ok := state.Players[username]; ok {
		util.LogInfo("%sPlayer %q already registered with %d chances", util.RequestPrefix(ctx), username, player.RemainingChances)
		return models.RegisterResult{RemainingChances: player.RemainingChances, AlreadyRegistered: true}, nil
	}

	player := &models.PlayerRecord{
		ID:               m.newID(),
		RemainingChances: constants.StartChances,
		PlayedBoxes:      []int{},
	}
	state.Players[username] = player

	if err := m.store.Save(ctx, state); err != nil {
		return models.RegisterResult{}, fmt.Errorf("failed to save game state: %w", err)
	}
	util.LogInfo("%sRegistered player %q (%s)", util.RequestPrefix(ctx), username, player.ID)
	return models.RegisterResult{RemainingChances: player.RemainingChances}, nil
}

func (m *Manager) SelectBox(ctx context.Context, username string, boxNumber int) (models.SelectionOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx)
	if err != nil {
		return models.SelectionOutcome{}, fmt.Errorf("failed to load game state: %w", err)
	}

	outcome := models.SelectionOutcome{RewardsLeft: rewardsLeft(state)}
	prefix := util.RequestPrefix(ctx)

	player, ok := state.Players[username]
	if !ok {
		outcome.Status = models.SelectionUnregistered
		util.LogWarn("%sSelection by unregistered user %q", prefix, username)
		return outcome, nil
	}
	outcome.RemainingChances = player.RemainingChances

	if player.RemainingChances <= 0 {
		outcome.Status = models.SelectionExhausted
		util.LogInfo("%sPlayer %q has no chances left", prefix, username)
		return outcome, nil
	}

	if slices.Contains(player.PlayedBoxes, boxNumber) {
		outcome.Status = models.SelectionDuplicate
		util.LogInfo("%sPlayer %q already selected box %d", prefix, username, boxNumber)
		return outcome, nil
	}

	won := slices.Contains(state.RewardBoxes, boxNumber) && state.ClaimedRewards < constants.MaxRewards
	if won {
		state.ClaimedRewards++
		state.Winners = append(state.Winners, models.Winner{Username: username, BoxNumber: boxNumber})
	}
	player.PlayedBoxes = append(player.PlayedBoxes, boxNumber)
	player.RemainingChances--

	if err := m.store.Save(ctx, state); err != nil {
		return models.SelectionOutcome{}, fmt.Errorf("failed to save game state: %w", err)
	}

	outcome.Status = models.SelectionResolved
	outcome.Won = won
	outcome.RemainingChances = player.RemainingChances
	outcome.RewardsLeft = rewardsLeft(state)
	if won {
		util.LogInfo("%sPlayer %q won with box %d, %d rewards left", prefix, username, boxNumber, outcome.RewardsLeft)
	} else {
		util.LogInfo("%sPlayer %q selected box %d, no reward", prefix, username, boxNumber)
	}
	return outcome, nil
}

// Reset replaces the whole record with a fresh one and a newly drawn reward pool.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	boxes, err := m.pickRewards()
	if err != nil {
		return err
	}
	state := store.NewEmptyState()
	state.RewardBoxes = boxes

	if err := m.store.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	util.LogInfo("%sGame reset with %d new reward boxes", util.RequestPrefix(ctx), len(boxes))
	return nil
}

// Snapshot returns a copy of the current record for read-only use.
func (m *Manager) Snapshot(ctx context.Context) (*models.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	return state, nil
}

func rewardsLeft(state *models.GameState) int {
	return max(constants.MaxRewards-state.ClaimedRewards, 0)
}
