package services

import (
	"fmt"
	"math/rand"
	"testing"

	"ammlab/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testEnv wires the services against in-memory fakes with a seeded admin
// and two currencies.
type testEnv struct {
	store *memStore

	experiments *ExperimentService
	rounds      *RoundService
	swaps       *SwapService
	knowledge   *KnowledgeService

	adminID   uuid.UUID
	currencyX uuid.UUID
	currencyY uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	txm := &fakeTxManager{store: store}

	experimentDAO := &fakeExperimentDAO{store: store}
	groupDAO := &fakeGroupDAO{store: store}
	roundDAO := &fakeRoundDAO{store: store}
	poolDAO := &fakePoolDAO{store: store}
	transactionDAO := &fakeTransactionDAO{store: store}
	balanceDAO := &fakeBalanceDAO{store: store}
	knowledgeDAO := &fakeKnowledgeDAO{store: store}
	feedbackDAO := &fakeFeedbackDAO{store: store}
	currencyDAO := &fakeCurrencyDAO{store: store}
	userDAO := &fakeUserDAO{store: store}

	knowledgeService := NewKnowledgeService(knowledgeDAO, BalancedSplitPolicy(rand.New(rand.NewSource(42))))
	experimentService := NewExperimentService(
		txm, experimentDAO, groupDAO, roundDAO, poolDAO,
		transactionDAO, balanceDAO, knowledgeDAO, feedbackDAO, userDAO,
	)
	roundService := NewRoundService(
		txm, roundDAO, poolDAO, experimentDAO, groupDAO,
		currencyDAO, userDAO, balanceDAO, transactionDAO, feedbackDAO,
		knowledgeService,
	)
	swapService := NewSwapService(txm, poolDAO, roundDAO, transactionDAO, balanceDAO, userDAO)

	env := &testEnv{
		store:       store,
		experiments: experimentService,
		rounds:      roundService,
		swaps:       swapService,
		knowledge:   knowledgeService,
		adminID:     uuid.New(),
		currencyX:   uuid.New(),
		currencyY:   uuid.New(),
	}

	store.admins[env.adminID] = models.AdminUser{ID: env.adminID, UserID: uuid.New()}
	store.currencies[env.currencyX] = models.Currency{ID: env.currencyX, Symbol: "GLD", NameEn: "Gold"}
	store.currencies[env.currencyY] = models.Currency{ID: env.currencyY, Symbol: "SLV", NameEn: "Silver"}

	return env
}

func (env *testEnv) createExperiment(t *testing.T, numGroups int) *models.Experiment {
	t.Helper()
	experiment, err := env.experiments.CreateExperiment("test experiment", env.adminID, 5, 1, 3, numGroups*4, numGroups)
	require.NoError(t, err)
	return experiment
}

func (env *testEnv) createRound(t *testing.T, experimentID uuid.UUID, reserveX, reserveY decimal.Decimal) *models.Round {
	t.Helper()
	round, err := env.rounds.CreateRound(CreateRoundParams{
		ExperimentID:    experimentID,
		RoundNumber:     1,
		DurationMinutes: 10,
		CurrencyXID:     env.currencyX,
		CurrencyYID:     env.currencyY,
		ExternalPriceX:  decimal.NewFromInt(2),
		ExternalPriceY:  decimal.NewFromInt(3),
		InitialReserveX: reserveX,
		InitialReserveY: reserveY,
	})
	require.NoError(t, err)
	return round
}

// addPlayers seeds n players into the given group directly in the store.
func (env *testEnv) addPlayers(groupID uuid.UUID, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		gid := groupID
		env.store.players[id] = models.PlayerUser{ID: id, UserID: uuid.New(), GroupID: &gid}
		ids[i] = id
	}
	return ids
}

// setBalance overwrites one balance row, simulating a funding top-up.
func (env *testEnv) setBalance(playerID, poolID, currencyID uuid.UUID, amount decimal.Decimal) {
	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	key := balanceKey{playerID, poolID, currencyID}
	balance, ok := env.store.balances[key]
	if !ok {
		balance = models.PlayerBalance{
			ID:                uuid.New(),
			PlayerID:          playerID,
			ExperimentRoundID: poolID,
			CurrencyID:        currencyID,
		}
	}
	balance.Balance = amount
	env.store.balances[key] = balance
}

func (env *testEnv) getBalance(t *testing.T, playerID, poolID, currencyID uuid.UUID) decimal.Decimal {
	t.Helper()
	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	balance, ok := env.store.balances[balanceKey{playerID, poolID, currencyID}]
	require.True(t, ok, "balance row missing")
	return balance.Balance
}

// feedbackByPlayer returns the single feedback row for one player in one
// pool.
func (s *memStore) feedbackByPlayer(playerID, poolID uuid.UUID) (*models.UserFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, feedback := range s.feedback {
		if feedback.PlayerID == playerID && feedback.ExperimentRoundID == poolID {
			f := feedback
			return &f, nil
		}
	}
	return nil, fmt.Errorf("no feedback for player %s in pool %s", playerID, poolID)
}

// startedPool builds an experiment with one group of nPlayers, one round,
// initialized and started, and returns the round, the single pool and the
// player ids.
func (env *testEnv) startedPool(t *testing.T, nPlayers int, reserveX, reserveY decimal.Decimal) (*models.Round, *models.ExperimentRound, []uuid.UUID) {
	t.Helper()

	experiment := env.createExperiment(t, 1)
	groups, err := env.experiments.GetGroups(experiment.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	players := env.addPlayers(groups[0].ID, nPlayers)

	round := env.createRound(t, experiment.ID, reserveX, reserveY)
	pools, err := env.rounds.InitializePools(round.ID)
	require.NoError(t, err)
	require.Len(t, pools, 1)

	_, err = env.rounds.StartRound(round.ID)
	require.NoError(t, err)

	pool, err := env.rounds.GetPool(pools[0].ID)
	require.NoError(t, err)
	return round, pool, players
}
