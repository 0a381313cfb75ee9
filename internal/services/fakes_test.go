package services

import (
	"fmt"
	"sync"

	"ammlab/internal/apperrors"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore backs the fake DAOs with plain maps. The fake TxManager
// snapshots it before a transaction and restores it when the transaction
// function fails, so atomicity is observable in tests.
type memStore struct {
	mu          sync.Mutex
	experiments map[uuid.UUID]models.Experiment
	groups      map[uuid.UUID]models.Group
	rounds      map[uuid.UUID]models.Round
	pools       map[uuid.UUID]models.ExperimentRound
	txns        map[uuid.UUID]models.Transaction
	balances    map[balanceKey]models.PlayerBalance
	knowledge   map[knowledgeKey]models.PlayerCurrencyKnowledge
	feedback    map[uuid.UUID]models.UserFeedback
	currencies  map[uuid.UUID]models.Currency
	admins      map[uuid.UUID]models.AdminUser
	players     map[uuid.UUID]models.PlayerUser
}

type balanceKey struct {
	playerID   uuid.UUID
	poolID     uuid.UUID
	currencyID uuid.UUID
}

type knowledgeKey struct {
	playerID uuid.UUID
	poolID   uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		experiments: make(map[uuid.UUID]models.Experiment),
		groups:      make(map[uuid.UUID]models.Group),
		rounds:      make(map[uuid.UUID]models.Round),
		pools:       make(map[uuid.UUID]models.ExperimentRound),
		txns:        make(map[uuid.UUID]models.Transaction),
		balances:    make(map[balanceKey]models.PlayerBalance),
		knowledge:   make(map[knowledgeKey]models.PlayerCurrencyKnowledge),
		feedback:    make(map[uuid.UUID]models.UserFeedback),
		currencies:  make(map[uuid.UUID]models.Currency),
		admins:      make(map[uuid.UUID]models.AdminUser),
		players:     make(map[uuid.UUID]models.PlayerUser),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	return &memStore{
		experiments: copyMap(s.experiments),
		groups:      copyMap(s.groups),
		rounds:      copyMap(s.rounds),
		pools:       copyMap(s.pools),
		txns:        copyMap(s.txns),
		balances:    copyMap(s.balances),
		knowledge:   copyMap(s.knowledge),
		feedback:    copyMap(s.feedback),
		currencies:  copyMap(s.currencies),
		admins:      copyMap(s.admins),
		players:     copyMap(s.players),
	}
}

func (s *memStore) restore(snap *memStore) {
	s.experiments = snap.experiments
	s.groups = snap.groups
	s.rounds = snap.rounds
	s.pools = snap.pools
	s.txns = snap.txns
	s.balances = snap.balances
	s.knowledge = snap.knowledge
	s.feedback = snap.feedback
	s.currencies = snap.currencies
	s.admins = snap.admins
	s.players = snap.players
}

// fakeTxManager applies mutations directly and rolls the store back to the
// pre-transaction snapshot when the function fails.
type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) Transaction(fn func(tx *gorm.DB) error) error {
	m.store.mu.Lock()
	snap := m.store.snapshot()
	m.store.mu.Unlock()

	if err := fn(nil); err != nil {
		m.store.mu.Lock()
		m.store.restore(snap)
		m.store.mu.Unlock()
		return err
	}
	return nil
}

// --- experiments ---

type fakeExperimentDAO struct{ store *memStore }

func (d *fakeExperimentDAO) CreateWithTx(tx *gorm.DB, experiment *models.Experiment) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if experiment.ID == uuid.Nil {
		experiment.ID = uuid.New()
	}
	d.store.experiments[experiment.ID] = *experiment
	return nil
}

func (d *fakeExperimentDAO) GetByID(experimentID uuid.UUID) (*models.Experiment, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	experiment, ok := d.store.experiments[experimentID]
	if !ok {
		return nil, fmt.Errorf("%w: experiment %s", apperrors.ErrNotFound, experimentID)
	}
	return &experiment, nil
}

func (d *fakeExperimentDAO) List(skip, limit int) ([]models.Experiment, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.Experiment
	for _, experiment := range d.store.experiments {
		out = append(out, experiment)
	}
	return out, nil
}

func (d *fakeExperimentDAO) Save(experiment *models.Experiment) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	d.store.experiments[experiment.ID] = *experiment
	return nil
}

func (d *fakeExperimentDAO) DeleteWithTx(tx *gorm.DB, experimentID uuid.UUID) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	delete(d.store.experiments, experimentID)
	return nil
}

type fakeGroupDAO struct{ store *memStore }

func (d *fakeGroupDAO) CreateWithTx(tx *gorm.DB, group *models.Group) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	d.store.groups[group.ID] = *group
	return nil
}

func (d *fakeGroupDAO) GetByID(groupID uuid.UUID) (*models.Group, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	group, ok := d.store.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	return &group, nil
}

func (d *fakeGroupDAO) GetByExperiment(experimentID uuid.UUID) ([]models.Group, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.Group
	for _, group := range d.store.groups {
		if group.ExperimentID == experimentID {
			out = append(out, group)
		}
	}
	return out, nil
}

func (d *fakeGroupDAO) DeleteByExperimentWithTx(tx *gorm.DB, experimentID uuid.UUID) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	for id, group := range d.store.groups {
		if group.ExperimentID == experimentID {
			delete(d.store.groups, id)
		}
	}
	return nil
}

// --- rounds ---

type fakeRoundDAO struct{ store *memStore }

func (d *fakeRoundDAO) Create(round *models.Round) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	d.store.rounds[round.ID] = *round
	return nil
}

func (d *fakeRoundDAO) GetByID(roundID uuid.UUID) (*models.Round, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	round, ok := d.store.rounds[roundID]
	if !ok {
		return nil, fmt.Errorf("%w: round %s", apperrors.ErrNotFound, roundID)
	}
	return &round, nil
}

func (d *fakeRoundDAO) GetByExperiment(experimentID uuid.UUID) ([]models.Round, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.Round
	for _, round := range d.store.rounds {
		if round.ExperimentID == experimentID {
			out = append(out, round)
		}
	}
	return out, nil
}

func (d *fakeRoundDAO) Save(round *models.Round) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	d.store.rounds[round.ID] = *round
	return nil
}

func (d *fakeRoundDAO) SaveWithTx(tx *gorm.DB, round *models.Round) error {
	return d.Save(round)
}

func (d *fakeRoundDAO) DeleteByExperimentWithTx(tx *gorm.DB, experimentID uuid.UUID) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	for id, round := range d.store.rounds {
		if round.ExperimentID == experimentID {
			delete(d.store.rounds, id)
		}
	}
	return nil
}

type fakePoolDAO struct{ store *memStore }

func (d *fakePoolDAO) CreateWithTx(tx *gorm.DB, pool *models.ExperimentRound) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if pool.ID == uuid.Nil {
		pool.ID = uuid.New()
	}
	d.store.pools[pool.ID] = *pool
	return nil
}

func (d *fakePoolDAO) GetByID(poolID uuid.UUID) (*models.ExperimentRound, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	pool, ok := d.store.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("%w: experiment round %s", apperrors.ErrNotFound, poolID)
	}
	return &pool, nil
}

func (d *fakePoolDAO) GetByRound(roundID uuid.UUID) ([]models.ExperimentRound, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.ExperimentRound
	for _, pool := range d.store.pools {
		if pool.RoundID == roundID {
			out = append(out, pool)
		}
	}
	return out, nil
}

func (d *fakePoolDAO) GetByRoundAndGroup(roundID, groupID uuid.UUID) (*models.ExperimentRound, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	for _, pool := range d.store.pools {
		if pool.RoundID == roundID && pool.GroupID == groupID {
			p := pool
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: experiment round for round %s group %s", apperrors.ErrNotFound, roundID, groupID)
}

func (d *fakePoolDAO) CountByRound(roundID uuid.UUID) (int64, error) {
	pools, _ := d.GetByRound(roundID)
	return int64(len(pools)), nil
}

func (d *fakePoolDAO) SaveWithTx(tx *gorm.DB, pool *models.ExperimentRound) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	d.store.pools[pool.ID] = *pool
	return nil
}

func (d *fakePoolDAO) DeleteByRoundsWithTx(tx *gorm.DB, roundIDs []uuid.UUID) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	for _, roundID := range roundIDs {
		for id, pool := range d.store.pools {
			if pool.RoundID == roundID {
				delete(d.store.pools, id)
			}
		}
	}
	return nil
}

// --- ledger ---

type fakeTransactionDAO struct{ store *memStore }

func (d *fakeTransactionDAO) CreateWithTx(tx *gorm.DB, txn *models.Transaction) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	d.store.txns[txn.ID] = *txn
	return nil
}

func (d *fakeTransactionDAO) GetByPool(poolID uuid.UUID, skip, limit int) ([]models.Transaction, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.Transaction
	for _, txn := range d.store.txns {
		if txn.ExperimentRoundID == poolID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (d *fakeTransactionDAO) GetByPlayer(playerID, poolID uuid.UUID, skip, limit int) ([]models.Transaction, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.Transaction
	for _, txn := range d.store.txns {
		if txn.PlayerID == playerID && txn.ExperimentRoundID == poolID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (d *fakeTransactionDAO) CountByPlayerWithTx(tx *gorm.DB, playerID, poolID uuid.UUID) (int64, error) {
	txns, _ := d.GetByPlayer(playerID, poolID, 0, 0)
	return int64(len(txns)), nil
}

func (d *fakeTransactionDAO) DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	for _, poolID := range poolIDs {
		for id, txn := range d.store.txns {
			if txn.ExperimentRoundID == poolID {
				delete(d.store.txns, id)
			}
		}
	}
	return nil
}

type fakeBalanceDAO struct{ store *memStore }

func (d *fakeBalanceDAO) CreateWithTx(tx *gorm.DB, balance *models.PlayerBalance) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if balance.ID == uuid.Nil {
		balance.ID = uuid.New()
	}
	key := balanceKey{balance.PlayerID, balance.ExperimentRoundID, balance.CurrencyID}
	d.store.balances[key] = *balance
	return nil
}

func (d *fakeBalanceDAO) GetWithTx(tx *gorm.DB, playerID, poolID, currencyID uuid.UUID) (*models.PlayerBalance, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	balance, ok := d.store.balances[balanceKey{playerID, poolID, currencyID}]
	if !ok {
		return nil, fmt.Errorf("%w: balance for player %s currency %s", apperrors.ErrNotFound, playerID, currencyID)
	}
	return &balance, nil
}

func (d *fakeBalanceDAO) SaveWithTx(tx *gorm.DB, balance *models.PlayerBalance) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	key := balanceKey{balance.PlayerID, balance.ExperimentRoundID, balance.CurrencyID}
	d.store.balances[key] = *balance
	return nil
}

func (d *fakeBalanceDAO) GetByPlayerAndPool(playerID, poolID uuid.UUID) ([]models.PlayerBalance, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.PlayerBalance
	for key, balance := range d.store.balances {
		if key.playerID == playerID && key.poolID == poolID {
			out = append(out, balance)
		}
	}
	return out, nil
}

func (d *fakeBalanceDAO) GetByPool(poolID uuid.UUID, skip, limit int) ([]models.PlayerBalance, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.PlayerBalance
	for key, balance := range d.store.balances {
		if key.poolID == poolID {
			out = append(out, balance)
		}
	}
	return out, nil
}

func (d *fakeBalanceDAO) DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	for _, poolID := range poolIDs {
		for key := range d.store.balances {
			if key.poolID == poolID {
				delete(d.store.balances, key)
			}
		}
	}
	return nil
}

type fakeKnowledgeDAO struct{ store *memStore }

func (d *fakeKnowledgeDAO) CreateWithTx(tx *gorm.DB, knowledge *models.PlayerCurrencyKnowledge) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if knowledge.ID == uuid.Nil {
		knowledge.ID = uuid.New()
	}
	key := knowledgeKey{knowledge.PlayerID, knowledge.ExperimentRoundID}
	if _, exists := d.store.knowledge[key]; exists {
		return fmt.Errorf("duplicate knowledge assignment for player %s", knowledge.PlayerID)
	}
	d.store.knowledge[key] = *knowledge
	return nil
}

func (d *fakeKnowledgeDAO) Get(playerID, poolID uuid.UUID) (*models.PlayerCurrencyKnowledge, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	knowledge, ok := d.store.knowledge[knowledgeKey{playerID, poolID}]
	if !ok {
		return nil, fmt.Errorf("%w: currency knowledge for player %s", apperrors.ErrNotFound, playerID)
	}
	return &knowledge, nil
}

func (d *fakeKnowledgeDAO) GetByPool(poolID uuid.UUID) ([]models.PlayerCurrencyKnowledge, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.PlayerCurrencyKnowledge
	for key, knowledge := range d.store.knowledge {
		if key.poolID == poolID {
			out = append(out, knowledge)
		}
	}
	return out, nil
}

func (d *fakeKnowledgeDAO) DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	for _, poolID := range poolIDs {
		for key := range d.store.knowledge {
			if key.poolID == poolID {
				delete(d.store.knowledge, key)
			}
		}
	}
	return nil
}

type fakeFeedbackDAO struct{ store *memStore }

func (d *fakeFeedbackDAO) CreateWithTx(tx *gorm.DB, feedback *models.UserFeedback) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if feedback.ID == uuid.Nil {
		feedback.ID = uuid.New()
	}
	d.store.feedback[feedback.ID] = *feedback
	return nil
}

func (d *fakeFeedbackDAO) GetByPlayerAndPool(playerID, poolID uuid.UUID) ([]models.UserFeedback, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.UserFeedback
	for _, feedback := range d.store.feedback {
		if feedback.PlayerID == playerID && feedback.ExperimentRoundID == poolID {
			out = append(out, feedback)
		}
	}
	return out, nil
}

func (d *fakeFeedbackDAO) DeleteByPoolsWithTx(tx *gorm.DB, poolIDs []uuid.UUID) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	for _, poolID := range poolIDs {
		for id, feedback := range d.store.feedback {
			if feedback.ExperimentRoundID == poolID {
				delete(d.store.feedback, id)
			}
		}
	}
	return nil
}

// --- registry ---

type fakeCurrencyDAO struct{ store *memStore }

func (d *fakeCurrencyDAO) GetByID(currencyID uuid.UUID) (*models.Currency, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	currency, ok := d.store.currencies[currencyID]
	if !ok {
		return nil, fmt.Errorf("%w: currency %s", apperrors.ErrNotFound, currencyID)
	}
	return &currency, nil
}

func (d *fakeCurrencyDAO) List(skip, limit int) ([]models.Currency, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.Currency
	for _, currency := range d.store.currencies {
		out = append(out, currency)
	}
	return out, nil
}

type fakeUserDAO struct{ store *memStore }

func (d *fakeUserDAO) GetAdminByID(adminID uuid.UUID) (*models.AdminUser, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	admin, ok := d.store.admins[adminID]
	if !ok {
		return nil, fmt.Errorf("%w: admin %s", apperrors.ErrNotFound, adminID)
	}
	return &admin, nil
}

func (d *fakeUserDAO) GetPlayerByID(playerID uuid.UUID) (*models.PlayerUser, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	player, ok := d.store.players[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: player %s", apperrors.ErrNotFound, playerID)
	}
	return &player, nil
}

func (d *fakeUserDAO) GetPlayersByGroup(groupID uuid.UUID) ([]models.PlayerUser, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var out []models.PlayerUser
	for _, player := range d.store.players {
		if player.GroupID != nil && *player.GroupID == groupID {
			out = append(out, player)
		}
	}
	return out, nil
}
