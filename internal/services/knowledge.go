package services

import (
	"fmt"
	"math/rand"

	ledgerDAO "ammlab/internal/dao/ledger"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignPolicy decides which of the two pool currencies each player may
// observe the external reference price of. The returned map must be total
// over the given players.
type AssignPolicy func(playerIDs []uuid.UUID, currencyX, currencyY uuid.UUID) map[uuid.UUID]uuid.UUID

// BalancedSplitPolicy shuffles the players and reveals currency X to the
// first half and currency Y to the rest. With an odd player count the extra
// player lands on Y.
func BalancedSplitPolicy(rng *rand.Rand) AssignPolicy {
	return func(playerIDs []uuid.UUID, currencyX, currencyY uuid.UUID) map[uuid.UUID]uuid.UUID {
		shuffled := make([]uuid.UUID, len(playerIDs))
		copy(shuffled, playerIDs)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		assignment := make(map[uuid.UUID]uuid.UUID, len(shuffled))
		for i, playerID := range shuffled {
			if i < len(shuffled)/2 {
				assignment[playerID] = currencyX
			} else {
				assignment[playerID] = currencyY
			}
		}
		return assignment
	}
}

// UniformRandomPolicy flips an independent coin per player.
func UniformRandomPolicy(rng *rand.Rand) AssignPolicy {
	return func(playerIDs []uuid.UUID, currencyX, currencyY uuid.UUID) map[uuid.UUID]uuid.UUID {
		assignment := make(map[uuid.UUID]uuid.UUID, len(playerIDs))
		for _, playerID := range playerIDs {
			if rng.Intn(2) == 0 {
				assignment[playerID] = currencyX
			} else {
				assignment[playerID] = currencyY
			}
		}
		return assignment
	}
}

// KnowledgeService assigns each player visibility into exactly one of the
// two pool currencies' external reference prices, once per (player, pool).
type KnowledgeService struct {
	knowledgeDAO ledgerDAO.KnowledgeDAOInterface
	policy       AssignPolicy
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(knowledgeDAO ledgerDAO.KnowledgeDAOInterface, policy AssignPolicy) *KnowledgeService {
	return &KnowledgeService{
		knowledgeDAO: knowledgeDAO,
		policy:       policy,
	}
}

// AssignForPoolWithTx writes one knowledge row per player for the given
// pool within the caller's transaction. The mapping is total: every player
// gets exactly one of the round's two currencies.
func (ks *KnowledgeService) AssignForPoolWithTx(tx *gorm.DB, pool *models.ExperimentRound, round *models.Round, players []models.PlayerUser) error {
	playerIDs := make([]uuid.UUID, len(players))
	for i, player := range players {
		playerIDs[i] = player.ID
	}

	assignment := ks.policy(playerIDs, round.CurrencyXID, round.CurrencyYID)

	for _, playerID := range playerIDs {
		revealed, ok := assignment[playerID]
		if !ok {
			return fmt.Errorf("assignment policy left player %s without a currency", playerID)
		}
		knowledge := &models.PlayerCurrencyKnowledge{
			PlayerID:           playerID,
			ExperimentRoundID:  pool.ID,
			RevealedCurrencyID: revealed,
		}
		if err := ks.knowledgeDAO.CreateWithTx(tx, knowledge); err != nil {
			return err
		}
	}

	return nil
}

// GetForPlayer returns a player's assignment for one pool.
func (ks *KnowledgeService) GetForPlayer(playerID, poolID uuid.UUID) (*models.PlayerCurrencyKnowledge, error) {
	return ks.knowledgeDAO.Get(playerID, poolID)
}
