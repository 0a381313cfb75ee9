package services

import (
	"fmt"
	"log"
	"time"

	"ammlab/internal/apperrors"
	experimentsDAO "ammlab/internal/dao/experiments"
	ledgerDAO "ammlab/internal/dao/ledger"
	registryDAO "ammlab/internal/dao/registry"
	roundsDAO "ammlab/internal/dao/rounds"
	"ammlab/internal/database"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateRoundParams bundles the template configuration of a new round.
type CreateRoundParams struct {
	ExperimentID    uuid.UUID
	RoundNumber     int
	IsTrainingRound bool
	CountsForPayment bool
	DurationMinutes int
	CurrencyXID     uuid.UUID
	CurrencyYID     uuid.UUID
	ExternalPriceX  decimal.Decimal
	ExternalPriceY  decimal.Decimal
	InitialReserveX decimal.Decimal
	InitialReserveY decimal.Decimal
}

// RoundService runs the round state machine and the pool lifecycle beneath
// it: template creation, bulk pool initialization, and the all-or-nothing
// activate/deactivate transitions at round start and end.
type RoundService struct {
	txm            database.TxManager
	roundDAO       roundsDAO.RoundDAOInterface
	poolDAO        roundsDAO.PoolDAOInterface
	experimentDAO  experimentsDAO.ExperimentDAOInterface
	groupDAO       experimentsDAO.GroupDAOInterface
	currencyDAO    registryDAO.CurrencyDAOInterface
	userDAO        registryDAO.UserDAOInterface
	balanceDAO     ledgerDAO.BalanceDAOInterface
	transactionDAO ledgerDAO.TransactionDAOInterface
	feedbackDAO    ledgerDAO.FeedbackDAOInterface
	knowledge      *KnowledgeService
}

// NewRoundService creates a new round service
func NewRoundService(
	txm database.TxManager,
	roundDAO roundsDAO.RoundDAOInterface,
	poolDAO roundsDAO.PoolDAOInterface,
	experimentDAO experimentsDAO.ExperimentDAOInterface,
	groupDAO experimentsDAO.GroupDAOInterface,
	currencyDAO registryDAO.CurrencyDAOInterface,
	userDAO registryDAO.UserDAOInterface,
	balanceDAO ledgerDAO.BalanceDAOInterface,
	transactionDAO ledgerDAO.TransactionDAOInterface,
	feedbackDAO ledgerDAO.FeedbackDAOInterface,
	knowledge *KnowledgeService,
) *RoundService {
	return &RoundService{
		txm:            txm,
		roundDAO:       roundDAO,
		poolDAO:        poolDAO,
		experimentDAO:  experimentDAO,
		groupDAO:       groupDAO,
		currencyDAO:    currencyDAO,
		userDAO:        userDAO,
		balanceDAO:     balanceDAO,
		transactionDAO: transactionDAO,
		feedbackDAO:    feedbackDAO,
		knowledge:      knowledge,
	}
}

// CreateRound validates the experiment and both currencies, then stores the
// immutable round template.
func (rs *RoundService) CreateRound(params CreateRoundParams) (*models.Round, error) {
	if _, err := rs.experimentDAO.GetByID(params.ExperimentID); err != nil {
		return nil, err
	}
	if _, err := rs.currencyDAO.GetByID(params.CurrencyXID); err != nil {
		return nil, err
	}
	if _, err := rs.currencyDAO.GetByID(params.CurrencyYID); err != nil {
		return nil, err
	}
	if !params.InitialReserveX.IsPositive() || !params.InitialReserveY.IsPositive() {
		return nil, fmt.Errorf("%w: initial reserves must be positive", apperrors.ErrInvalidAmount)
	}

	round := &models.Round{
		ExperimentID:     params.ExperimentID,
		RoundNumber:      params.RoundNumber,
		IsTrainingRound:  params.IsTrainingRound,
		CountsForPayment: params.CountsForPayment,
		DurationMinutes:  params.DurationMinutes,
		CurrencyXID:      params.CurrencyXID,
		CurrencyYID:      params.CurrencyYID,
		ExternalPriceX:   params.ExternalPriceX,
		ExternalPriceY:   params.ExternalPriceY,
		InitialReserveX:  params.InitialReserveX,
		InitialReserveY:  params.InitialReserveY,
	}

	if err := rs.roundDAO.Create(round); err != nil {
		return nil, err
	}

	log.Printf("Created round %d (%s) for experiment %s", round.RoundNumber, round.ID, params.ExperimentID)
	return round, nil
}

// InitializePools creates one inactive pool per group of the round's
// experiment, seeded with the template reserves and K = x0 * y0.
// Re-initializing an already-initialized round is rejected.
func (rs *RoundService) InitializePools(roundID uuid.UUID) ([]models.ExperimentRound, error) {
	round, err := rs.roundDAO.GetByID(roundID)
	if err != nil {
		return nil, err
	}

	existing, err := rs.poolDAO.CountByRound(roundID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: round %s pools are already initialized", apperrors.ErrInvalidTransition, roundID)
	}

	groups, err := rs.groupDAO.GetByExperiment(round.ExperimentID)
	if err != nil {
		return nil, err
	}

	kConstant := round.InitialReserveX.Mul(round.InitialReserveY)
	pools := make([]models.ExperimentRound, 0, len(groups))

	err = rs.txm.Transaction(func(tx *gorm.DB) error {
		for _, group := range groups {
			pool := models.ExperimentRound{
				RoundID:    roundID,
				GroupID:    group.ID,
				ReserveX:   round.InitialReserveX,
				ReserveY:   round.InitialReserveY,
				KConstant:  kConstant,
				FeePercent: decimal.Zero,
				IsActive:   false,
			}
			if err := rs.poolDAO.CreateWithTx(tx, &pool); err != nil {
				return err
			}
			pools = append(pools, pool)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Initialized %d pools for round %s", len(pools), roundID)
	return pools, nil
}

// StartRound stamps the round as started and flips every pool of the round
// to active in the same transaction: either all pools activate or none do.
// It also seeds zero balances for both currencies and assigns currency
// knowledge for every player of each group.
func (rs *RoundService) StartRound(roundID uuid.UUID) (*models.Round, error) {
	round, err := rs.roundDAO.GetByID(roundID)
	if err != nil {
		return nil, err
	}

	if round.StartedAt != nil {
		return nil, fmt.Errorf("%w: round %s has already been started", apperrors.ErrInvalidTransition, roundID)
	}

	pools, err := rs.poolDAO.GetByRound(roundID)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, fmt.Errorf("%w: round %s has no initialized pools", apperrors.ErrInvalidTransition, roundID)
	}

	now := time.Now().UTC()
	round.StartedAt = &now

	err = rs.txm.Transaction(func(tx *gorm.DB) error {
		if err := rs.roundDAO.SaveWithTx(tx, round); err != nil {
			return err
		}

		for i := range pools {
			pool := &pools[i]
			pool.IsActive = true
			pool.StartedAt = &now
			if err := rs.poolDAO.SaveWithTx(tx, pool); err != nil {
				return err
			}

			players, err := rs.userDAO.GetPlayersByGroup(pool.GroupID)
			if err != nil {
				return err
			}

			for _, player := range players {
				for _, currencyID := range []uuid.UUID{round.CurrencyXID, round.CurrencyYID} {
					balance := &models.PlayerBalance{
						PlayerID:          player.ID,
						ExperimentRoundID: pool.ID,
						CurrencyID:        currencyID,
						Balance:           decimal.Zero,
					}
					if err := rs.balanceDAO.CreateWithTx(tx, balance); err != nil {
						return err
					}
				}
			}

			if err := rs.knowledge.AssignForPoolWithTx(tx, pool, round, players); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		round.StartedAt = nil
		return nil, err
	}

	log.Printf("Started round %s, activated %d pools", roundID, len(pools))
	return round, nil
}

// EndRound stamps the round as ended and deactivates every pool in one
// transaction. Pools are never reactivated afterwards. Feedback is
// generated for every player of the round.
func (rs *RoundService) EndRound(roundID uuid.UUID) (*models.Round, error) {
	round, err := rs.roundDAO.GetByID(roundID)
	if err != nil {
		return nil, err
	}

	if round.StartedAt == nil {
		return nil, fmt.Errorf("%w: cannot end round %s before it starts", apperrors.ErrInvalidTransition, roundID)
	}
	if round.EndedAt != nil {
		return nil, fmt.Errorf("%w: round %s has already ended", apperrors.ErrInvalidTransition, roundID)
	}

	pools, err := rs.poolDAO.GetByRound(roundID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	round.EndedAt = &now

	err = rs.txm.Transaction(func(tx *gorm.DB) error {
		if err := rs.roundDAO.SaveWithTx(tx, round); err != nil {
			return err
		}

		for i := range pools {
			pool := &pools[i]
			pool.IsActive = false
			pool.EndedAt = &now
			if err := rs.poolDAO.SaveWithTx(tx, pool); err != nil {
				return err
			}

			if err := rs.generateFeedbackWithTx(tx, pool); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		round.EndedAt = nil
		return nil, err
	}

	log.Printf("Ended round %s, deactivated %d pools", roundID, len(pools))
	return round, nil
}

// generateFeedbackWithTx writes a per-player summary of the finished round.
func (rs *RoundService) generateFeedbackWithTx(tx *gorm.DB, pool *models.ExperimentRound) error {
	players, err := rs.userDAO.GetPlayersByGroup(pool.GroupID)
	if err != nil {
		return err
	}

	for _, player := range players {
		tradeCount, err := rs.transactionDAO.CountByPlayerWithTx(tx, player.ID, pool.ID)
		if err != nil {
			return err
		}

		balances, err := rs.balanceDAO.GetByPlayerAndPool(player.ID, pool.ID)
		if err != nil {
			return err
		}
		finalBalances := make(map[string]string, len(balances))
		for _, balance := range balances {
			finalBalances[balance.CurrencyID.String()] = balance.Balance.String()
		}

		feedback := &models.UserFeedback{
			PlayerID:          player.ID,
			ExperimentRoundID: pool.ID,
			FeedbackItems: models.FeedbackItems{
				TradeCount:    int(tradeCount),
				FinalBalances: finalBalances,
			},
		}
		if err := rs.feedbackDAO.CreateWithTx(tx, feedback); err != nil {
			return err
		}
	}

	return nil
}

// GetRound retrieves one round template.
func (rs *RoundService) GetRound(roundID uuid.UUID) (*models.Round, error) {
	return rs.roundDAO.GetByID(roundID)
}

// GetRoundsByExperiment lists an experiment's rounds in round order.
func (rs *RoundService) GetRoundsByExperiment(experimentID uuid.UUID) ([]models.Round, error) {
	if _, err := rs.experimentDAO.GetByID(experimentID); err != nil {
		return nil, err
	}
	return rs.roundDAO.GetByExperiment(experimentID)
}

// GetPools lists the pool instances of a round.
func (rs *RoundService) GetPools(roundID uuid.UUID) ([]models.ExperimentRound, error) {
	if _, err := rs.roundDAO.GetByID(roundID); err != nil {
		return nil, err
	}
	return rs.poolDAO.GetByRound(roundID)
}

// GetPool retrieves one pool instance.
func (rs *RoundService) GetPool(poolID uuid.UUID) (*models.ExperimentRound, error) {
	return rs.poolDAO.GetByID(poolID)
}
