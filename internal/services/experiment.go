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
	"gorm.io/gorm"
)

// ExperimentService orchestrates the experiment lifecycle: creation with
// its groups, the once-only started/ended transitions, and transactional
// cascade deletion.
type ExperimentService struct {
	txm            database.TxManager
	experimentDAO  experimentsDAO.ExperimentDAOInterface
	groupDAO       experimentsDAO.GroupDAOInterface
	roundDAO       roundsDAO.RoundDAOInterface
	poolDAO        roundsDAO.PoolDAOInterface
	transactionDAO ledgerDAO.TransactionDAOInterface
	balanceDAO     ledgerDAO.BalanceDAOInterface
	knowledgeDAO   ledgerDAO.KnowledgeDAOInterface
	feedbackDAO    ledgerDAO.FeedbackDAOInterface
	userDAO        registryDAO.UserDAOInterface
}

// NewExperimentService creates a new experiment service
func NewExperimentService(
	txm database.TxManager,
	experimentDAO experimentsDAO.ExperimentDAOInterface,
	groupDAO experimentsDAO.GroupDAOInterface,
	roundDAO roundsDAO.RoundDAOInterface,
	poolDAO roundsDAO.PoolDAOInterface,
	transactionDAO ledgerDAO.TransactionDAOInterface,
	balanceDAO ledgerDAO.BalanceDAOInterface,
	knowledgeDAO ledgerDAO.KnowledgeDAOInterface,
	feedbackDAO ledgerDAO.FeedbackDAOInterface,
	userDAO registryDAO.UserDAOInterface,
) *ExperimentService {
	return &ExperimentService{
		txm:            txm,
		experimentDAO:  experimentDAO,
		groupDAO:       groupDAO,
		roundDAO:       roundDAO,
		poolDAO:        poolDAO,
		transactionDAO: transactionDAO,
		balanceDAO:     balanceDAO,
		knowledgeDAO:   knowledgeDAO,
		feedbackDAO:    feedbackDAO,
		userDAO:        userDAO,
	}
}

// CreateExperiment creates an experiment and its groups numbered 1..N in
// one transaction. Groups are never created independently afterwards.
func (es *ExperimentService) CreateExperiment(name string, adminID uuid.UUID, numRounds, numTrainingRounds, numRoundsForPayment, numPlayers, numGroups int) (*models.Experiment, error) {
	if _, err := es.userDAO.GetAdminByID(adminID); err != nil {
		return nil, err
	}
	if numGroups <= 0 {
		return nil, fmt.Errorf("%w: experiment needs at least one group", apperrors.ErrInvalidAmount)
	}

	experiment := &models.Experiment{
		Name:                name,
		AdminID:             adminID,
		NumRounds:           numRounds,
		NumTrainingRounds:   numTrainingRounds,
		NumRoundsForPayment: numRoundsForPayment,
		NumPlayers:          numPlayers,
		NumGroups:           numGroups,
	}

	err := es.txm.Transaction(func(tx *gorm.DB) error {
		if err := es.experimentDAO.CreateWithTx(tx, experiment); err != nil {
			return err
		}
		for groupNum := 1; groupNum <= numGroups; groupNum++ {
			group := &models.Group{
				ExperimentID: experiment.ID,
				GroupNumber:  groupNum,
			}
			if err := es.groupDAO.CreateWithTx(tx, group); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Created experiment %s (%q) with %d groups", experiment.ID, name, numGroups)
	return experiment, nil
}

// StartExperiment stamps started_at, exactly once.
func (es *ExperimentService) StartExperiment(experimentID uuid.UUID) (*models.Experiment, error) {
	experiment, err := es.experimentDAO.GetByID(experimentID)
	if err != nil {
		return nil, err
	}

	if experiment.StartedAt != nil {
		return nil, fmt.Errorf("%w: experiment %s has already been started", apperrors.ErrInvalidTransition, experimentID)
	}

	now := time.Now().UTC()
	experiment.StartedAt = &now
	if err := es.experimentDAO.Save(experiment); err != nil {
		return nil, err
	}

	log.Printf("Started experiment %s", experimentID)
	return experiment, nil
}

// EndExperiment stamps ended_at, exactly once, and only after a start.
func (es *ExperimentService) EndExperiment(experimentID uuid.UUID) (*models.Experiment, error) {
	experiment, err := es.experimentDAO.GetByID(experimentID)
	if err != nil {
		return nil, err
	}

	if experiment.StartedAt == nil {
		return nil, fmt.Errorf("%w: cannot end experiment %s before it starts", apperrors.ErrInvalidTransition, experimentID)
	}
	if experiment.EndedAt != nil {
		return nil, fmt.Errorf("%w: experiment %s has already ended", apperrors.ErrInvalidTransition, experimentID)
	}

	now := time.Now().UTC()
	experiment.EndedAt = &now
	if err := es.experimentDAO.Save(experiment); err != nil {
		return nil, err
	}

	log.Printf("Ended experiment %s", experimentID)
	return experiment, nil
}

// DeleteExperiment removes the experiment and everything it owns — rounds,
// groups, pool instances, transactions, balances, knowledge and feedback —
// as one explicit transactional fan-out. Partial deletion is never
// observable.
func (es *ExperimentService) DeleteExperiment(experimentID uuid.UUID) error {
	if _, err := es.experimentDAO.GetByID(experimentID); err != nil {
		return err
	}

	rounds, err := es.roundDAO.GetByExperiment(experimentID)
	if err != nil {
		return err
	}

	roundIDs := make([]uuid.UUID, len(rounds))
	var poolIDs []uuid.UUID
	for i, round := range rounds {
		roundIDs[i] = round.ID
		pools, err := es.poolDAO.GetByRound(round.ID)
		if err != nil {
			return err
		}
		for _, pool := range pools {
			poolIDs = append(poolIDs, pool.ID)
		}
	}

	err = es.txm.Transaction(func(tx *gorm.DB) error {
		if err := es.knowledgeDAO.DeleteByPoolsWithTx(tx, poolIDs); err != nil {
			return err
		}
		if err := es.feedbackDAO.DeleteByPoolsWithTx(tx, poolIDs); err != nil {
			return err
		}
		if err := es.balanceDAO.DeleteByPoolsWithTx(tx, poolIDs); err != nil {
			return err
		}
		if err := es.transactionDAO.DeleteByPoolsWithTx(tx, poolIDs); err != nil {
			return err
		}
		if err := es.poolDAO.DeleteByRoundsWithTx(tx, roundIDs); err != nil {
			return err
		}
		if err := es.roundDAO.DeleteByExperimentWithTx(tx, experimentID); err != nil {
			return err
		}
		if err := es.groupDAO.DeleteByExperimentWithTx(tx, experimentID); err != nil {
			return err
		}
		return es.experimentDAO.DeleteWithTx(tx, experimentID)
	})
	if err != nil {
		return err
	}

	log.Printf("Deleted experiment %s with %d rounds and %d pools", experimentID, len(roundIDs), len(poolIDs))
	return nil
}

// GetExperiment retrieves one experiment.
func (es *ExperimentService) GetExperiment(experimentID uuid.UUID) (*models.Experiment, error) {
	return es.experimentDAO.GetByID(experimentID)
}

// ListExperiments retrieves experiments with pagination.
func (es *ExperimentService) ListExperiments(skip, limit int) ([]models.Experiment, error) {
	return es.experimentDAO.List(skip, limit)
}

// GetGroups gets an experiment's groups.
func (es *ExperimentService) GetGroups(experimentID uuid.UUID) ([]models.Group, error) {
	if _, err := es.experimentDAO.GetByID(experimentID); err != nil {
		return nil, err
	}
	return es.groupDAO.GetByExperiment(experimentID)
}
