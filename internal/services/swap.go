package services

import (
	"fmt"
	"log"
	"sync"

	"ammlab/internal/apperrors"
	ledgerDAO "ammlab/internal/dao/ledger"
	registryDAO "ammlab/internal/dao/registry"
	roundsDAO "ammlab/internal/dao/rounds"
	"ammlab/internal/database"
	poolEngine "ammlab/internal/engines/pool"
	"ammlab/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SwapResult reports what a committed swap produced.
type SwapResult struct {
	Transaction *models.Transaction `json:"transaction"`
	AmountOut   decimal.Decimal     `json:"amount_out"`
	PriceRatio  decimal.Decimal     `json:"price_ratio"`
}

// SwapService executes player swaps: it serializes mutations per pool,
// runs the invariant engine on a working copy of the reserves, and commits
// reserve write, ledger append and balance updates as one unit. Nothing is
// observable of a swap that failed partway.
type SwapService struct {
	txm            database.TxManager
	poolDAO        roundsDAO.PoolDAOInterface
	roundDAO       roundsDAO.RoundDAOInterface
	transactionDAO ledgerDAO.TransactionDAOInterface
	balanceDAO     ledgerDAO.BalanceDAOInterface
	userDAO        registryDAO.UserDAOInterface

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewSwapService creates a new swap service
func NewSwapService(
	txm database.TxManager,
	poolDAO roundsDAO.PoolDAOInterface,
	roundDAO roundsDAO.RoundDAOInterface,
	transactionDAO ledgerDAO.TransactionDAOInterface,
	balanceDAO ledgerDAO.BalanceDAOInterface,
	userDAO registryDAO.UserDAOInterface,
) *SwapService {
	return &SwapService{
		txm:            txm,
		poolDAO:        poolDAO,
		roundDAO:       roundDAO,
		transactionDAO: transactionDAO,
		balanceDAO:     balanceDAO,
		userDAO:        userDAO,
		locks:          make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one pool. Swaps against different
// pools are fully independent; swaps against the same pool serialize here,
// from the reserve read until the commit.
func (ss *SwapService) lockFor(poolID uuid.UUID) *sync.Mutex {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	lock, ok := ss.locks[poolID]
	if !ok {
		lock = &sync.Mutex{}
		ss.locks[poolID] = lock
	}
	return lock
}

// Swap executes one swap against a pool. minAmountOut of zero disables the
// slippage guard. The swap either commits fully — reserves, transaction
// record and both balance legs — or fails with no effect.
func (ss *SwapService) Swap(poolID, playerID uuid.UUID, direction models.SwapDirection, amountIn, minAmountOut decimal.Decimal) (*SwapResult, error) {
	if !amountIn.IsPositive() {
		return nil, fmt.Errorf("%w: swap input must be positive, got %s", apperrors.ErrInvalidAmount, amountIn)
	}

	lock := ss.lockFor(poolID)
	lock.Lock()
	defer lock.Unlock()

	pool, err := ss.poolDAO.GetByID(poolID)
	if err != nil {
		return nil, err
	}
	if !pool.IsActive {
		return nil, fmt.Errorf("%w: pool %s is not active", apperrors.ErrInvalidTransition, poolID)
	}

	if _, err := ss.userDAO.GetPlayerByID(playerID); err != nil {
		return nil, err
	}

	round, err := ss.roundDAO.GetByID(pool.RoundID)
	if err != nil {
		return nil, err
	}

	var currencyIn, currencyOut uuid.UUID
	switch direction {
	case models.SwapXForY:
		currencyIn, currencyOut = round.CurrencyXID, round.CurrencyYID
	case models.SwapYForX:
		currencyIn, currencyOut = round.CurrencyYID, round.CurrencyXID
	default:
		return nil, fmt.Errorf("%w: unknown swap direction %q", apperrors.ErrInvalidAmount, direction)
	}

	// The flat fee is taken off the input before it reaches the pool.
	effectiveIn := amountIn
	if pool.FeePercent.IsPositive() {
		feeFactor := decimal.NewFromInt(100).Sub(pool.FeePercent).Div(decimal.NewFromInt(100))
		effectiveIn = amountIn.Mul(feeFactor).RoundDown(poolEngine.AmountScale)
		if !effectiveIn.IsPositive() {
			return nil, fmt.Errorf("%w: input %s is consumed entirely by the fee", apperrors.ErrInvalidAmount, amountIn)
		}
	}

	// Run the engine on a working copy; the pool row is only touched once
	// the whole unit commits.
	state := poolEngine.State{
		ReserveX: pool.ReserveX,
		ReserveY: pool.ReserveY,
		K:        pool.KConstant,
	}

	var amountOut decimal.Decimal
	switch direction {
	case models.SwapXForY:
		amountOut, err = state.SwapXForY(effectiveIn)
	case models.SwapYForX:
		amountOut, err = state.SwapYForX(effectiveIn)
	}
	if err != nil {
		return nil, err
	}

	if minAmountOut.IsPositive() && amountOut.LessThan(minAmountOut) {
		return nil, fmt.Errorf("%w: output %s below minimum %s", apperrors.ErrSlippageExceeded, amountOut, minAmountOut)
	}

	priceRatio := amountOut.DivRound(amountIn, poolEngine.AmountScale)
	txn := &models.Transaction{
		ExperimentRoundID: poolID,
		PlayerID:          playerID,
		CurrencyInID:      currencyIn,
		AmountIn:          amountIn,
		CurrencyOutID:     currencyOut,
		AmountOut:         amountOut,
		PriceRatio:        priceRatio,
		HasCompleted:      true,
	}

	err = ss.txm.Transaction(func(tx *gorm.DB) error {
		inBalance, err := ss.balanceDAO.GetWithTx(tx, playerID, poolID, currencyIn)
		if err != nil {
			return err
		}
		if inBalance.Balance.LessThan(amountIn) {
			return fmt.Errorf("%w: balance %s is less than swap input %s", apperrors.ErrInsufficientBalance, inBalance.Balance, amountIn)
		}
		inBalance.Balance = inBalance.Balance.Sub(amountIn)
		if err := ss.balanceDAO.SaveWithTx(tx, inBalance); err != nil {
			return err
		}

		outBalance, err := ss.balanceDAO.GetWithTx(tx, playerID, poolID, currencyOut)
		if err != nil {
			return err
		}
		outBalance.Balance = outBalance.Balance.Add(amountOut)
		if err := ss.balanceDAO.SaveWithTx(tx, outBalance); err != nil {
			return err
		}

		pool.ReserveX = state.ReserveX
		pool.ReserveY = state.ReserveY
		if err := ss.poolDAO.SaveWithTx(tx, pool); err != nil {
			return err
		}

		return ss.transactionDAO.CreateWithTx(tx, txn)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Swap %s: pool %s player %s %s in=%s out=%s", txn.ID, poolID, playerID, direction, amountIn, amountOut)

	return &SwapResult{
		Transaction: txn,
		AmountOut:   amountOut,
		PriceRatio:  priceRatio,
	}, nil
}

// GetTransactionsByPool lists a pool's transactions, newest first.
func (ss *SwapService) GetTransactionsByPool(poolID uuid.UUID, skip, limit int) ([]models.Transaction, error) {
	if _, err := ss.poolDAO.GetByID(poolID); err != nil {
		return nil, err
	}
	return ss.transactionDAO.GetByPool(poolID, skip, limit)
}

// GetTransactionsByPlayer lists one player's transactions in a pool.
func (ss *SwapService) GetTransactionsByPlayer(playerID, poolID uuid.UUID, skip, limit int) ([]models.Transaction, error) {
	return ss.transactionDAO.GetByPlayer(playerID, poolID, skip, limit)
}

// GetBalances lists a player's balances in one pool.
func (ss *SwapService) GetBalances(playerID, poolID uuid.UUID) ([]models.PlayerBalance, error) {
	return ss.balanceDAO.GetByPlayerAndPool(playerID, poolID)
}
