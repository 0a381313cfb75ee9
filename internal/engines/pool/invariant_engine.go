package pool

import (
	"fmt"

	"ammlab/internal/apperrors"

	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the fixed-point scale for reserves and swap amounts.
	AmountScale = 8
	// KScale is the fixed-point scale for the invariant constant. The extra
	// digits absorb the precision loss of the K / reserve division inside a
	// swap.
	KScale = 16
)

// State holds one pool's reserves and invariant constant. The engine is
// pure arithmetic over a State; it knows nothing about lifecycle, players
// or persistence.
type State struct {
	ReserveX decimal.Decimal
	ReserveY decimal.Decimal
	K        decimal.Decimal
}

// NewState seeds a pool state and derives K = x * y.
func NewState(reserveX, reserveY decimal.Decimal) State {
	return State{
		ReserveX: reserveX,
		ReserveY: reserveY,
		K:        reserveX.Mul(reserveY),
	}
}

// PriceXInY returns the instantaneous price of 1 unit of X in terms of Y
// (y/x). An empty pool has no defined price and reports zero.
func (s *State) PriceXInY() decimal.Decimal {
	if s.ReserveX.IsZero() {
		return decimal.Zero
	}
	return s.ReserveY.DivRound(s.ReserveX, AmountScale)
}

// PriceYInX returns the instantaneous price of 1 unit of Y in terms of X
// (x/y), zero when the Y reserve is empty.
func (s *State) PriceYInX() decimal.Decimal {
	if s.ReserveY.IsZero() {
		return decimal.Zero
	}
	return s.ReserveX.DivRound(s.ReserveY, AmountScale)
}

// SwapXForY sends dx units of X into the pool and returns the amount of Y
// paid out. K is held fixed for the duration of the swap: the new Y reserve
// is solved from (x + dx) * yNew = K. Recomputing K from the mutated
// reserves instead would compound rounding drift across successive swaps,
// so K only changes on explicit liquidity operations.
func (s *State) SwapXForY(dx decimal.Decimal) (decimal.Decimal, error) {
	if !dx.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: swap input must be positive, got %s", apperrors.ErrInvalidAmount, dx)
	}

	xNew := s.ReserveX.Add(dx)
	// Solve at K precision, then snap the reserve up to the amount scale so
	// the payout never exceeds what the invariant allows.
	yNew := s.K.DivRound(xNew, KScale).RoundCeil(AmountScale)
	dy := s.ReserveY.Sub(yNew)

	if !yNew.IsPositive() || !dy.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: swap of %s would drain the Y reserve (%s)", apperrors.ErrInsufficientLiquidity, dx, s.ReserveY)
	}

	s.ReserveX = xNew
	s.ReserveY = yNew

	return dy, nil
}

// SwapYForX is the symmetric operation: dy units of Y in, X out, solving
// xNew * (y + dy) = K with K fixed.
func (s *State) SwapYForX(dy decimal.Decimal) (decimal.Decimal, error) {
	if !dy.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: swap input must be positive, got %s", apperrors.ErrInvalidAmount, dy)
	}

	yNew := s.ReserveY.Add(dy)
	xNew := s.K.DivRound(yNew, KScale).RoundCeil(AmountScale)
	dx := s.ReserveX.Sub(xNew)

	if !xNew.IsPositive() || !dx.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: swap of %s would drain the X reserve (%s)", apperrors.ErrInsufficientLiquidity, dy, s.ReserveX)
	}

	s.ReserveY = yNew
	s.ReserveX = xNew

	return dx, nil
}

// AddLiquidity increases both reserves and recomputes K. Management-only;
// this is one of the two paths that may legitimately change the invariant
// constant.
func (s *State) AddLiquidity(dx, dy decimal.Decimal) error {
	if dx.IsNegative() || dy.IsNegative() {
		return fmt.Errorf("%w: liquidity amounts must be non-negative", apperrors.ErrInvalidAmount)
	}

	s.ReserveX = s.ReserveX.Add(dx)
	s.ReserveY = s.ReserveY.Add(dy)
	s.K = s.ReserveX.Mul(s.ReserveY)
	return nil
}

// RemoveLiquidity decreases both reserves and recomputes K. Fails if either
// reserve would go negative.
func (s *State) RemoveLiquidity(dx, dy decimal.Decimal) error {
	if dx.IsNegative() || dy.IsNegative() {
		return fmt.Errorf("%w: liquidity amounts must be non-negative", apperrors.ErrInvalidAmount)
	}
	if s.ReserveX.LessThan(dx) || s.ReserveY.LessThan(dy) {
		return fmt.Errorf("%w: reserves (%s, %s) too small to remove (%s, %s)", apperrors.ErrInsufficientLiquidity, s.ReserveX, s.ReserveY, dx, dy)
	}

	s.ReserveX = s.ReserveX.Sub(dx)
	s.ReserveY = s.ReserveY.Sub(dy)
	s.K = s.ReserveX.Mul(s.ReserveY)
	return nil
}

// InvariantHolds reports whether ReserveX * ReserveY still equals K within
// the fixed-point rounding tolerance. One unit in the last amount digit of
// either reserve shifts the product by up to the opposite reserve, so the
// tolerance scales with reserve magnitude.
func (s *State) InvariantHolds() bool {
	tolerance := s.ReserveX.Add(s.ReserveY).Add(decimal.New(1, 0)).Mul(decimal.New(1, -AmountScale))
	return s.ReserveX.Mul(s.ReserveY).Sub(s.K).Abs().LessThanOrEqual(tolerance)
}
