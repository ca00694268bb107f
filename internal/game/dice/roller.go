package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, dice values, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil; a nil logger disables logging.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// Percent draws a uniform integer in [1, 100].
func (r *Roller) Percent() int {
	return r.Roll(Percentile).Total()
}

// Chance reports whether a draw succeeds with probability p (clamped to [0, 1]),
// resolved on a d1000 so that tenths of a percent are honored.
func (r *Roller) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	n := r.src.Intn(1000)
	hit := n < int(p*1000+0.5)
	r.logger.Debug("chance roll", zap.Float64("p", p), zap.Int("draw", n), zap.Bool("hit", hit))
	return hit
}

// Pick returns a uniform index in [0, n).
//
// Precondition: n > 0.
func (r *Roller) Pick(n int) int {
	return r.src.Intn(n)
}
