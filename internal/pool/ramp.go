package pool

import (
	"fmt"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// CurrentAmpGamma returns the interpolated curve parameters at time now.
// Before the window it is the initial pair, after it the future pair, and
// in between each component moves linearly with elapsed time.
func CurrentAmpGamma(r model.Ramp, now uint64) model.AmpGamma {
	if now <= r.InitialTime || r.FutureTime <= r.InitialTime {
		return r.Initial
	}
	if now >= r.FutureTime {
		return r.Future
	}
	total := int64(r.FutureTime - r.InitialTime)
	elapsed := int64(now - r.InitialTime)
	return model.AmpGamma{
		Amp:   lerp(r.Initial.Amp, r.Future.Amp, elapsed, total),
		Gamma: lerp(r.Initial.Gamma, r.Future.Gamma, elapsed, total),
	}
}

func lerp(from, to curve.Dec, elapsed, total int64) curve.Dec {
	return from.Add(to.Sub(from).MulInt64(elapsed).QuoInt64(total))
}

// PromoteParams starts a new ramp towards next, finishing at futureTime.
// Rejected without mutation when the cooldown since the previous ramp start
// has not elapsed, when the window is shorter than the minimum, when next
// is out of bounds, or when either parameter would change by more than
// MaxParamChange in one ramp.
func PromoteParams(cfg *model.Config, next model.AmpGamma, futureTime, now uint64) error {
	if err := ValidateAmpGamma(next); err != nil {
		return err
	}
	if now < cfg.Ramp.InitialTime+MinRampTime {
		return ErrRampCooldown
	}
	if futureTime < now+MinRampTime {
		return fmt.Errorf("ramp end must be at least %d seconds in the future", MinRampTime)
	}

	current := CurrentAmpGamma(cfg.Ramp, now)
	if err := checkChangeFactor("amp", current.Amp, next.Amp); err != nil {
		return err
	}
	if err := checkChangeFactor("gamma", current.Gamma, next.Gamma); err != nil {
		return err
	}

	cfg.Ramp = model.Ramp{
		Initial:     current,
		Future:      next,
		InitialTime: now,
		FutureTime:  futureTime,
	}
	return nil
}

// StopRamp freezes amp/gamma at their current interpolated values.
func StopRamp(cfg *model.Config, now uint64) {
	current := CurrentAmpGamma(cfg.Ramp, now)
	cfg.Ramp = model.Ramp{
		Initial:     current,
		Future:      current,
		InitialTime: now,
		FutureTime:  now,
	}
}

func checkChangeFactor(name string, from, to curve.Dec) error {
	lo, hi := from, to
	if hi.LT(lo) {
		lo, hi = hi, lo
	}
	if lo.IsZero() || hi.GT(lo.MulInt64(MaxParamChange)) {
		return &MaxChangeError{Name: name, Factor: MaxParamChange}
	}
	return nil
}
