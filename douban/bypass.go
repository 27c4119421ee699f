package douban

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cinesort/cinesort/config"
	"github.com/cinesort/cinesort/models"
)

// resolve fetches rawURL and drives the challenge loop until a content page
// comes back or the cycle budget runs out. Transport errors are returned
// immediately and never retried; only gate pages trigger another cycle.
func resolve(ctx context.Context, f Fetcher, rawURL string, cfg config.DoubanConfig) (*RawResult, error) {
	for cycle := 0; ; cycle++ {
		res, err := f.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		ch := Detect(res.HTML)
		if ch == nil {
			if cycle > 0 {
				slog.Info("challenge bypassed", "url", rawURL, "cycles", cycle)
			}
			return res, nil
		}

		if cycle >= cfg.MaxChallengeCycles {
			return nil, models.NewAppError(models.ErrCodeGaveUp, "challenge cycles exhausted", nil)
		}

		token, err := Solve(ch)
		if err != nil {
			// A malformed gate still burns a cycle; the page is re-requested
			// in case the site serves a solvable variant next time.
			slog.Warn("challenge not solvable", "url", rawURL, "cycle", cycle, "error", err)
		} else {
			f.SetCookie(token.Name, token.Value)
			slog.Debug("proof computed", "cookie", token.Name, "cycle", cycle)
		}

		if err := sleepJitter(ctx, cfg.MinChallengeDelay, cfg.MaxChallengeDelay); err != nil {
			return nil, models.NewAppError(models.ErrCodeTimeout, "canceled during challenge delay", err)
		}
	}
}

// sleepJitter pauses for a random duration in [min, max], mimicking the pace
// of a human retrying a page. Returns early if ctx is canceled. A non-positive
// range skips the pause entirely.
func sleepJitter(ctx context.Context, min, max time.Duration) error {
	d := min
	if span := max - min; span > 0 {
		d += time.Duration(rand.Int64N(int64(span) + 1))
	}
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
