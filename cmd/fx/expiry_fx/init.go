package expiry_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"wander/internal/repositories"
	"wander/pkg/expiry"
)

var Module = fx.Options(
	fx.Provide(provideScheduler, provideClock),
	fx.Provide(func() func() time.Time { return time.Now }),
)

func provideClock() expiry.Clock {
	return expiry.SystemClock()
}

// provideScheduler constructs the process-wide expiry scheduler and ties
// its shutdown to the fx lifecycle.
func provideScheduler(lc fx.Lifecycle, accountRepo repositories.AccountRepository, clock expiry.Clock) *expiry.Scheduler {
	scheduler := expiry.NewScheduler(accountRepo, expiry.WithClock(clock))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})

	return scheduler
}
