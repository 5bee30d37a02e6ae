package account_fx

import (
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"wander/internal/repositories"
	"wander/internal/services"
	"wander/pkg/expiry"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideAccountService(
	accountRepo repositories.AccountRepository,
	mailService services.IMailService,
	scheduler *expiry.Scheduler,
	now func() time.Time,
) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, mailService, scheduler, now)
}
