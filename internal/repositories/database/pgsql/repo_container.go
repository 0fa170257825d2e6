package pgsql

import (
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgx repositories together. cacheBalances
// selects the balance strategy shared by the account and transaction
// repositories; the two must agree or the cached column drifts.
func NewRepositoryProvider(dbPool *pgxpool.Pool, cacheBalances bool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool, cacheBalances)
	categoryRepo := newPgxCategoryRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, accountRepo, categoryRepo, cacheBalances)
	planRepo := newPgxPlanRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		CategoryRepo:    categoryRepo,
		TransactionRepo: transactionRepo,
		PlanRepo:        planRepo,
		UserRepo:        userRepo,
	}
}
