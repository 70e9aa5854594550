package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/servicedesk-api/internal/application/pendency"
	"github.com/jhoicas/servicedesk-api/internal/application/usecase"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var (
	_ usecase.AdminTxRunner        = (*TxRunner)(nil)
	_ usecase.OrganizationTxRunner = (*TxRunner)(nil)
	_ pendency.TxRunner            = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// inTx inicia la transacción, ejecuta fn y hace Commit; cualquier error (o ctx cancelado) provoca Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunAdmin usuarios y papeles (alta + papeles, reemplazo de permisos, bajas con chequeo de referencias).
func (r *TxRunner) RunAdmin(ctx context.Context, fn func(
	users repository.UserRepository,
	roles repository.RoleRepository,
	employees repository.EmployeeRepository,
	pendencies repository.PendencyRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewUserRepository(tx), NewRoleRepository(tx), NewEmployeeRepository(tx), NewPendencyRepository(tx))
	})
}

// RunOrganization sectores, cargos (con sus sectores permitidos) y funcionarios.
func (r *TxRunner) RunOrganization(ctx context.Context, fn func(
	sectors repository.SectorRepository,
	positions repository.PositionRepository,
	employees repository.EmployeeRepository,
	pendencies repository.PendencyRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewSectorRepository(tx), NewPositionRepository(tx), NewEmployeeRepository(tx), NewPendencyRepository(tx))
	})
}

// RunWorkflow OS + pendencia vinculada como unidad atómica.
func (r *TxRunner) RunWorkflow(ctx context.Context, fn func(
	orders repository.ServiceOrderRepository,
	pendencies repository.PendencyRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewServiceOrderRepository(tx), NewPendencyRepository(tx))
	})
}
