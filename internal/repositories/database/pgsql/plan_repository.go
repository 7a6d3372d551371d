package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	"github.com/cryptonest/cryptonest_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPlanRepository struct {
	BaseRepository
}

// newPgxPlanRepository creates a new repository for the plan catalog.
func newPgxPlanRepository(pool *pgxpool.Pool) portsrepo.PlanRepositoryFacade {
	return &PgxPlanRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PlanRepositoryFacade = (*PgxPlanRepository)(nil)

func toDomainPlan(m models.Plan) domain.Plan {
	return domain.Plan{
		PlanKey:      domain.PlanKey(m.PlanKey),
		Name:         m.Name,
		MinAmount:    m.MinAmount,
		MaxAmount:    m.MaxAmount,
		InterestRate: m.InterestRate,
		DurationDays: m.DurationDays,
		IsActive:     m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const planColumns = `plan_key, name, min_amount, max_amount, interest_rate, duration_days, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanPlan(row pgx.Row) (*domain.Plan, error) {
	var m models.Plan
	err := row.Scan(
		&m.PlanKey,
		&m.Name,
		&m.MinAmount,
		&m.MaxAmount,
		&m.InterestRate,
		&m.DurationDays,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	p := toDomainPlan(m)
	return &p, nil
}

// FindPlanByKey retrieves a plan by its tier key.
func (r *PgxPlanRepository) FindPlanByKey(ctx context.Context, planKey domain.PlanKey) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE plan_key = $1;`
	p, err := scanPlan(r.Pool.QueryRow(ctx, query, string(planKey)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find plan %s: %w", planKey, err)
	}
	return p, nil
}

// ListPlans retrieves all plans, optionally including retired ones.
func (r *PgxPlanRepository) ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE is_active = TRUE OR $1 ORDER BY min_amount;`

	rows, err := r.Pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	plans := []domain.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		plans = append(plans, *p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating plan rows: %w", rows.Err())
	}
	return plans, nil
}

// UpsertPlans inserts or updates plans by key using a single batch.
// Re-running with identical definitions leaves the table unchanged apart
// from the audit timestamp, which is only bumped on actual inserts.
func (r *PgxPlanRepository) UpsertPlans(ctx context.Context, plans []domain.Plan) error {
	if len(plans) == 0 {
		return nil
	}

	query := `
		INSERT INTO plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (plan_key) DO NOTHING;
	`

	batch := &pgx.Batch{}
	for _, p := range plans {
		batch.Queue(query,
			string(p.PlanKey),
			p.Name,
			p.MinAmount,
			p.MaxAmount,
			p.InterestRate,
			p.DurationDays,
			p.IsActive,
			p.CreatedAt,
			p.CreatedBy,
			p.LastUpdatedAt,
			p.LastUpdatedBy,
		)
	}

	br := r.Pool.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to upsert plan %s: %w", plans[i].PlanKey, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close plan upsert batch: %w", err)
	}
	return batchErr
}

// UpdatePlan updates an existing plan's attributes.
func (r *PgxPlanRepository) UpdatePlan(ctx context.Context, plan domain.Plan) error {
	query := `
		UPDATE plans
		SET name = $2, min_amount = $3, max_amount = $4, interest_rate = $5,
		    duration_days = $6, is_active = $7, last_updated_at = $8, last_updated_by = $9
		WHERE plan_key = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		string(plan.PlanKey),
		plan.Name,
		plan.MinAmount,
		plan.MaxAmount,
		plan.InterestRate,
		plan.DurationDays,
		plan.IsActive,
		plan.LastUpdatedAt,
		plan.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan %s: %w", plan.PlanKey, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
