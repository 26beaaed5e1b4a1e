package cartline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopcart/internal/domain"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// lineMissing reports whether err means the row cannot exist: no row matched,
// or the identifier does not even parse as a uuid.
func lineMissing(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

const lineColumns = `id::text, user_id, product_id::text, quantity, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error) {
	const q = `
INSERT INTO cart_lines (user_id, product_id, quantity)
VALUES ($1, $2, $3)
RETURNING ` + lineColumns + `
`
	line, err := r.scanLine(r.pool.QueryRow(ctx, q, userID, productID, quantity))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: user %s already has product %s", domain.ErrConflict, userID, productID)
		}
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.CartLine, error) {
	const q = `
SELECT ` + lineColumns + `
FROM cart_lines
WHERE id = $1
`
	line, err := r.scanLine(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if lineMissing(err) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) GetByUserProduct(ctx context.Context, userID, productID string) (*domain.CartLine, error) {
	const q = `
SELECT ` + lineColumns + `
FROM cart_lines
WHERE user_id = $1 AND product_id = $2
`
	line, err := r.scanLine(r.pool.QueryRow(ctx, q, userID, productID))
	if err != nil {
		if lineMissing(err) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const q = `
SELECT ` + lineColumns + `
FROM cart_lines
WHERE user_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.UserID,
			&line.ProductID,
			&line.Quantity,
			&line.CreatedAt,
			&line.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error) {
	const q = `
UPDATE cart_lines
SET quantity = $1, updated_at = now()
WHERE id = $2
RETURNING ` + lineColumns + `
`
	line, err := r.scanLine(r.pool.QueryRow(ctx, q, quantity, id))
	if err != nil {
		if lineMissing(err) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, id)
	if err != nil {
		if lineMissing(err) {
			return domain.ErrCartItemNotFound
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) CountLines(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cart_lines WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *postgresRepo) SumQuantity(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM cart_lines WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// SumTotalCents values each line at the product's current effective price,
// mirroring domain.Product.EffectivePriceCents. LEAST ignores a NULL sale
// price, so the expression falls back to the list price.
func (r *postgresRepo) SumTotalCents(ctx context.Context, userID string) (int64, error) {
	const q = `
SELECT COALESCE(SUM(cl.quantity * LEAST(p.sale_price_cents, p.price_cents)), 0)
FROM cart_lines cl
JOIN products p ON p.id = cl.product_id
WHERE cl.user_id = $1
`
	var total int64
	err := r.pool.QueryRow(ctx, q, userID).Scan(&total)
	return total, err
}

func (r *postgresRepo) scanLine(row pgx.Row) (*domain.CartLine, error) {
	var line domain.CartLine
	if err := row.Scan(
		&line.ID,
		&line.UserID,
		&line.ProductID,
		&line.Quantity,
		&line.CreatedAt,
		&line.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &line, nil
}
