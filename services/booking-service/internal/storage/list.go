package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// listQuery describes a paginated single-table list.
type listQuery struct {
	schema  model.Schema
	table   string
	columns string
	// base is ANDed with the caller's filter; empty means none.
	base string
}

func listPage[T any](ctx context.Context, q db.Querier, lq listQuery, loc *time.Location, expr filter.Expr, page filter.Page, scan func(pgx.Row) (T, error)) ([]T, int, error) {
	b := filter.NewBuilder(lq.schema, loc)
	where, err := b.Where(expr)
	if err != nil {
		return nil, 0, err
	}
	if lq.base != "" {
		where += " AND " + lq.base
	}

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM `+lq.table+` WHERE `+where, b.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", lq.table, err)
	}

	limit, offset := b.Arg(page.Limit()), b.Arg(page.Offset())
	rows, err := q.Query(ctx, `SELECT `+lq.columns+` FROM `+lq.table+`
		WHERE `+where+`
		ORDER BY `+page.OrderBy+`
		LIMIT `+limit+` OFFSET `+offset, b.Args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows, scan)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
