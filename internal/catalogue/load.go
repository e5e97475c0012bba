package catalogue

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

type configurationRow struct {
	ID            int64
	Name          string
	Description   sql.NullString
	RootContainer sql.NullInt64
}

type containerRow struct {
	ID    int64
	Name  string
	Order int64
}

type linkRow struct {
	Parent int64
	Child  int64
	Order  int64
}

type aggregateRow struct {
	ID         int64
	Name       string
	RootFilter sql.NullInt64
}

type filterContainerRow struct {
	ID        int64
	Operation string
}

type filterRow struct {
	ID        int64
	Name      string
	Container sql.NullInt64
}

type joinableRow struct {
	ID            int64
	Configuration int64
	Aggregate     int64
}

// rowSet holds every catalogue row the tree assembly needs.
type rowSet struct {
	configurations     []configurationRow
	containers         []containerRow
	subContainers      []linkRow
	containerAggs      []linkRow
	aggregates         []aggregateRow
	filterContainers   []filterContainerRow
	filterSubContainer []linkRow
	filters            []filterRow
	joinables          []joinableRow
}

func (s *Store) load(ctx context.Context) (*rowSet, error) {
	var snap rowSet
	var err error

	if snap.configurations, err = queryAll(ctx, s.db,
		s.builder.Select("ID", "Name", "Description", columnRootContainerID).
			From(tableConfiguration).OrderBy("ID"),
		func(r *sql.Rows) (row configurationRow, err error) {
			err = r.Scan(&row.ID, &row.Name, &row.Description, &row.RootContainer)
			return
		}); err != nil {
		return nil, err
	}

	if snap.containers, err = queryAll(ctx, s.db,
		s.builder.Select("ID", "Name", s.quote(columnOrder)).
			From(tableContainer).OrderBy("ID"),
		func(r *sql.Rows) (row containerRow, err error) {
			err = r.Scan(&row.ID, &row.Name, &row.Order)
			return
		}); err != nil {
		return nil, err
	}

	// Sub-container order comes from the child container row, so the link
	// table carries none.
	if snap.subContainers, err = queryAll(ctx, s.db,
		s.builder.Select(columnContainerParentID, columnContainerChildID).
			From(tableSubContainer).OrderBy(columnContainerParentID, columnContainerChildID),
		func(r *sql.Rows) (row linkRow, err error) {
			err = r.Scan(&row.Parent, &row.Child)
			return
		}); err != nil {
		return nil, err
	}

	if snap.containerAggs, err = queryAll(ctx, s.db,
		s.builder.Select(columnContainerID, columnAggregateID, s.quote(columnOrder)).
			From(tableContainerAggregate).OrderBy(columnContainerID, columnAggregateID),
		func(r *sql.Rows) (row linkRow, err error) {
			err = r.Scan(&row.Parent, &row.Child, &row.Order)
			return
		}); err != nil {
		return nil, err
	}

	if snap.aggregates, err = queryAll(ctx, s.db,
		s.builder.Select("ID", "Name", columnRootFilterID).
			From(tableAggregate).OrderBy("ID"),
		func(r *sql.Rows) (row aggregateRow, err error) {
			err = r.Scan(&row.ID, &row.Name, &row.RootFilter)
			return
		}); err != nil {
		return nil, err
	}

	if snap.filterContainers, err = queryAll(ctx, s.db,
		s.builder.Select("ID", "Operation").
			From(tableFilterContainer).OrderBy("ID"),
		func(r *sql.Rows) (row filterContainerRow, err error) {
			err = r.Scan(&row.ID, &row.Operation)
			return
		}); err != nil {
		return nil, err
	}

	if snap.filterSubContainer, err = queryAll(ctx, s.db,
		s.builder.Select(columnFilterParentID, columnFilterChildID).
			From(tableFilterSubContainer).OrderBy(columnFilterParentID, columnFilterChildID),
		func(r *sql.Rows) (row linkRow, err error) {
			err = r.Scan(&row.Parent, &row.Child)
			return
		}); err != nil {
		return nil, err
	}

	if snap.filters, err = queryAll(ctx, s.db,
		s.builder.Select("ID", "Name", columnFilterContainerID).
			From(tableFilter).OrderBy("ID"),
		func(r *sql.Rows) (row filterRow, err error) {
			err = r.Scan(&row.ID, &row.Name, &row.Container)
			return
		}); err != nil {
		return nil, err
	}

	if snap.joinables, err = queryAll(ctx, s.db,
		s.builder.Select("ID", columnConfigurationID, columnAggregateID).
			From(tableJoinable).OrderBy("ID"),
		func(r *sql.Rows) (row joinableRow, err error) {
			err = r.Scan(&row.ID, &row.Configuration, &row.Aggregate)
			return
		}); err != nil {
		return nil, err
	}

	return &snap, nil
}

// queryAll runs q and scans every row with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, q squirrel.SelectBuilder, scan func(*sql.Rows) (T, error)) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %q: %w", query, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row of %q: %w", query, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", query, err)
	}
	return out, nil
}
