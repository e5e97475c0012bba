package catalogue

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/cicrender/internal/cohort"
	"github.com/specialistvlad/cicrender/internal/ctxlog"
)

// Configurations loads every cohort identification configuration, ordered by ID.
func (s *Store) Configurations(ctx context.Context) ([]*cohort.Configuration, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return newAssembler(ctx, snap).configurations()
}

// member is one entry of a container's contents before ordering.
type member struct {
	order       int64
	isAggregate bool
	id          int64
}

type assembler struct {
	ctx  context.Context
	snap *rowSet

	containers       map[int64]containerRow
	contents         map[int64][]member
	aggregates       map[int64]aggregateRow
	filterContainers map[int64]filterContainerRow
	filterChildren   map[int64][]int64
	filters          map[int64][]*cohort.Filter
	joinables        map[int64][]int64

	builtAggregates map[int64]*cohort.Aggregate
	builtFilters    map[int64]*cohort.FilterContainer
}

func newAssembler(ctx context.Context, snap *rowSet) *assembler {
	a := &assembler{
		ctx:              ctx,
		snap:             snap,
		containers:       make(map[int64]containerRow, len(snap.containers)),
		contents:         make(map[int64][]member),
		aggregates:       make(map[int64]aggregateRow, len(snap.aggregates)),
		filterContainers: make(map[int64]filterContainerRow, len(snap.filterContainers)),
		filterChildren:   make(map[int64][]int64),
		filters:          make(map[int64][]*cohort.Filter),
		joinables:        make(map[int64][]int64),
		builtAggregates:  make(map[int64]*cohort.Aggregate),
		builtFilters:     make(map[int64]*cohort.FilterContainer),
	}

	for _, c := range snap.containers {
		a.containers[c.ID] = c
	}
	for _, l := range snap.subContainers {
		child, ok := a.containers[l.Child]
		if !ok {
			a.dangling("container", l.Child)
			continue
		}
		a.contents[l.Parent] = append(a.contents[l.Parent], member{order: child.Order, id: l.Child})
	}
	for _, l := range snap.containerAggs {
		a.contents[l.Parent] = append(a.contents[l.Parent], member{order: l.Order, isAggregate: true, id: l.Child})
	}
	// Sub-containers sort ahead of aggregates sharing the same order.
	for id := range a.contents {
		m := a.contents[id]
		sort.SliceStable(m, func(i, j int) bool {
			if m[i].order != m[j].order {
				return m[i].order < m[j].order
			}
			if m[i].isAggregate != m[j].isAggregate {
				return !m[i].isAggregate
			}
			return m[i].id < m[j].id
		})
	}

	for _, ag := range snap.aggregates {
		a.aggregates[ag.ID] = ag
	}
	for _, fc := range snap.filterContainers {
		a.filterContainers[fc.ID] = fc
	}
	for _, l := range snap.filterSubContainer {
		a.filterChildren[l.Parent] = append(a.filterChildren[l.Parent], l.Child)
	}
	for _, f := range snap.filters {
		if !f.Container.Valid {
			continue
		}
		a.filters[f.Container.Int64] = append(a.filters[f.Container.Int64], &cohort.Filter{Name: f.Name})
	}
	for _, j := range snap.joinables {
		a.joinables[j.Configuration] = append(a.joinables[j.Configuration], j.Aggregate)
	}
	return a
}

func (a *assembler) configurations() ([]*cohort.Configuration, error) {
	out := make([]*cohort.Configuration, 0, len(a.snap.configurations))
	for _, row := range a.snap.configurations {
		cfg := &cohort.Configuration{
			Name:        row.Name,
			Description: row.Description.String,
		}

		if row.RootContainer.Valid {
			root, err := a.container(row.RootContainer.Int64, map[int64]bool{})
			if err != nil {
				return nil, fmt.Errorf("configuration %q: %w", row.Name, err)
			}
			cfg.Root = root
		}

		for _, aggID := range a.joinables[row.ID] {
			agg, err := a.aggregate(aggID)
			if err != nil {
				return nil, fmt.Errorf("configuration %q: %w", row.Name, err)
			}
			if agg == nil {
				continue
			}
			cfg.Joinables = append(cfg.Joinables, &cohort.Joinable{Aggregate: agg})
		}

		out = append(out, cfg)
	}
	return out, nil
}

// container builds the container tree rooted at id. path holds the containers
// on the way down and detects cycles. A missing row yields nil.
func (a *assembler) container(id int64, path map[int64]bool) (*cohort.Container, error) {
	row, ok := a.containers[id]
	if !ok {
		a.dangling("container", id)
		return nil, nil
	}
	if path[id] {
		return nil, fmt.Errorf("%w: container %d", ErrContainerCycle, id)
	}
	path[id] = true
	defer delete(path, id)

	c := &cohort.Container{Name: row.Name}
	for _, m := range a.contents[id] {
		if m.isAggregate {
			agg, err := a.aggregate(m.id)
			if err != nil {
				return nil, err
			}
			if agg != nil {
				c.Contents = append(c.Contents, agg)
			}
			continue
		}

		sub, err := a.container(m.id, path)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			c.Contents = append(c.Contents, sub)
		}
	}
	return c, nil
}

func (a *assembler) aggregate(id int64) (*cohort.Aggregate, error) {
	if agg, ok := a.builtAggregates[id]; ok {
		return agg, nil
	}
	row, ok := a.aggregates[id]
	if !ok {
		a.dangling("aggregate", id)
		return nil, nil
	}

	agg := &cohort.Aggregate{Name: row.Name}
	if row.RootFilter.Valid {
		fc, err := a.filterContainer(row.RootFilter.Int64, map[int64]bool{})
		if err != nil {
			return nil, fmt.Errorf("aggregate %q: %w", row.Name, err)
		}
		agg.RootFilter = fc
	}
	a.builtAggregates[id] = agg
	return agg, nil
}

func (a *assembler) filterContainer(id int64, path map[int64]bool) (*cohort.FilterContainer, error) {
	if fc, ok := a.builtFilters[id]; ok {
		return fc, nil
	}
	row, ok := a.filterContainers[id]
	if !ok {
		a.dangling("filter container", id)
		return nil, nil
	}
	if path[id] {
		return nil, fmt.Errorf("%w: filter container %d", ErrContainerCycle, id)
	}
	path[id] = true
	defer delete(path, id)

	fc := &cohort.FilterContainer{
		Operation: row.Operation,
		Filters:   a.filters[id],
	}
	for _, childID := range a.filterChildren[id] {
		sub, err := a.filterContainer(childID, path)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			fc.SubContainers = append(fc.SubContainers, sub)
		}
	}
	a.builtFilters[id] = fc
	return fc, nil
}

func (a *assembler) dangling(kind string, id int64) {
	ctxlog.FromContext(a.ctx).Warn("Catalogue references a missing row, treating it as absent.", "kind", kind, "id", id)
}
