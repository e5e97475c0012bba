// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package cohort

import "context"

// Set-operation labels recognised on containers.
const (
	OpUnion     = "UNION"
	OpIntersect = "INTERSECT"
	OpExcept    = "EXCEPT"
)

// IsSetOperation reports whether name is one of the reserved set-operation
// labels. The match is exact and case-sensitive.
func IsSetOperation(name string) bool {
	switch name {
	case OpUnion, OpIntersect, OpExcept:
		return true
	}
	return false
}

// Source enumerates fully materialised configurations.
type Source interface {
	Configurations(ctx context.Context) ([]*Configuration, error)
}

// Configuration is a cohort identification configuration.
type Configuration struct {
	Name        string
	Description string
	Root        *Container
	Joinables   []*Joinable
}

// RootContainer returns the root container, or nil.
func (c *Configuration) RootContainer() *Container {
	if c == nil {
		return nil
	}
	return c.Root
}

// JoinableList returns the patient index tables in their supplied order.
func (c *Configuration) JoinableList() []*Joinable {
	if c == nil {
		return nil
	}
	return c.Joinables
}

// ContainerNode is a child of a Container: either *Container or *Aggregate.
type ContainerNode interface {
	isContainerNode()
	NodeName() string
}

// Container is a set-operation node.
type Container struct {
	Name     string
	Contents []ContainerNode
}

func (*Container) isContainerNode() {}

// NodeName returns the container's name.
func (c *Container) NodeName() string { return c.Name }

// OrderedContents returns the children exactly as supplied. A nil container
// has no contents.
func (c *Container) OrderedContents() []ContainerNode {
	if c == nil {
		return nil
	}
	return c.Contents
}

// Aggregate is a named query definition.
type Aggregate struct {
	Name       string
	RootFilter *FilterContainer
}

func (*Aggregate) isContainerNode() {}

// NodeName returns the aggregate's name.
func (a *Aggregate) NodeName() string { return a.Name }

// RootFilterContainer returns the aggregate's filter tree, or nil.
func (a *Aggregate) RootFilterContainer() *FilterContainer {
	if a == nil {
		return nil
	}
	return a.RootFilter
}

// Joinable wraps an aggregate used as a patient index table.
type Joinable struct {
	Aggregate *Aggregate
}

// FilterNode is a child of a FilterContainer: either *FilterContainer or
// *Filter.
type FilterNode interface {
	isFilterNode()
}

// FilterContainer combines sub-containers and filters with a boolean
// operation.
type FilterContainer struct {
	Operation     string
	SubContainers []*FilterContainer
	Filters       []*Filter
}

func (*FilterContainer) isFilterNode() {}

// Children returns the sub-containers followed by the filters, each group in
// its supplied order.
func (fc *FilterContainer) Children() []FilterNode {
	if fc == nil {
		return nil
	}
	nodes := make([]FilterNode, 0, len(fc.SubContainers)+len(fc.Filters))
	for _, sub := range fc.SubContainers {
		nodes = append(nodes, sub)
	}
	for _, f := range fc.Filters {
		nodes = append(nodes, f)
	}
	return nodes
}

// Filter is a named predicate leaf.
type Filter struct {
	Name string
}

func (*Filter) isFilterNode() {}
