// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package render turns a cohort identification configuration into the
// indented text report. Rendering is a pure walk over the tree: it performs
// no I/O, never mutates its input, and gives byte-identical output for the
// same tree, so concurrent calls over a shared tree are safe.
package render

import (
	"io"
	"strings"

	"github.com/specialistvlad/cicrender/internal/cohort"
)

const (
	// PatientIndexTablesHeader separates the main tree from the joinables.
	PatientIndexTablesHeader = "PATIENT INDEX TABLES:"
	// NoJoinables is emitted when the configuration has no joinables.
	NoJoinables = "None"
)

// Render returns the report lines for cfg. The first line is always the
// description, empty for a nil configuration.
func Render(cfg *cohort.Configuration) []string {
	var b lineBuilder
	var description string
	if cfg != nil {
		description = cfg.Description
	}
	b.add(0, description)
	b.container(cfg.RootContainer(), 1)

	b.add(0, PatientIndexTablesHeader)
	header := len(b.lines)
	for _, j := range cfg.JoinableList() {
		if j == nil {
			continue
		}
		b.aggregate(j.Aggregate, 0)
	}
	// Joinables without an aggregate contribute nothing.
	if len(b.lines) == header {
		b.add(0, NoJoinables)
	}
	return b.lines
}

// Text returns the report as a single string, one line per row, each
// terminated by a newline.
func Text(cfg *cohort.Configuration) string {
	return Join(Render(cfg))
}

// WriteTo streams the report for cfg to w.
func WriteTo(w io.Writer, cfg *cohort.Configuration) error {
	_, err := io.WriteString(w, Text(cfg))
	return err
}

// Join terminates every line with a newline and concatenates them.
func Join(lines []string) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

type lineBuilder struct {
	lines []string
}

func (b *lineBuilder) add(depth int, text string) {
	b.lines = append(b.lines, indent(depth)+text)
}

func (b *lineBuilder) container(c *cohort.Container, depth int) {
	contents := c.OrderedContents()
	if len(contents) == 0 {
		return
	}

	// A set operation over a single member renders as that member.
	if len(contents) == 1 && cohort.IsSetOperation(c.Name) {
		b.node(contents[0], depth)
		return
	}

	b.add(depth, c.Name)
	for _, child := range contents {
		b.node(child, depth+1)
	}
}

func (b *lineBuilder) node(n cohort.ContainerNode, depth int) {
	switch v := n.(type) {
	case *cohort.Container:
		b.container(v, depth)
	case *cohort.Aggregate:
		b.aggregate(v, depth)
	}
}

func (b *lineBuilder) aggregate(a *cohort.Aggregate, depth int) {
	if a == nil {
		return
	}
	b.add(depth, a.Name)
	b.filterContainer(a.RootFilterContainer(), depth+1)
}

func (b *lineBuilder) filterContainer(fc *cohort.FilterContainer, depth int) {
	if fc == nil {
		return
	}
	b.add(depth, fc.Operation)
	for _, child := range fc.Children() {
		switch v := child.(type) {
		case *cohort.FilterContainer:
			b.filterContainer(v, depth+1)
		case *cohort.Filter:
			if v != nil {
				b.add(depth+1, v.Name)
			}
		}
	}
}
