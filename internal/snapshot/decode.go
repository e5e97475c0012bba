package snapshot

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/cicrender/internal/cohort"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

func decodeFile(body hcl.Body) ([]*cohort.Configuration, hcl.Diagnostics) {
	content, diags := body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	configs := make([]*cohort.Configuration, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		cfg, cfgDiags := decodeCohort(block)
		diags = append(diags, cfgDiags...)
		if cfg != nil {
			configs = append(configs, cfg)
		}
	}
	return configs, diags
}

func decodeCohort(block *hcl.Block) (*cohort.Configuration, hcl.Diagnostics) {
	content, diags := block.Body.Content(cohortSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	cfg := &cohort.Configuration{Name: block.Labels[0]}

	if attr, ok := content.Attributes[attrDescription]; ok {
		desc, attrDiags := stringAttr(attr)
		diags = append(diags, attrDiags...)
		cfg.Description = desc
	}

	rootBlock, uniqueDiags := findUniqueBlock(content.Blocks, blockContainer)
	diags = append(diags, uniqueDiags...)
	if rootBlock != nil {
		root, rootDiags := decodeContainer(rootBlock)
		diags = append(diags, rootDiags...)
		cfg.Root = root
	}

	for _, b := range content.Blocks {
		if b.Type != blockJoinable {
			continue
		}
		agg, aggDiags := decodeAggregate(b)
		diags = append(diags, aggDiags...)
		cfg.Joinables = append(cfg.Joinables, &cohort.Joinable{Aggregate: agg})
	}

	return cfg, diags
}

func decodeContainer(block *hcl.Block) (*cohort.Container, hcl.Diagnostics) {
	content, diags := block.Body.Content(containerSchema)
	c := &cohort.Container{Name: block.Labels[0]}
	if diags.HasErrors() {
		return c, diags
	}

	for _, b := range content.Blocks {
		switch b.Type {
		case blockContainer:
			sub, subDiags := decodeContainer(b)
			diags = append(diags, subDiags...)
			c.Contents = append(c.Contents, sub)
		case blockAggregate:
			agg, aggDiags := decodeAggregate(b)
			diags = append(diags, aggDiags...)
			c.Contents = append(c.Contents, agg)
		}
	}
	return c, diags
}

func decodeAggregate(block *hcl.Block) (*cohort.Aggregate, hcl.Diagnostics) {
	content, diags := block.Body.Content(aggregateSchema)
	agg := &cohort.Aggregate{Name: block.Labels[0]}
	if diags.HasErrors() {
		return agg, diags
	}

	fcBlock, uniqueDiags := findUniqueBlock(content.Blocks, blockFilterContainer)
	diags = append(diags, uniqueDiags...)
	if fcBlock != nil {
		fc, fcDiags := decodeFilterContainer(fcBlock)
		diags = append(diags, fcDiags...)
		agg.RootFilter = fc
	}
	return agg, diags
}

func decodeFilterContainer(block *hcl.Block) (*cohort.FilterContainer, hcl.Diagnostics) {
	content, diags := block.Body.Content(filterContainerSchema)
	fc := &cohort.FilterContainer{}
	if diags.HasErrors() {
		return fc, diags
	}

	op, opDiags := stringAttr(content.Attributes[attrOperation])
	diags = append(diags, opDiags...)
	fc.Operation = op

	for _, b := range content.Blocks {
		switch b.Type {
		case blockFilterContainer:
			sub, subDiags := decodeFilterContainer(b)
			diags = append(diags, subDiags...)
			fc.SubContainers = append(fc.SubContainers, sub)
		case blockFilter:
			_, filterDiags := b.Body.Content(filterSchema)
			diags = append(diags, filterDiags...)
			fc.Filters = append(fc.Filters, &cohort.Filter{Name: b.Labels[0]})
		}
	}
	return fc, diags
}

// stringAttr evaluates a constant attribute and converts it to a string. A
// null value yields the empty string.
func stringAttr(attr *hcl.Attribute) (string, hcl.Diagnostics) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", diags
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil || !str.IsKnown() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid attribute value",
			Detail:   fmt.Sprintf("The %q attribute must be a string.", attr.Name),
			Subject:  attr.Expr.Range().Ptr(),
		})
		return "", diags
	}
	return str.AsString(), diags
}

// findUniqueBlock returns the block of the given type, or nil. It reports a
// diagnostic for every extra block of that type.
func findUniqueBlock(blocks hcl.Blocks, name string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != name {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + name + "\" block",
				Detail:   "Only one \"" + name + "\" block is allowed here.",
				Subject:  &block.DefRange,
			})
			continue
		}
		found = block
	}

	return found, diags
}
