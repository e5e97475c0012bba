package snapshot

import "github.com/hashicorp/hcl/v2"

const (
	blockCohort          = "cohort"
	blockContainer       = "container"
	blockAggregate       = "aggregate"
	blockJoinable        = "joinable"
	blockFilterContainer = "filter_container"
	blockFilter          = "filter"

	attrDescription = "description"
	attrOperation   = "operation"
)

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockCohort, LabelNames: []string{"name"}},
	},
}

var cohortSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: attrDescription},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockContainer, LabelNames: []string{"name"}},
		{Type: blockJoinable, LabelNames: []string{"name"}},
	},
}

var containerSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockContainer, LabelNames: []string{"name"}},
		{Type: blockAggregate, LabelNames: []string{"name"}},
	},
}

// aggregateSchema is shared by `aggregate` and `joinable` blocks.
var aggregateSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockFilterContainer},
	},
}

var filterContainerSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: attrOperation, Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockFilterContainer},
		{Type: blockFilter, LabelNames: []string{"name"}},
	},
}

var filterSchema = &hcl.BodySchema{}
