package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/cicrender/internal/cohort"
	"github.com/specialistvlad/cicrender/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSnapshot writes files (relative path -> content) under a temp dir and
// returns the dir.
func writeSnapshot(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestLoader_DecodesFullTree(t *testing.T) {
	t.Parallel()

	dir := writeSnapshot(t, map[string]string{
		"main.hcl": `
cohort "Diabetics" {
  description = "Diabetics over 50"

  container "UNION" {
    aggregate "AgeFilter" {
      filter_container {
        operation = "AND"
        filter_container {
          operation = "OR"
          filter "Female" {}
        }
        filter "Age > 50" {}
        filter "Alive" {}
      }
    }
    container "EXCEPT" {
      aggregate "Type2" {}
      aggregate "Type1" {}
    }
    aggregate "Last" {}
  }

  joinable "Prescriptions" {
    filter_container {
      operation = "AND"
    }
  }
  joinable "Admissions" {}
}
`,
	})

	configs, err := NewLoader(dir).Configurations(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)

	cfg := configs[0]
	assert.Equal(t, "Diabetics", cfg.Name)
	assert.Equal(t, "Diabetics over 50", cfg.Description)
	require.NotNil(t, cfg.Root)
	assert.Equal(t, "UNION", cfg.Root.Name)

	names := []string{}
	for _, n := range cfg.Root.OrderedContents() {
		names = append(names, n.NodeName())
	}
	assert.Equal(t, []string{"AgeFilter", "EXCEPT", "Last"}, names)

	age, ok := cfg.Root.Contents[0].(*cohort.Aggregate)
	require.True(t, ok)
	require.NotNil(t, age.RootFilter)
	assert.Equal(t, "AND", age.RootFilter.Operation)
	require.Len(t, age.RootFilter.SubContainers, 1)
	assert.Equal(t, "OR", age.RootFilter.SubContainers[0].Operation)
	require.Len(t, age.RootFilter.Filters, 2)
	assert.Equal(t, "Age > 50", age.RootFilter.Filters[0].Name)
	assert.Equal(t, "Alive", age.RootFilter.Filters[1].Name)

	require.Len(t, cfg.Joinables, 2)
	assert.Equal(t, "Prescriptions", cfg.Joinables[0].Aggregate.Name)
	assert.NotNil(t, cfg.Joinables[0].Aggregate.RootFilter)
	assert.Equal(t, "Admissions", cfg.Joinables[1].Aggregate.Name)
	assert.Nil(t, cfg.Joinables[1].Aggregate.RootFilter)
}

func TestLoader_RendersScenario(t *testing.T) {
	t.Parallel()

	dir := writeSnapshot(t, map[string]string{
		"a.hcl": `
cohort "Diabetics" {
  description = "Diabetics over 50"
  container "UNION" {
    aggregate "AgeFilter" {}
  }
}
`,
	})

	configs, err := NewLoader(filepath.Join(dir, "a.hcl")).Configurations(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)

	assert.Equal(t, "Diabetics over 50\n\tAgeFilter\nPATIENT INDEX TABLES:\nNone\n", render.Text(configs[0]))
}

func TestLoader_MultipleFilesInWalkOrder(t *testing.T) {
	t.Parallel()

	dir := writeSnapshot(t, map[string]string{
		"b.hcl":        `cohort "Third" {}`,
		"a.hcl":        "cohort \"First\" {}\ncohort \"Second\" {}\n",
		"ignored.json": `{}`,
	})

	configs, err := NewLoader(dir).Configurations(context.Background())
	require.NoError(t, err)

	names := []string{}
	for _, c := range configs {
		names = append(names, c.Name)
		assert.Nil(t, c.Root)
		assert.Empty(t, c.Joinables)
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, names)
}

func TestLoader_NumericDescriptionIsConverted(t *testing.T) {
	t.Parallel()

	dir := writeSnapshot(t, map[string]string{"a.hcl": `cohort "N" { description = 42 }`})

	configs, err := NewLoader(dir).Configurations(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "42", configs[0].Description)
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		hcl     string
		wantErr string
	}{
		{
			name:    "syntax error",
			hcl:     `cohort "A" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name: "two root containers",
			hcl: `
cohort "A" {
  container "UNION" {}
  container "EXCEPT" {}
}
`,
			wantErr: `Duplicate "container" block`,
		},
		{
			name: "two filter containers",
			hcl: `
cohort "A" {
  container "UNION" {
    aggregate "X" {
      filter_container {
        operation = "AND"
      }
      filter_container {
        operation = "OR"
      }
    }
  }
}
`,
			wantErr: `Duplicate "filter_container" block`,
		},
		{
			name: "missing operation",
			hcl: `
cohort "A" {
  joinable "J" {
    filter_container {}
  }
}
`,
			wantErr: "operation",
		},
		{
			name: "unknown block",
			hcl: `
cohort "A" {
  step "x" {}
}
`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "list description",
			hcl:     `cohort "A" { description = ["a"] }`,
			wantErr: "must be a string",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := writeSnapshot(t, map[string]string{"main.hcl": tc.hcl})
			_, err := NewLoader(dir).Configurations(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_NoFiles(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(t.TempDir(), filepath.Join(t.TempDir(), "missing")).Configurations(context.Background())
	require.ErrorIs(t, err, ErrNoFiles)
}

func TestLoader_CancelledContext(t *testing.T) {
	t.Parallel()

	dir := writeSnapshot(t, map[string]string{"a.hcl": `cohort "A" {}`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(dir).Configurations(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
