package modules

import (
	"embed"
	"io/fs"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditpersistence "github.com/orgmesh/platform-sdk/modules/audit/infrastructure/persistence"
	slapersistence "github.com/orgmesh/platform-sdk/modules/sla/infrastructure/persistence"
	vampersistence "github.com/orgmesh/platform-sdk/modules/vam/infrastructure/persistence"
	workflowspersistence "github.com/orgmesh/platform-sdk/modules/workflows/infrastructure/persistence"
)

var nonIdempotentDDL = regexp.MustCompile(`(?i)CREATE\s+(TABLE|(UNIQUE\s+)?INDEX)\s+(?:IF NOT EXISTS)?`)

// The migration manager reapplies every embedded schema file on each
// startup, so every CREATE statement must tolerate its object already
// existing.
func TestSchemasAreIdempotent(t *testing.T) {
	schemas := map[string]*embed.FS{
		"workflows": &workflowspersistence.MigrationFiles,
		"sla":       &slapersistence.MigrationFiles,
		"vam":       &vampersistence.MigrationFiles,
		"audit":     &auditpersistence.MigrationFiles,
	}
	for name, files := range schemas {
		t.Run(name, func(t *testing.T) {
			err := fs.WalkDir(files, ".", func(path string, d fs.DirEntry, err error) error {
				require.NoError(t, err)
				if d.IsDir() {
					return nil
				}
				content, err := fs.ReadFile(files, path)
				require.NoError(t, err)
				for _, match := range nonIdempotentDDL.FindAllString(string(content), -1) {
					assert.Regexp(t, `(?i)IF NOT EXISTS$`, match,
						"%s: %q must be rerunnable on an existing database", path, match)
				}
				return nil
			})
			require.NoError(t, err)
		})
	}
}
