package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementsSkipsCommentsAndBlanks(t *testing.T) {
	raw := `-- header
CREATE TABLE a (id TEXT);

-- second
CREATE INDEX idx ON a (id);
`
	stmts := Statements(raw)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id TEXT)", stmts[0])
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE INDEX"))
}

func TestEmbeddedSchemasCoverEveryCollection(t *testing.T) {
	for _, name := range []string{"schema/postgres.sql", "schema/sqlite.sql"} {
		raw, err := schemaFS.ReadFile(name)
		require.NoError(t, err, name)
		for _, table := range []string{"users", "classes", "lessons", "assessments", "accommodations", "interventions", "history"} {
			assert.Contains(t, string(raw), "CREATE TABLE IF NOT EXISTS "+table+" (", name)
		}
	}
}
