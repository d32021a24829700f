package postgres

import (
	"regexp"
	"strings"
	"testing"

	"github.com/ctu-developers/DSpace/internal/testinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createTable = regexp.MustCompile(`(?s)CREATE TABLE (?:IF NOT EXISTS )?(\w+) \((.*?)\n\);`)

// tableColumns maps every table declared in ddl to its column names
func tableColumns(ddl string) map[string][]string {
	tables := make(map[string][]string)
	for _, match := range createTable.FindAllStringSubmatch(ddl, -1) {
		var columns []string
		for _, line := range strings.Split(match[2], "\n") {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch strings.ToUpper(fields[0]) {
			case "UNIQUE", "PRIMARY", "FOREIGN", "CONSTRAINT":
				continue
			}
			columns = append(columns, strings.Trim(fields[0], `"`))
		}
		tables[match[1]] = columns
	}
	return tables
}

func TestSQLiteSchemaMatchesSchema(t *testing.T) {
	production := tableColumns(Schema)
	require.NotEmpty(t, production)

	assert.Equal(t, production, tableColumns(testinfra.Schema))
	assert.ElementsMatch(t,
		[]string{"authority_person", "authority", "epersongroup", "epersongroup_member", "item", "metadatavalue"},
		keys(production),
	)
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
