package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/pressly/goose/v3"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9]+`)

// CreateOptions shapes a new migration file.
type CreateOptions struct {
	// NoTransaction marks the file for statements Postgres rejects inside a
	// transaction, such as CREATE INDEX CONCURRENTLY.
	NoTransaction bool
}

const migrationBody = `-- +goose Up
-- +goose StatementBegin
-- {{.CamelName}}: keep statements portable across postgres and sqlite
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback {{.CamelName}}
-- +goose StatementEnd
`

var (
	sqlTemplate     = template.Must(template.New("aisla.sql").Parse(migrationBody))
	sqlNoTxTemplate = template.Must(template.New("aisla.sql-notx").Parse("-- +goose NO TRANSACTION\n" + migrationBody))
)

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<name>.sql through goose and
// returns its path.
func CreateSQLMigration(dir, name string, opts CreateOptions) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := strings.Trim(nameSanitizeRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	tmpl := sqlTemplate
	if opts.NoTransaction {
		tmpl = sqlNoTxTemplate
	}
	if err := goose.CreateWithTemplate(nil, dir, tmpl, safe, "sql"); err != nil {
		return "", err
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*_"+safe+".sql"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("migration %q not found after create", safe)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
