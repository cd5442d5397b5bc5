package store

import "fmt"

type dialect int

const (
	sqliteDialect dialect = iota
	postgresDialect
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite3":
		return sqliteDialect, nil
	case "pgx", "postgres":
		return postgresDialect, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q (expected sqlite3, pgx or postgres)", driver)
	}
}

// placeholders returns n bind parameters in the dialect's syntax
func (d dialect) placeholders(n int) []string {
	out := make([]string, n)
	for i := range out {
		if d == postgresDialect {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}
