package builtin

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/mwantia/cmdkit"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

func registerDB(root *cmdkit.CompositeNode, out io.Writer) {
	group := cmdkit.NewCompositeNode("db")

	group.Add(cmdkit.NewLeafNode("inspect", "<path> [--limit=<limit>]", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		if err := inspectDB(out, args[0], tableLimit(assoc)); err != nil {
			fmt.Fprintf(out, "inspect failed: %v\n", err)
		}
	})))

	root.Add(group)
}

// inspectDB prints every user table of a SQLite database together with its
// row count.
func inspectDB(out io.Writer, path string, limit int) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if limit > 0 && len(tables) > limit {
		tables = tables[:limit]
	}

	for _, table := range tables {
		var count int64
		// Table names come from sqlite_master, not from user input.
		row := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", table))
		if err := row.Scan(&count); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d rows\n", table, count)
	}

	return nil
}

func tableLimit(assoc map[string]any) int {
	raw, ok := assoc["limit"].(string)
	if !ok {
		return 0
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
