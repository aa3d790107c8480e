// Package main implements the minirel interactive REPL: a readline loop
// that executes SQL against a local database directory and renders results
// as aligned tables.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/minirel/minirel/internal/engine"
	"github.com/minirel/minirel/internal/query/executor"
	"github.com/minirel/minirel/pkg/types"
)

func main() {
	dataDir := flag.String("data-dir", "./data/minirel", "database directory")
	flag.Parse()

	db, err := engine.Open(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "minirel> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("minirel attached to %s\n", db.Path())
	fmt.Println("type .help for commands, .exit to quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("use .exit to quit")
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if done := runMetaCommand(db, line); done {
				return
			}
			continue
		}

		_ = rl.SaveHistory(line)

		result, err := db.Execute(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printResult(result)
	}
}

// runMetaCommand handles a .-prefixed command; returns true on exit.
func runMetaCommand(db *engine.Database, line string) bool {
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		fmt.Printf("unknown command: %s\n", line)
		return false
	}

	switch fields[0] {
	case "exit", "quit":
		fmt.Println("Goodbye!")
		return true
	case "help":
		printHelp()
	case "tables":
		tables, err := db.ListTables()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		if len(tables) == 0 {
			fmt.Println("(no tables)")
			return false
		}
		for _, t := range tables {
			fmt.Printf("%s (%d rows)\n", t.Name, t.RowCount)
		}
	case "schema":
		if len(fields) < 2 {
			fmt.Println("usage: .schema <table>")
			return false
		}
		schema, err := db.Schema(strings.ToLower(fields[1]))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		fmt.Println(schema.String())
	default:
		fmt.Printf("unknown command: %s\n", line)
	}
	return false
}

// printResult renders a query result: an aligned table for result sets,
// a rowcount message for mutations.
func printResult(result *executor.QueryResult) {
	if result.Rows == nil {
		fmt.Printf("Query OK, %d %s affected\n", result.Rowcount, plural(result.Rowcount))
		return
	}
	if len(result.Rows) > 0 {
		printTable(result.Columns, result.Rows)
	}
	fmt.Printf("(%d %s)\n", result.Rowcount, plural(result.Rowcount))
}

// printTable renders rows as an aligned table with a header line.
func printTable(headers []string, rows []map[string]interface{}) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(headers))
		for i, h := range headers {
			cells[r][i] = cellString(row[h])
			if len(cells[r][i]) > widths[i] {
				widths[i] = len(cells[r][i])
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(pad(h, widths[i]))
	}
	header := sb.String()
	fmt.Println(header)
	fmt.Println(strings.Repeat("-", len(header)))

	for _, row := range cells {
		sb.Reset()
		for i, cell := range row {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(pad(cell, widths[i]))
		}
		fmt.Println(sb.String())
	}
}

// cellString renders one value for display.
func cellString(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return types.FormatValue(v)
}

// pad right-pads a string to the given width.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// plural picks the row noun for a count.
func plural(n int) string {
	if n == 1 {
		return "row"
	}
	return "rows"
}

func printHelp() {
	fmt.Println(`Commands:
    .help              show this help
    .tables            list all tables
    .schema <table>    show table schema
    .exit or .quit     exit the REPL
    SQL                execute a SQL statement

SQL examples:
    CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(50))
    INSERT INTO users VALUES (1, 'Alice')
    SELECT * FROM users WHERE id = 1
    UPDATE users SET name = 'Bob' WHERE id = 1
    DELETE FROM users WHERE id = 1
    DROP TABLE users`)
}
