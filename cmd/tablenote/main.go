package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tablenote/tablenote"
)

var (
	databaseURL string
	schemaName  string
	tables      string
	exclude     string
	outputFile  string
	writeFile   bool

	indent     int
	typeCol    int
	commentCol int
	noSort     bool
)

var rootCmd = &cobra.Command{
	Use:   "tablenote",
	Short: "Convert between relational schemas and compact table notation",
	Long: `Tablenote reads and writes a compact, comment-annotated notation for
relational table schemas, and can pull the notation straight from a
PostgreSQL, MySQL, or SQLite database.`,
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Introspect a database and write its schema as notation",
	RunE:  runPull,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Reformat a notation file, normalizing alignment and column order",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	pullCmd.Flags().StringVar(&databaseURL, "url", "", "Database URL (postgres://, mysql://, or sqlite://); defaults to $DATABASE_URL")
	pullCmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL)")
	pullCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	pullCmd.Flags().StringVar(&exclude, "exclude", "", "Tables to exclude (comma-separated, optional)")
	pullCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	fmtCmd.Flags().BoolVarP(&writeFile, "write", "w", false, "Write the result back to the file instead of stdout")

	for _, cmd := range []*cobra.Command{pullCmd, fmtCmd} {
		cmd.Flags().IntVar(&indent, "indent", 0, "Indentation width for column lines")
		cmd.Flags().IntVar(&typeCol, "type-col", 0, "Column the type expression is aligned to")
		cmd.Flags().IntVar(&commentCol, "comment-col", 0, "Column the trailing comment is aligned to")
		cmd.Flags().BoolVar(&noSort, "no-sort", false, "Keep columns in their original order")
	}

	rootCmd.AddCommand(pullCmd, fmtCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	url := databaseURL
	if url == "" {
		// A .env file beside the working directory is enough to run
		// pull without flags.
		_ = godotenv.Load()
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return fmt.Errorf("no database URL: pass --url or set DATABASE_URL")
	}

	opts := &tablenote.ExtractOptions{
		Tables:        parseTableList(tables),
		ExcludeTables: parseTableList(exclude),
		SchemaName:    schemaName,
	}

	text, err := tablenote.ExtractAndGenerate(ctx, url, opts, genOptions())
	if err != nil {
		return err
	}
	return writeOutput(text, outputFile)
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]

	input, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	s, err := tablenote.Parse(string(input), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	text := tablenote.Generate(s, genOptions())

	if writeFile {
		return os.WriteFile(path, []byte(text), 0644)
	}
	return writeOutput(text, "")
}

func genOptions() *tablenote.GenerateOptions {
	return &tablenote.GenerateOptions{
		Indent:        indent,
		TypeColumn:    typeCol,
		CommentColumn: commentCol,
		NoSort:        noSort,
	}
}

func parseTableList(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func writeOutput(text, path string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
