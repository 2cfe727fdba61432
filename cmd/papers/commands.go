package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"paper_summaries_go_backend/internal/client"
	"paper_summaries_go_backend/internal/models"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List paper summaries, newest first",
	Long: `List fetches one page of papers from the API. --search matches words
anywhere in the title, authors, abstract or summary; quote a phrase to require
it and prefix a word with - to exclude it. --refine narrows the fetched page
locally without another request.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one paper summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var addCmd = &cobra.Command{
	Use:   "add --file paper.yaml",
	Short: "Create a paper summary from a YAML or JSON file",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update <id> --file changes.yaml",
	Short: "Change fields of a paper summary",
	Long: `Update sends only the fields present in the file. Summary fields are
merged individually, so a file containing just summary.takeaway leaves the
rest of the summary untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a paper summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a paper as a BibTeX entry or a PDF summary card",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow paper changes as they happen",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.Health(cmd.Context()); err != nil {
			return fmt.Errorf("api unavailable: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	listCmd.Flags().String("search", "", "search text")
	listCmd.Flags().String("category", "", "category filter (CV, NLP, RL, ML, AI, Other)")
	listCmd.Flags().Int("page", 1, "page number")
	listCmd.Flags().Int("limit", 10, "papers per page")
	listCmd.Flags().String("refine", "", "narrow the fetched page to papers containing this text")
	listCmd.Flags().Bool("json", false, "output the page as JSON")

	getCmd.Flags().Bool("json", false, "output the paper as JSON")

	addCmd.Flags().StringP("file", "f", "", "paper file, - for stdin")
	_ = addCmd.MarkFlagRequired("file")

	updateCmd.Flags().StringP("file", "f", "", "file with the fields to change, - for stdin")
	_ = updateCmd.MarkFlagRequired("file")

	exportCmd.Flags().String("format", "bibtex", "export format: bibtex or pdf")
	exportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	watchCmd.Flags().String("category", "", "category filter for the initial page")

	rootCmd.AddCommand(listCmd, getCmd, addCmd, updateCmd, deleteCmd, exportCmd, watchCmd, healthCmd)
}

func newStore() (*client.Client, *client.PaperStore, error) {
	c, err := newClient()
	if err != nil {
		return nil, nil, err
	}
	return c, client.NewPaperStore(c), nil
}

// storeError prefers the message the store recorded for the failure.
func storeError(store *client.PaperStore, err error) error {
	if msg := store.Err(); msg != "" {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}

func runList(cmd *cobra.Command, args []string) error {
	_, store, err := newStore()
	if err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	category, _ := cmd.Flags().GetString("category")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	refine, _ := cmd.Flags().GetString("refine")
	asJSON, _ := cmd.Flags().GetBool("json")

	query := models.PaperQuery{
		Search:   search,
		Category: models.Category(category),
		Page:     page,
		Limit:    limit,
	}
	if err := store.Fetch(cmd.Context(), query); err != nil {
		return storeError(store, err)
	}

	papers := store.Papers()
	if refine != "" {
		papers = store.Refine(refine, "")
	}
	info := store.PageInfo()

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), models.PaperPage{
			Papers:      papers,
			TotalPages:  info.TotalPages,
			CurrentPage: info.CurrentPage,
			Total:       info.Total,
		})
	}
	return renderPapers(cmd.OutOrStdout(), papers, info)
}

func runGet(cmd *cobra.Command, args []string) error {
	_, store, err := newStore()
	if err != nil {
		return err
	}
	paper, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return storeError(store, err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), paper)
	}
	return renderPaper(cmd.OutOrStdout(), *paper)
}

func runAdd(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	paper, err := loadPaper(path)
	if err != nil {
		return err
	}

	_, store, err := newStore()
	if err != nil {
		return err
	}
	created, err := store.Create(cmd.Context(), paper)
	if err != nil {
		return storeError(store, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", created.ID)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	patch, err := loadPatch(path)
	if err != nil {
		return err
	}

	_, store, err := newStore()
	if err != nil {
		return err
	}
	updated, err := store.Update(cmd.Context(), args[0], patch)
	if err != nil {
		return storeError(store, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", updated.ID)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	_, store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return storeError(store, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "bibtex" && format != "pdf" {
		return fmt.Errorf("unknown export format %q (want bibtex or pdf)", format)
	}
	output, _ := cmd.Flags().GetString("output")
	if format == "pdf" && output == "" {
		return fmt.Errorf("--output is required for pdf export")
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	data, err := c.Export(cmd.Context(), args[0], format)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c, store, err := newStore()
	if err != nil {
		return err
	}
	category, _ := cmd.Flags().GetString("category")
	if err := store.Fetch(ctx, models.PaperQuery{Category: models.Category(category)}); err != nil {
		return storeError(store, err)
	}
	out := cmd.OutOrStdout()
	if err := renderPapers(out, store.Papers(), store.PageInfo()); err != nil {
		return err
	}

	events, err := c.WatchPapers(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nWatching for changes (Ctrl-C to stop)...")
	for event := range events {
		store.ApplyEvent(event)
		fmt.Fprintln(out, describeEvent(event))
	}
	if ctx.Err() == nil {
		return fmt.Errorf("event feed closed")
	}
	return nil
}

func describeEvent(event models.PaperEvent) string {
	stamp := event.Timestamp.Local().Format(time.TimeOnly)
	title := ""
	if event.Paper != nil {
		title = fmt.Sprintf(" %q", event.Paper.Title)
	}
	switch event.Type {
	case models.PaperCreated:
		return fmt.Sprintf("%s  added    %s%s", stamp, event.PaperID, title)
	case models.PaperUpdated:
		return fmt.Sprintf("%s  updated  %s%s", stamp, event.PaperID, title)
	case models.PaperDeleted:
		return fmt.Sprintf("%s  deleted  %s", stamp, event.PaperID)
	default:
		return fmt.Sprintf("%s  %s  %s", stamp, event.Type, event.PaperID)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
