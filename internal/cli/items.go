package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shelfspace/pkg/errors"
	"github.com/matzehuels/shelfspace/pkg/session"
	"github.com/matzehuels/shelfspace/pkg/shelf"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// itemsCommand creates the items command group for editing the library
// without dragging.
func (c *CLI) itemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List, add, archive and restore library items",
		Long: `Edit the library from the command line.

New items go to the first shelf. Archived items can be restored to the
first shelf or deleted for good.`,
	}

	cmd.AddCommand(c.itemsListCommand())
	cmd.AddCommand(c.itemsAddBookCommand())
	cmd.AddCommand(c.itemsAddOrnamentCommand())
	cmd.AddCommand(c.itemsKindCommand("archive", "Move a shelved item to the archive", func(ctx context.Context, s *session.Session, id string, k shelf.Kind) error {
		return s.Archive(ctx, id, k)
	}))
	cmd.AddCommand(c.itemsKindCommand("restore", "Put an archived item back on the first shelf", func(ctx context.Context, s *session.Session, id string, k shelf.Kind) error {
		return s.Restore(ctx, id, k)
	}))
	cmd.AddCommand(c.itemsKindCommand("delete", "Delete an archived item forever", func(ctx context.Context, s *session.Session, id string, k shelf.Kind) error {
		return s.DeleteForever(ctx, id, k)
	}))

	return cmd
}

func (c *CLI) itemsListCommand() *cobra.Command {
	var (
		archived bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shelved items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			lib := sess.Library()
			books, ornaments := lib.Books, lib.Ornaments
			if archived {
				books, ornaments = lib.ArchivedBooks, lib.ArchivedOrnaments
			}

			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"books": books, "ornaments": ornaments})
			}
			if len(books)+len(ornaments) == 0 {
				printInfo("Nothing here")
				return nil
			}
			fmt.Fprintln(stdout, itemsTable(books, ornaments))
			return nil
		},
	}

	cmd.Flags().BoolVar(&archived, "archived", false, "list the archive instead of the shelf")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print items as JSON")
	return cmd
}

func itemsTable(books []store.Book, ornaments []store.Ornament) string {
	rows := make([][]string, 0, len(books)+len(ornaments))
	for _, b := range books {
		kind := store.ItemTypeBook
		if b.IsWebsite() {
			kind = store.ItemTypeWebsite
		}
		rows = append(rows, []string{b.ID, kind, b.Title, b.Author, strconv.FormatFloat(b.Rating, 'f', 1, 64), positionString(b.Position)})
	}
	for _, o := range ornaments {
		rows = append(rows, []string{o.ID, o.Type, "", "", "", positionString(o.Position)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Type", "Title", "Author", "Rating", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= len(books) {
				return styleOrnament
			}
			if col == 0 || col == 5 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func positionString(p *shelf.Position) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("shelf %d, x %g", p.Shelf, p.X)
}

func (c *CLI) itemsAddBookCommand() *cobra.Command {
	var (
		draft   store.Draft
		website bool
		from    string
	)

	cmd := &cobra.Command{
		Use:   "add-book",
		Short: "Add a book or website",
		Long: `Add a book, or a saved website with --website.

With --from, a JSON array of drafts is added in one go. Every draft is
checked first; nothing is added if any of them is invalid.`,
		Example: `  shelfspace items add-book --title "dune" --author "frank herbert" --rating 5
  shelfspace items add-book --website --title "go.dev" --url https://go.dev
  shelfspace items add-book --from reading-list.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			itemType := store.ItemTypeBook
			if website {
				itemType = store.ItemTypeWebsite
			}

			var drafts []store.Draft
			if from != "" {
				var err error
				if drafts, err = readDrafts(from); err != nil {
					return err
				}
			}

			sess, _, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			var added []store.Book
			if drafts == nil {
				b, err := sess.AddBook(cmd.Context(), draft, itemType)
				if err != nil {
					return err
				}
				added = []store.Book{b}
			} else if added, err = sess.AddBooks(cmd.Context(), drafts, itemType); err != nil {
				return err
			}
			for _, b := range added {
				printSuccess("Added %s %s", StyleValue.Render(b.Title), StyleDim.Render(b.ID))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&draft.Title, "title", "", "title")
	f.StringVar(&draft.Author, "author", "", "author")
	f.Float64Var(&draft.Rating, "rating", 0, "rating from 0 to 5")
	f.StringVar(&draft.Genre, "genre", "", "genre")
	f.StringVar(&draft.Summary, "summary", "", "short summary")
	f.IntVar(&draft.EmotionalImpact, "impact", 0, "emotional impact from 0 to 100")
	f.StringVar(&draft.PersonalNote, "note", "", "personal note")
	f.StringVar(&draft.Color, "color", "#fcf4dd", "spine colour as #rrggbb")
	f.StringVar(&draft.URL, "url", "", "address of the website (with --website)")
	f.BoolVar(&website, "website", false, "add a saved website instead of a book")
	f.StringVar(&from, "from", "", "read a JSON array of drafts from this file")
	cmd.MarkFlagsMutuallyExclusive("from", "title")
	return cmd
}

func readDrafts(path string) ([]store.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read drafts: %w", err)
	}
	var drafts []store.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if len(drafts) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s holds no drafts", path)
	}
	return drafts, nil
}

func (c *CLI) itemsAddOrnamentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-ornament [variant]",
		Short: "Add an ornament (default: the music player)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variant := shelf.VariantMusicPlayer
			if len(args) == 1 {
				variant = args[0]
			}

			sess, _, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			o, err := sess.AddOrnament(cmd.Context(), variant)
			if err != nil {
				return err
			}
			printSuccess("Added %s %s", StyleValue.Render(o.Type), StyleDim.Render(o.ID))
			return nil
		},
	}
}

// itemsKindCommand builds one of the `<verb> <kind> <id>` subcommands.
func (c *CLI) itemsKindCommand(verb, short string, fn func(context.Context, *session.Session, string, shelf.Kind) error) *cobra.Command {
	return &cobra.Command{
		Use:       verb + " <book|ornament> <id>",
		Short:     short,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(shelf.KindBook), string(shelf.KindOrnament)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if err := errors.ValidateItemID(args[1]); err != nil {
				return err
			}

			sess, _, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := fn(cmd.Context(), sess, args[1], kind); err != nil {
				return err
			}
			printSuccess("%s %s %s", verbPast(verb), kind, StyleValue.Render(args[1]))
			return nil
		},
	}
}

func parseKind(raw string) (shelf.Kind, error) {
	k := shelf.Kind(raw)
	if !k.Valid() {
		return "", errors.New(errors.ErrCodeInvalidKind, "unknown item kind %q (want book or ornament)", raw)
	}
	return k, nil
}

func verbPast(verb string) string {
	switch verb {
	case "archive":
		return "Archived"
	case "restore":
		return "Restored"
	case "delete":
		return "Deleted"
	}
	return verb
}

// initCommand creates the init command that seeds the store with the
// starter library.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Seed the store with the starter library",
		Long: `Write the starter library (three books and the music player) to the
configured store. A store that already holds a different library is left
alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			seeded, err := seedLibrary(ctx, st, force)
			if err != nil {
				return err
			}
			if !seeded {
				printWarning("The %s store already holds a library", cfg.Store.Backend)
				printNextStep("Replace it", "shelfspace init --force")
				return nil
			}
			printSuccess("Seeded the %s store", cfg.Store.Backend)
			if cfg.Store.Backend == store.BackendFile {
				path := cfg.Store.Path
				if path == "" {
					path, _ = store.DefaultPath()
				}
				printFile(path)
			}
			printNextStep("Arrange it", "shelfspace tui")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing library")
	return cmd
}

// seedLibrary saves the starter library. Without force it only does so
// when the store holds nothing but the starter library already.
func seedLibrary(ctx context.Context, st store.Store, force bool) (bool, error) {
	if !force {
		lib, err := st.Load(ctx)
		if err != nil {
			return false, err
		}
		if !reflect.DeepEqual(lib, store.Default()) {
			return false, nil
		}
	}
	return true, st.Save(ctx, store.Default())
}
