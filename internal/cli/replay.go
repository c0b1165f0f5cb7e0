package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shelfspace/pkg/errors"
	"github.com/matzehuels/shelfspace/pkg/session"
	"github.com/matzehuels/shelfspace/pkg/shelf"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// replayCommand creates the replay command for scripted pointer sessions.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		commit bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "replay <script.toml>",
		Short: "Feed a scripted pointer session through the shelf",
		Long: `Replay a list of pointer events against the library and print what the
shelf does after each one.

The script is TOML with one [[event]] table per event:

  [archive_zone]          # optional, container pixels
  x = 0
  y = 900
  width = 200
  height = 200

  [[event]]
  type = "down"           # down, move or up
  item = "1"              # down only; omit to grab whatever is at x,y
  x = 60
  y = 200

By default the library is copied into memory and left untouched. Use
--commit to save the results to the configured store.`,
		Example: `  shelfspace replay drag.toml
  shelfspace replay drag.toml --json
  shelfspace replay drag.toml --commit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(args[0])
			if err != nil {
				return err
			}
			return c.runReplay(cmd.Context(), script, commit, asJSON)
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "save committed placements to the store")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print every step as JSON")
	return cmd
}

// script is a recorded pointer session.
type script struct {
	ArchiveZone *shelf.Rect   `toml:"archive_zone"`
	Events      []scriptEvent `toml:"event"`
}

type scriptEvent struct {
	Type string  `toml:"type"`
	Item string  `toml:"item"`
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
}

func (e scriptEvent) String() string {
	if e.Item != "" {
		return fmt.Sprintf("%s %s at (%g, %g)", e.Type, e.Item, e.X, e.Y)
	}
	return fmt.Sprintf("%s at (%g, %g)", e.Type, e.X, e.Y)
}

func loadScript(path string) (script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return script{}, fmt.Errorf("read script: %w", err)
	}
	return parseScript(string(data))
}

// parseScript decodes and checks a replay script.
func parseScript(data string) (script, error) {
	var s script
	md, err := toml.Decode(data, &s)
	if err != nil {
		return script{}, errors.Wrap(errors.ErrCodeInvalidScript, err, "parse script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return script{}, errors.New(errors.ErrCodeInvalidScript, "unknown script key %q", undecoded[0].String())
	}
	if len(s.Events) == 0 {
		return script{}, errors.New(errors.ErrCodeInvalidScript, "script has no events")
	}
	for i, ev := range s.Events {
		switch ev.Type {
		case "down":
		case "move", "up":
			if ev.Item != "" {
				return script{}, errors.New(errors.ErrCodeInvalidScript, "event %d: item is only allowed on down", i+1)
			}
		default:
			return script{}, errors.New(errors.ErrCodeInvalidScript, "event %d: unknown type %q (want down, move or up)", i+1, ev.Type)
		}
	}
	return s, nil
}

// replayStep is the JSON form of one replayed event.
type replayStep struct {
	Event   string      `json:"event"`
	Frame   shelf.Frame `json:"frame"`
	Ghost   bool        `json:"ghost"`
	Effects []string    `json:"effects,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (c *CLI) runReplay(ctx context.Context, sc script, commit, asJSON bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if !commit {
		lib, err := st.Load(ctx)
		st.Close()
		if err != nil {
			return err
		}
		st = store.NewMemoryStore(lib)
	}

	sess, err := session.Open(ctx, st, session.Options{Geometry: cfg.Geometry, Logger: c.Logger})
	if err != nil {
		st.Close()
		return err
	}
	defer sess.Close()
	if sc.ArchiveZone != nil {
		sess.SetArchiveZone(sc.ArchiveZone)
	}

	steps, err := replay(ctx, sess, sc.Events)
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(steps); encErr != nil {
			return encErr
		}
		return err
	}

	prog := newProgress(c.Logger)
	for _, step := range steps {
		printStep(step)
	}
	if err != nil {
		return err
	}
	printNewline()
	if commit {
		printSuccess("Saved to the %s store", cfg.Store.Backend)
	} else {
		printNextStep("Save the result", "shelfspace replay --commit <script.toml>")
	}
	prog.done(fmt.Sprintf("Replayed %d events", len(steps)))
	return nil
}

// replay dispatches events in order and records the frame after each. It
// stops at the first error.
func replay(ctx context.Context, sess *session.Session, events []scriptEvent) ([]replayStep, error) {
	steps := make([]replayStep, 0, len(events))
	for _, ev := range events {
		var (
			res session.Result
			err error
		)
		switch ev.Type {
		case "down":
			if ev.Item == "" {
				var hit bool
				res, hit, err = sess.Grab(ctx, ev.X, ev.Y)
				if err == nil && !hit {
					err = errors.New(errors.ErrCodeItemNotFound, "no item at (%g, %g)", ev.X, ev.Y)
				}
			} else {
				res, err = sess.PointerDown(ctx, ev.Item, ev.X, ev.Y)
			}
		case "move":
			res, err = sess.PointerMove(ctx, ev.X, ev.Y)
		case "up":
			res, err = sess.PointerUp(ctx, ev.X, ev.Y)
		}

		st, frame := sess.Snapshot()
		step := replayStep{Event: ev.String(), Frame: frame, Ghost: st.Ghost}
		for _, eff := range res.Effects {
			step.Effects = append(step.Effects, describeEffect(eff))
		}
		if err != nil {
			step.Error = errors.UserMessage(err)
			return append(steps, step), fmt.Errorf("%s: %w", ev, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// describeEffect renders an effect as one line.
func describeEffect(eff shelf.Effect) string {
	switch e := eff.(type) {
	case shelf.Reorder:
		parts := make([]string, len(e.Placements))
		for i, p := range e.Placements {
			parts[i] = fmt.Sprintf("%s@%d:%g", p.ID, p.Shelf, p.X)
		}
		return fmt.Sprintf("reorder %s [%s]", e.Kind, strings.Join(parts, " "))
	case shelf.Archive:
		return fmt.Sprintf("archive %s %s", e.Kind, e.ID)
	case shelf.Activate:
		return fmt.Sprintf("activate %s %s", e.Entry.Kind, e.Entry.ID)
	}
	return fmt.Sprintf("%T", eff)
}

func printStep(s replayStep) {
	printInfo("%s", s.Event)
	if s.Error != "" {
		printError("%s", s.Error)
		return
	}
	if s.Frame.TargetShelf >= 0 {
		mode := "free"
		if s.Frame.Magnetic {
			mode = fmt.Sprintf("snap at %d", s.Frame.InsertIndex)
		}
		target := fmt.Sprintf("shelf %d", s.Frame.TargetShelf)
		if s.Ghost {
			target += " (new)"
		}
		printDetail("%s, %s", target, mode)
	}
	for _, eff := range s.Effects {
		printSuccess("%s", eff)
	}
}
