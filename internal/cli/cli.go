// Package cli implements grantctl, a terminal front end for grant lookups
// and local annotations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"grantbot/internal/annotation"
	"grantbot/internal/model"
	"grantbot/internal/session"
)

// LocalSession is the session ID the CLI keeps its annotations under.
const LocalSession int64 = 0

var (
	version = "dev"
	commit  = "none"
)

// SetVersionInfo sets the values printed by the version command.
func SetVersionInfo(v, c string) {
	version = v
	commit = c
}

// Deps opens the resources the commands need. Either func may be called
// at most once per command.
type Deps struct {
	// OpenStore opens the annotation store and returns a func that closes it.
	OpenStore func() (*annotation.Store, func(), error)
	// NewResearcher creates the AI lookup client.
	NewResearcher func(ctx context.Context) (session.Researcher, error)
	Log           *slog.Logger
}

type app struct {
	deps Deps
	out  io.Writer
	st   styles

	query     string
	category  string
	favorites bool
}

// NewRootCmd builds the grantctl command tree writing to out.
func NewRootCmd(deps Deps, out io.Writer) *cobra.Command {
	if deps.Log == nil {
		deps.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &app{deps: deps, out: out, st: newStyles(out)}

	root := &cobra.Command{
		Use:           "grantctl",
		Short:         "Find federal and state small business grants",
		Long:          "grantctl looks up small business grants for a US state with an AI search service and keeps local favorites and ratings.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	searchCmd := &cobra.Command{
		Use:   "search <state>",
		Short: "Look up grants for a state",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runSearch,
	}
	searchCmd.Flags().StringVarP(&a.query, "query", "q", "", "only show grants containing every word")
	searchCmd.Flags().StringVarP(&a.category, "type", "t", "all", "funding source: all, federal, state, corporate, other")
	searchCmd.Flags().BoolVarP(&a.favorites, "favorites", "f", false, "only show favorite grants")

	root.AddCommand(
		&cobra.Command{
			Use:   "states",
			Short: "List the states grants can be searched in",
			Args:  cobra.NoArgs,
			Run:   a.runStates,
		},
		searchCmd,
		&cobra.Command{
			Use:   "news <state>",
			Short: "Show the latest grant news for a state",
			Args:  cobra.MinimumNArgs(1),
			RunE:  a.runNews,
		},
		&cobra.Command{
			Use:   "favorite <name>",
			Short: "Add or remove a grant from favorites",
			Args:  cobra.MinimumNArgs(1),
			RunE:  a.runFavorite,
		},
		&cobra.Command{
			Use:   "rate <name> <0-5>",
			Short: "Rate a grant (0 clears the rating)",
			Args:  cobra.MinimumNArgs(2),
			RunE:  a.runRate,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(out, "grantctl %s (commit: %s)\n", version, commit)
			},
		},
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, deps Deps, out, errOut io.Writer, args []string) int {
	root := NewRootCmd(deps, out)
	root.SetErr(errOut)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) runStates(cmd *cobra.Command, args []string) {
	for _, s := range model.USStates {
		fmt.Fprintln(a.out, s)
	}
}

func lookupState(args []string) (string, error) {
	input := strings.Join(args, " ")
	state, ok := model.LookupState(input)
	if !ok {
		return "", fmt.Errorf("unknown state %q, see grantctl states", input)
	}
	return state, nil
}

func (a *app) runSearch(cmd *cobra.Command, args []string) error {
	state, err := lookupState(args)
	if err != nil {
		return err
	}
	category, ok := model.ParseCategory(a.category)
	if !ok {
		return fmt.Errorf("unknown grant type %q", a.category)
	}

	store, closeStore, err := a.deps.OpenStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	research, err := a.deps.NewResearcher(cmd.Context())
	if err != nil {
		return fmt.Errorf("create research client: %w", err)
	}

	sessions := session.NewManager(research, store, 0, a.deps.Log)
	defer sessions.Close()

	ctx := cmd.Context()
	fmt.Fprintln(a.out, a.st.dim.Render(fmt.Sprintf("Searching for grants in %s…", state)))
	snap, _ := sessions.Search(ctx, LocalSession, state)
	if snap.Status == session.StatusError {
		return fmt.Errorf("search grants in %s: %w", state, snap.Err)
	}

	if a.query != "" {
		snap = sessions.Find(ctx, LocalSession, a.query)
	}
	if category != model.CategoryAll {
		snap = sessions.SetCategory(ctx, LocalSession, category)
	}
	if a.favorites {
		snap = sessions.ToggleFavoritesOnly(ctx, LocalSession)
	}

	a.renderSnapshot(snap)
	return nil
}

func (a *app) runNews(cmd *cobra.Command, args []string) error {
	state, err := lookupState(args)
	if err != nil {
		return err
	}
	research, err := a.deps.NewResearcher(cmd.Context())
	if err != nil {
		return fmt.Errorf("create research client: %w", err)
	}

	articles, err := research.News(cmd.Context(), state)
	if err != nil {
		return fmt.Errorf("load news for %s: %w", state, err)
	}
	a.renderNews(state, articles)
	return nil
}

func (a *app) runFavorite(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return errors.New("grant name is required")
	}

	store, closeStore, err := a.deps.OpenStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	ctx := cmd.Context()
	fav := store.LoadFavorites(ctx, LocalSession)
	if fav.Toggle(name) {
		fmt.Fprintf(a.out, "Added %s to favorites.\n", a.st.title.Render(name))
	} else {
		fmt.Fprintf(a.out, "Removed %s from favorites.\n", a.st.title.Render(name))
	}
	store.SaveFavorites(ctx, LocalSession, fav)
	return nil
}

func (a *app) runRate(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args[:len(args)-1], " "))
	if name == "" {
		return errors.New("grant name is required")
	}
	stars, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		return fmt.Errorf("invalid rating %q", args[len(args)-1])
	}

	store, closeStore, err := a.deps.OpenStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	ctx := cmd.Context()
	ratings := store.LoadRatings(ctx, LocalSession)
	if err := ratings.Set(name, stars); err != nil {
		return fmt.Errorf("rate %s: %w", name, err)
	}
	store.SaveRatings(ctx, LocalSession, ratings)

	if stars == 0 {
		fmt.Fprintf(a.out, "Rating cleared for %s.\n", a.st.title.Render(name))
		return nil
	}
	fmt.Fprintf(a.out, "Rated %s %s\n", a.st.title.Render(name), a.st.stars.Render(formatStars(stars)))
	return nil
}
