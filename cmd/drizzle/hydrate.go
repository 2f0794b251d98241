package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/drizzle/internal/config"
	"github.com/vango-dev/drizzle/internal/demo"
	"github.com/vango-dev/drizzle/internal/errors"
	"github.com/vango-dev/drizzle/pkg/directive"
	"github.com/vango-dev/drizzle/pkg/dom"
	"github.com/vango-dev/drizzle/pkg/hydrate"
	"github.com/vango-dev/drizzle/pkg/reactive"
)

// action is one replayed user interaction.
type action struct {
	kind     string
	selector string
	value    string
}

// actionFlag appends to a shared list so --click, --input and --submit
// replay in command-line order.
type actionFlag struct {
	kind string
	list *[]action
}

func (f actionFlag) String() string { return "" }

func (f actionFlag) Type() string {
	if f.kind == "input" {
		return "selector=value"
	}
	return "selector"
}

func (f actionFlag) Set(v string) error {
	a := action{kind: f.kind, selector: v}
	if f.kind == "input" {
		sel, val, ok := cutValue(v)
		if !ok {
			return fmt.Errorf("want selector=value, got %q", v)
		}
		a.selector, a.value = sel, val
	}
	if strings.TrimSpace(a.selector) == "" {
		return fmt.Errorf("empty selector")
	}
	*f.list = append(*f.list, a)
	return nil
}

// cutValue splits "selector=value" at the first '=' outside an attribute
// selector, so input[name=email]=x works.
func cutValue(s string) (selector, value string, ok bool) {
	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '=':
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

func (a action) apply(doc *dom.Document) error {
	el := doc.QuerySelector(a.selector)
	if el == nil {
		return errors.New("E141").WithDetail(fmt.Sprintf("--%s %q matched no element", a.kind, a.selector))
	}
	switch a.kind {
	case "click":
		el.Click()
	case "input":
		el.Input(a.value)
	case "submit":
		if el.Form() == nil {
			return errors.New("E141").WithDetail(fmt.Sprintf("--submit %q is not inside a form", a.selector))
		}
		el.Submit()
	}
	return nil
}

type hydrateOptions struct {
	actions []action
	verify  bool
	strict  bool
	settle  time.Duration
	sel     string
	quiet   bool
}

func hydrateCmd(flags *globalFlags) *cobra.Command {
	var opts hydrateOptions

	cmd := &cobra.Command{
		Use:   "hydrate <file|url|->",
		Short: "Hydrate a page headlessly and replay interactions",
		Long: `Load an HTML page, hydrate its islands with the directive runtime,
replay user interactions and print the resulting HTML.

Interactions run in command-line order on the runtime's event loop.
The demo components (Counter, LoginForm) are registered.

Examples:
  drizzle hydrate page.html --click 'button.increment' --click 'button.increment'
  drizzle hydrate http://localhost:3000/login --input '#email=ada@example.com' \
      --input '#password=correct horse' --submit form --settle 200ms
  drizzle render Counter --page | drizzle hydrate - --verify --select main`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.Hydration.Verify || cfg.Dev {
				opts.verify = true
			}
			return runHydrate(cmd.Context(), cmd, cfg, args[0], opts)
		},
	}

	cmd.Flags().Var(actionFlag{kind: "click", list: &opts.actions}, "click", "Click the first element matching the selector (repeatable)")
	cmd.Flags().Var(actionFlag{kind: "input", list: &opts.actions}, "input", "Type a value into the first matching control (repeatable)")
	cmd.Flags().Var(actionFlag{kind: "submit", list: &opts.actions}, "submit", "Submit the form of the first matching element (repeatable)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "Report server markup that differs from a fresh render")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when an island does not hydrate")
	cmd.Flags().DurationVar(&opts.settle, "settle", 0, "Wait before printing, for asynchronous handlers")
	cmd.Flags().StringVar(&opts.sel, "select", "", "Print only the first element matching the selector")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the island summary")

	return cmd
}

func runHydrate(ctx context.Context, cmd *cobra.Command, cfg *config.Config, source string, opts hydrateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	markup, err := readSource(ctx, source, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := dom.Parse(bytes.NewReader(markup), dom.WithLogger(logger))
	if err != nil {
		return errors.New("E140").WithDetail("parsing " + source).Wrap(err)
	}

	sched := reactive.NewScheduler(reactive.WithLogger(logger))
	loop := reactive.NewLoop(sched)
	dirs := directive.NewRegistry()
	dirs.RegisterBuiltins()
	comps := hydrate.NewRegistry()
	demo.RegisterTo(comps, demo.LoginOptions{Loop: loop})
	rt := directive.New(doc,
		directive.WithScheduler(sched),
		directive.WithRegistry(dirs),
		directive.WithLogger(logger))
	defer rt.Close()

	bootOpts := []hydrate.Option{hydrate.WithRegistry(comps)}
	if opts.verify {
		bootOpts = append(bootOpts, hydrate.WithVerify())
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := loop.Run(gctx); !stderrors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	var (
		islands []*hydrate.Island
		out     string
	)
	runErr := func() error {
		defer cancel()
		if err := loop.Do(gctx, func() { islands = hydrate.Boot(rt, bootOpts...) }); err != nil {
			return err
		}
		for _, a := range opts.actions {
			var actErr error
			if err := loop.Do(gctx, func() { actErr = a.apply(doc) }); err != nil {
				return err
			}
			if actErr != nil {
				return actErr
			}
		}
		if opts.settle > 0 {
			select {
			case <-time.After(opts.settle):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		var snapErr error
		if err := loop.Do(gctx, func() { out, snapErr = snapshot(doc, opts.sel) }); err != nil {
			return err
		}
		return snapErr
	}()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	if !opts.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), hydrate.Summary(islands))
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if opts.strict {
		for _, island := range islands {
			if island.State() != hydrate.Bound {
				return island.Err()
			}
		}
	}
	return nil
}

func snapshot(doc *dom.Document, sel string) (string, error) {
	if sel == "" {
		return doc.String(), nil
	}
	el := doc.QuerySelector(sel)
	if el == nil {
		return "", errors.New("E141").WithDetail(fmt.Sprintf("--select %q matched no element", sel))
	}
	return el.OuterHTML(), nil
}

// readSource reads a page from stdin ("-"), an http(s) URL or a file.
func readSource(ctx context.Context, source string, stdin io.Reader) ([]byte, error) {
	switch {
	case source == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, usageError("invalid URL %q: %v", source, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", source, resp.Status)
		}
		return io.ReadAll(resp.Body)
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, usageError("reading %s: %v", source, err)
		}
		return data, nil
	}
}
