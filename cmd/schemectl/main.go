package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemematch/internal/app"
	"github.com/kailas-cloud/schemematch/internal/config"
	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	"github.com/kailas-cloud/schemematch/internal/domain/intent"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/mode"
	"github.com/kailas-cloud/schemematch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/schemematch/internal/logger"
	"github.com/kailas-cloud/schemematch/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "schemectl",
		Usage:   "Query and seed the welfare scheme corpus",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Config environment (reads config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Print the structured intent of a free-text query",
				ArgsUsage: "<query>",
				Action:    parseCommand,
			},
			{
				Name:  "check",
				Usage: "Evaluate a profile against eligibility text or a stored scheme",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "profile",
						Aliases:  []string{"p"},
						Usage:    "Profile as JSON, or @path to a JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Eligibility text to evaluate (offline)",
					},
					&cli.StringFlag{
						Name:  "scheme-id",
						Usage: "Stored scheme to evaluate (needs the corpus)",
					},
				},
				Action: checkCommand,
			},
			{
				Name:      "search",
				Usage:     "Run a smart search against the configured corpus",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Usage: "hybrid, semantic or keyword", Value: string(mode.Hybrid)},
					&cli.StringSliceFlag{Name: "category", Usage: "Category filter (repeatable)"},
					&cli.StringFlag{Name: "state", Usage: "State filter"},
					&cli.StringFlag{Name: "level", Usage: "Central or State"},
					&cli.StringFlag{Name: "user-id", Usage: "Load the stored profile of this user"},
					&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "Profile as JSON, or @path"},
					&cli.IntFlag{Name: "limit", Value: request.DefaultLimit},
					&cli.IntFlag{Name: "offset"},
				},
				Action: searchCommand,
			},
			{
				Name:  "seed",
				Usage: "Create the corpus index and load schemes from a JSON array file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Schemes JSON file", Required: true},
				},
				Action: seedCommand,
			},
			{
				Name:  "delete",
				Usage: "Remove a scheme from the corpus",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scheme-id", Required: true},
				},
				Action: deleteCommand,
			},
			{
				Name:  "put-profile",
				Usage: "Store a user profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user-id", Required: true},
					&cli.StringFlag{
						Name:     "profile",
						Aliases:  []string{"p"},
						Usage:    "Profile as JSON, or @path",
						Required: true,
					},
				},
				Action: putProfileCommand,
			},
		},
	}
}

func parseCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("query argument is required")
	}
	return printJSON(c.App.Writer, intent.Parse(query))
}

func checkCommand(c *cli.Context) error {
	p, err := readProfile(c.String("profile"))
	if err != nil {
		return err
	}
	if p == nil {
		return errors.New("profile is required")
	}

	text, schemeID := c.String("text"), c.String("scheme-id")
	switch {
	case text != "" && schemeID != "":
		return errors.New("use either --text or --scheme-id, not both")
	case text != "":
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid profile: %w", err)
		}
		return printJSON(c.App.Writer, eligibility.NewEngine().CheckText(p, text))
	case schemeID == "":
		return errors.New("one of --text or --scheme-id is required")
	}

	return withApp(c, func(ctx context.Context, a *app.App) error {
		res, err := a.Eligibility.CheckScheme(ctx, schemeID, p)
		if err != nil {
			return fmt.Errorf("check scheme %s: %w", schemeID, err)
		}
		return printJSON(c.App.Writer, res)
	})
}

func searchCommand(c *cli.Context) error {
	q, err := buildQuery(c)
	if err != nil {
		return err
	}
	return withApp(c, func(ctx context.Context, a *app.App) error {
		res, err := a.Orchestrator.SmartSearch(ctx, q)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		return printJSON(c.App.Writer, res)
	})
}

func buildQuery(c *cli.Context) (request.SmartSearchQuery, error) {
	level, err := scheme.ParseLevel(c.String("level"))
	if err != nil {
		return request.SmartSearchQuery{}, fmt.Errorf("invalid level: %w", err)
	}
	f := filter.Filter{
		Categories: c.StringSlice("category"),
		State:      c.String("state"),
		Level:      level,
	}
	q, err := request.New(
		strings.Join(c.Args().Slice(), " "), mode.Mode(c.String("mode")), f, c.Int("limit"), c.Int("offset"),
	)
	if err != nil {
		return request.SmartSearchQuery{}, fmt.Errorf("invalid query: %w", err)
	}

	p, err := readProfile(c.String("profile"))
	if err != nil {
		return request.SmartSearchQuery{}, err
	}
	if p != nil {
		if err := p.Validate(); err != nil {
			return request.SmartSearchQuery{}, fmt.Errorf("invalid profile: %w", err)
		}
		q = q.WithProfile(p)
	}
	return q.WithUserID(c.String("user-id")), nil
}

// seedRecord is the on-disk scheme format. Unlike the API form it carries the stored vector.
type seedRecord struct {
	scheme.Scheme
	Embedding []float32 `json:"embedding,omitempty"`
}

func seedCommand(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("read schemes: %w", err)
	}
	var records []seedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode schemes: %w", err)
	}

	return withApp(c, func(ctx context.Context, a *app.App) error {
		if err := a.Corpus.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
		for i := range records {
			s := records[i].Scheme
			if len(records[i].Embedding) > 0 {
				s.Embedding = domain.FitDimensions(records[i].Embedding, a.Corpus.Dimensions())
			}
			if err := a.Corpus.Upsert(ctx, &s); err != nil {
				return fmt.Errorf("upsert scheme %q: %w", s.ID, err)
			}
		}
		fmt.Fprintf(c.App.Writer, "seeded %d schemes\n", len(records))
		return nil
	})
}

func deleteCommand(c *cli.Context) error {
	id := strings.TrimSpace(c.String("scheme-id"))
	if id == "" {
		return errors.New("scheme id is required")
	}
	return withApp(c, func(ctx context.Context, a *app.App) error {
		if err := a.Corpus.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete scheme: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "deleted scheme %s\n", id)
		return nil
	})
}

func putProfileCommand(c *cli.Context) error {
	p, err := readProfile(c.String("profile"))
	if err != nil {
		return err
	}
	if p == nil {
		return errors.New("profile is required")
	}
	userID := c.String("user-id")
	return withApp(c, func(ctx context.Context, a *app.App) error {
		if err := a.Profiles.Put(ctx, userID, p); err != nil {
			return fmt.Errorf("put profile: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "stored profile for %s\n", userID)
		return nil
	})
}

// withApp loads config, builds the services and runs fn.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, c.String("log-level"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := logpkg.ContextWithLogger(c.Context, logger)
	a, err := app.Build(ctx, &cfg, logger)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer a.Close()

	logger.Debug("Services ready", zap.String("driver", cfg.Corpus.Driver))
	return fn(ctx, a)
}

// readProfile decodes a profile from inline JSON or from @path. Empty input yields nil.
func readProfile(raw string) (*profile.UserProfile, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		data = b
	}
	var p profile.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
