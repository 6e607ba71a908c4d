// Package app wires a workspace: config, database, session and the idea
// store the controllers run against.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ideavault/internal/config"
	"ideavault/internal/controller"
	"ideavault/internal/db"
	"ideavault/internal/localstore"
	"ideavault/internal/migrate"
	"ideavault/internal/planner"
	"ideavault/internal/repo"
	"ideavault/internal/session"
	ideavaultsdk "ideavault/sdk/go"
)

// Options come from CLI flags; zero values fall back to the config file.
type Options struct {
	Workspace  string
	ConfigPath string
	APIURL     string
	Offline    bool
}

type Workspace struct {
	Dir     string
	Config  *config.Config
	DB      *sql.DB
	Repo    repo.Repo
	Log     zerolog.Logger
	Offline bool
}

// ResolveConfig reads the config named by opts, or the workspace default,
// and applies the API URL override.
func ResolveConfig(opts Options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.FromFile(opts.ConfigPath)
	} else {
		cfg, err = config.LoadOptional(opts.Workspace)
	}
	if err != nil {
		return nil, err
	}
	if u := strings.TrimSpace(opts.APIURL); u != "" {
		cfg.API.BaseURL = u
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Open resolves config and opens the migrated workspace database.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (*Workspace, error) {
	cfg, err := ResolveConfig(opts)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(db.Config{Workspace: opts.Workspace})
	if err != nil {
		return nil, fmt.Errorf("open workspace db: %w", err)
	}
	version, err := migrate.Migrate(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Debug().Int("schema_version", version).Str("db", db.Path(opts.Workspace)).Msg("workspace ready")
	return &Workspace{
		Dir:     opts.Workspace,
		Config:  cfg,
		DB:      conn,
		Repo:    repo.Repo{DB: conn},
		Log:     log,
		Offline: opts.Offline,
	}, nil
}

func (w *Workspace) Close() error {
	return w.DB.Close()
}

func (w *Workspace) Session() *session.Manager {
	return &session.Manager{
		Repo:     w.Repo,
		Email:    w.Config.Auth.Email,
		Password: w.Config.Auth.Password,
		Secret:   w.Config.Server.JWTSecret,
	}
}

// Client returns an API client carrying the current session token.
func (w *Workspace) Client(ctx context.Context) *ideavaultsdk.Client {
	return ideavaultsdk.New(ideavaultsdk.Config{
		BaseURL:     w.Config.API.BaseURL,
		BearerToken: w.Session().Token(ctx),
		Timeout:     w.Config.API.Timeout,
	})
}

// Store returns the remote API client, or the local store when offline.
func (w *Workspace) Store(ctx context.Context) controller.Store {
	if w.Offline {
		return localstore.New(w.Repo)
	}
	return w.Client(ctx)
}

// Planner returns the assistance backend. Offline, the completion endpoint
// is called directly and nil is returned when no token is available.
func (w *Workspace) Planner(ctx context.Context) controller.Planner {
	if !w.Offline {
		return w.Client(ctx)
	}
	token := w.Config.PlannerToken()
	if token == "" {
		return nil
	}
	return directPlanner{client: w.PlannerClient(token)}
}

// PlannerClient builds the completion client from the planner section.
func (w *Workspace) PlannerClient(token string) *planner.Client {
	p := w.Config.Planner
	return planner.New(p.URL, p.Model, token, p.Timeout)
}

type directPlanner struct {
	client *planner.Client
}

func (d directPlanner) Plan(ctx context.Context, req ideavaultsdk.PlanRequest) (string, error) {
	return d.client.Plan(ctx, planner.Request{
		Domain:               req.Domain,
		BriefIdeaDescription: req.BriefIdeaDescription,
		KeyFocusAreas:        req.KeyFocusAreas,
		TargetAudienceUsers:  req.TargetAudienceUsers,
	})
}

// Dashboard assembles the three controllers over the workspace store.
func (w *Workspace) Dashboard(ctx context.Context, notifier controller.Notifier) *controller.Dashboard {
	d := controller.NewDashboard(w.Store(ctx), w.Planner(ctx), notifier, w.Log)
	user := w.Session().User(ctx)
	d.Create.User = func() string { return user }
	if v := w.Config.Assist.KeyFocusAreas; v != "" {
		d.Detail.Defaults.KeyFocusAreas = v
	}
	if v := w.Config.Assist.TargetAudience; v != "" {
		d.Detail.Defaults.TargetAudience = v
	}
	return d
}
