package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ideavault/internal/app"
	"ideavault/internal/controller"
	"ideavault/internal/logging"
	"ideavault/internal/tui"
)

var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "ideavault",
	Short: "IdeaVault CLI",
	Long: `IdeaVault captures product ideas and tracks them from draft to done.
- Ideas: title, description, tags, category, priority, and a status of Draft, In Progress, Completed or Archived.
- Store: ideas live on the IdeaVault API (ideavault serve); --offline keeps them in the workspace database instead.
- Assist: asks a language model for an implementation plan of an idea.
- Workspace: the .ideavault directory holding the local database, next to an optional ideavault.yml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.ResolveConfig(workspaceOptions())
		opts := logging.Options{Out: os.Stderr}
		if err == nil {
			opts.Level, opts.Format = cfg.Log.Level, cfg.Log.Format
		}
		if lvl := viper.GetString("log-level"); lvl != "" {
			opts.Level = lvl
		}
		if f := viper.GetString("log-format"); f != "" {
			opts.Format = f
		}
		l, lerr := logging.New(opts)
		if lerr != nil {
			return lerr
		}
		logger = l
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("IDEAVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().Bool("offline", false, "use the workspace database instead of the API")
	rootCmd.PersistentFlags().String("config", "", "config file (default <workspace>/ideavault.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides log.level)")
	rootCmd.PersistentFlags().String("log-format", "", "json or console (overrides log.format)")
	for _, name := range []string{"workspace", "json", "api-url", "offline", "config", "log-level", "log-format"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(ideaCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
}

func workspaceOptions() app.Options {
	return app.Options{
		Workspace:  viper.GetString("workspace"),
		ConfigPath: viper.GetString("config"),
		APIURL:     viper.GetString("api-url"),
		Offline:    viper.GetBool("offline"),
	}
}

func withWorkspace(ctx context.Context, fn func(context.Context, *app.Workspace) error) error {
	ws, err := app.Open(ctx, workspaceOptions(), logger)
	if err != nil {
		return err
	}
	defer ws.Close()
	return fn(ctx, ws)
}

// stderrNotifier prints controller notifications as styled lines.
var stderrNotifier = controller.NotifierFunc(func(n controller.Notification) {
	fmt.Fprintln(os.Stderr, tui.NotificationLine(n))
})

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
