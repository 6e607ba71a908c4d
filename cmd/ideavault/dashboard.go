package main

import (
	"context"

	"github.com/spf13/cobra"

	"ideavault/internal/app"
	"ideavault/internal/controller"
	"ideavault/internal/logging"
	"ideavault/internal/tui"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive idea dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				ws.Log = logging.Discard()
				rec := &controller.Recorder{}
				d := ws.Dashboard(ctx, rec)
				return tui.Run(ctx, d, rec, ws.Session().User(ctx))
			})
		},
	}
}
