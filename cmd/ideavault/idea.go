package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ideavault/internal/app"
	"ideavault/internal/controller"
	"ideavault/internal/domain"
	"ideavault/internal/tui"
)

func ideaCmd() *cobra.Command {
	idea := &cobra.Command{
		Use:   "idea",
		Short: "Manage ideas",
		Long:  "Ideas are listed, created and deleted against the API, or the workspace database with --offline. The list is re-fetched after every change.",
	}
	idea.AddCommand(ideaListCmd())
	idea.AddCommand(ideaNewCmd())
	idea.AddCommand(ideaShowCmd())
	idea.AddCommand(ideaDeleteCmd())
	idea.AddCommand(ideaAssistCmd())
	idea.AddCommand(ideaActivityCmd())
	return idea
}

func ideaListCmd() *cobra.Command {
	var category, filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ideas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := controller.ParseCategory(category)
			if err != nil {
				return err
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				d := ws.Dashboard(ctx, stderrNotifier)
				if err := d.List.SetCategory(cat); err != nil {
					return err
				}
				d.List.SetFilter(filter)
				if err := d.List.Load(ctx); err != nil {
					return err
				}
				ideas := d.List.Visible()
				if viper.GetBool("json") {
					return printJSON(ideas)
				}
				printIdeaTable(ideas)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "All Ideas, Draft, In Progress, Completed or Archived")
	cmd.Flags().StringVar(&filter, "filter", "", "case-insensitive title filter")
	return cmd
}

func ideaNewCmd() *cobra.Command {
	var title, description, tags, category, priority, status string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParseStatus(status)
			if err != nil {
				return err
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				d := ws.Dashboard(ctx, stderrNotifier)
				d.Create.Draft = controller.Draft{
					Title:       title,
					Description: description,
					Tags:        tags,
					Category:    category,
					Priority:    priority,
					Status:      st,
				}
				created, err := d.Submit(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(created)
				}
				printIdea(created)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "idea title (required)")
	cmd.Flags().StringVar(&description, "description", "", "idea description (required)")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&category, "category", "", "category, e.g. "+strings.Join(domain.SuggestedCategories, ", "))
	cmd.Flags().StringVar(&priority, "priority", domain.DefaultPriority, strings.Join(domain.Priorities, ", "))
	cmd.Flags().StringVar(&status, "status", string(domain.StatusDraft), "initial status")
	return cmd
}

func ideaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				var (
					idea domain.Idea
					err  error
				)
				if ws.Offline {
					idea, err = findIdea(ctx, ws, args[0])
				} else {
					idea, err = ws.Client(ctx).Get(ctx, args[0])
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(idea)
				}
				printIdea(idea)
				return nil
			})
		},
	}
}

func ideaDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				d := ws.Dashboard(ctx, stderrNotifier)
				if err := selectIdea(ctx, d, args[0]); err != nil {
					return err
				}
				if err := d.Delete(ctx); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"deleted": args[0], "remaining": len(d.List.Ideas())})
				}
				return nil
			})
		},
	}
}

func ideaAssistCmd() *cobra.Command {
	var focus, audience string
	var raw bool
	cmd := &cobra.Command{
		Use:   "assist <id>",
		Short: "Ask for an implementation plan of an idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				d := ws.Dashboard(ctx, stderrNotifier)
				if err := selectIdea(ctx, d, args[0]); err != nil {
					return err
				}
				text, err := d.Detail.RequestAssist(ctx, controller.AssistParams{KeyFocusAreas: focus, TargetAudience: audience})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]string{"id": args[0], "plan": text})
				}
				if raw {
					fmt.Println(text)
					return nil
				}
				fmt.Println(tui.RenderMarkdown(text, 100))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&focus, "focus", "", "key focus areas (default from assist.key_focus_areas)")
	cmd.Flags().StringVar(&audience, "audience", "", "target audience (default from assist.target_audience)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the plan without markdown rendering")
	return cmd
}

func ideaActivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activity <id>",
		Short: "Show the server-side activity log of an idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				if ws.Offline {
					return errors.New("activity is recorded by the API server; drop --offline")
				}
				events, err := ws.Client(ctx).Activity(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "When", "Type", "Actor", "Payload"})
				for _, e := range events {
					tw.AppendRow(table.Row{e.ID, age(e.TS), e.Type, e.ActorID, e.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
}

// selectIdea loads the list and selects id in the detail controller.
func selectIdea(ctx context.Context, d *controller.Dashboard, id string) error {
	if err := d.List.Load(ctx); err != nil {
		return err
	}
	for _, idea := range d.List.Ideas() {
		if idea.ID == id {
			d.Detail.Select(idea)
			return nil
		}
	}
	return fmt.Errorf("idea %s not found", id)
}

func findIdea(ctx context.Context, ws *app.Workspace, id string) (domain.Idea, error) {
	ideas, err := ws.Store(ctx).List(ctx)
	if err != nil {
		return domain.Idea{}, err
	}
	for _, idea := range ideas {
		if idea.ID == id {
			return idea, nil
		}
	}
	return domain.Idea{}, fmt.Errorf("idea %s not found", id)
}

func printIdeaTable(ideas []domain.Idea) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Category", "Tags", "Created"})
	for _, i := range ideas {
		tw.AppendRow(table.Row{i.ID, i.Title, i.Status, i.Priority, i.Category, i.Tags.String(), age(i.CreatedAt)})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d ideas", len(ideas))})
	tw.Render()
}

func printIdea(i domain.Idea) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendRows([]table.Row{
		{"ID", i.ID},
		{"Title", i.Title},
		{"Description", i.Description},
		{"Status", i.Status},
		{"Priority", i.Priority},
		{"Category", i.Category},
		{"Tags", i.Tags.String()},
		{"Created", age(i.CreatedAt) + " by " + i.CreatedBy},
		{"Updated", age(i.UpdatedAt)},
	})
	tw.Render()
}

func age(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}
