package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ideavault/internal/app"
	"ideavault/internal/domain"
	"ideavault/internal/session"
)

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				s, err := ws.Session().Login(ctx, email, password)
				if err != nil {
					logger.Warn().Str("email", email).Msg("sign-in rejected")
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"email": s.Email, "expiresAt": s.ExpiresAt, "token": s.Token != ""})
				}
				fmt.Printf("Signed in as %s (session expires %s)\n", s.Email, humanize.Time(s.ExpiresAt))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				if err := ws.Session().Logout(ctx); err != nil {
					return err
				}
				if !viper.GetBool("json") {
					fmt.Println("Signed out")
				}
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				s, err := ws.Session().Current(ctx)
				if errors.Is(err, session.ErrNoSession) {
					if viper.GetBool("json") {
						return printJSON(map[string]any{"user": domain.AnonymousUser, "signedIn": false})
					}
					fmt.Printf("%s (not signed in)\n", domain.AnonymousUser)
					return nil
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"user": s.Email, "signedIn": true, "expiresAt": s.ExpiresAt})
				}
				fmt.Printf("%s (session expires %s)\n", s.Email, humanize.Time(s.ExpiresAt))
				return nil
			})
		},
	}
}
