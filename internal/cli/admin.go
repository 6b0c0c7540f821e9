package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shareregistry/internal/app"
)

func CreateAdminCommand() *cobra.Command {
	var username, password, emailAddr string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account if the username is free",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				user, created, err := a.Accounts.EnsureAdmin(ctx, username, password, emailAddr)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Username, user.ID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "account %s already exists, left unchanged\n", user.Username)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "Login name")
	cmd.Flags().StringVar(&password, "password", "", "Initial password, at least 8 characters")
	cmd.Flags().StringVar(&emailAddr, "email", "", "Contact address for password resets")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
