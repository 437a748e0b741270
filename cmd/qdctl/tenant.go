package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"queridodiario/internal/repository"
	"queridodiario/internal/security"
	"queridodiario/internal/service"
)

func newTenantCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenant accounts",
	}

	// withAuth opens the database for the duration of one subcommand
	withAuth := func(run func(cmd *cobra.Command, auth *service.AuthService, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			// Sessions are never issued from the CLI
			sessions := security.NewSessionManager(a.cfg.SessionSecret, a.cfg.SessionDuration)
			return run(cmd, service.NewAuthService(repository.NewTenantRepository(db), sessions, a.logger), args)
		}
	}

	var name, password, plan string
	create := &cobra.Command{
		Use:   "create <email>",
		Short: "Create a tenant account",
		Long: `Create a tenant account.

Without --password the account can only sign in with Google.

Examples:
  qdctl tenant create ana@example.com --name Ana --password s3cretpass
  qdctl tenant create escola@example.com --name "Escola" --plan pro`,
		Args: cobra.ExactArgs(1),
		RunE: withAuth(func(cmd *cobra.Command, auth *service.AuthService, args []string) error {
			tenant, err := auth.CreateTenant(cmd.Context(), args[0], password, name, plan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tenant %s (%s, plan %s)\n", tenant.ID, tenant.Email, tenant.Plan)
			return nil
		}),
	}
	create.Flags().StringVar(&name, "name", "", "display name (required)")
	create.Flags().StringVar(&password, "password", "", "initial password")
	create.Flags().StringVar(&plan, "plan", "", "plan tier (default free)")
	_ = create.MarkFlagRequired("name")

	setPassword := &cobra.Command{
		Use:   "set-password <email> <password>",
		Short: "Replace a tenant's password",
		Args:  cobra.ExactArgs(2),
		RunE: withAuth(func(cmd *cobra.Command, auth *service.AuthService, args []string) error {
			if err := auth.SetPassword(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", args[0])
			return nil
		}),
	}

	setPlan := &cobra.Command{
		Use:   "set-plan <email> <plan>",
		Short: "Move a tenant to another plan tier",
		Args:  cobra.ExactArgs(2),
		RunE: withAuth(func(cmd *cobra.Command, auth *service.AuthService, args []string) error {
			if err := auth.SetPlan(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan of %s set to %s\n", args[0], args[1])
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tenant accounts",
		Args:  cobra.NoArgs,
		RunE: withAuth(func(cmd *cobra.Command, auth *service.AuthService, args []string) error {
			tenants, err := auth.ListTenants(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tPLAN\tPASSWORD")
			for _, t := range tenants {
				hasPassword := "no"
				if t.PasswordHash != "" {
					hasPassword = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Email, t.Name, t.Plan, hasPassword)
			}
			return w.Flush()
		}),
	}

	remove := &cobra.Command{
		Use:   "delete <email>",
		Short: "Delete a tenant with all of its diaries",
		Args:  cobra.ExactArgs(1),
		RunE: withAuth(func(cmd *cobra.Command, auth *service.AuthService, args []string) error {
			if err := auth.DeleteTenant(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tenant %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(create, setPassword, setPlan, list, remove)
	return cmd
}
