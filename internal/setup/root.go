// Package setup implements the petnest-setup command: schema migrations and
// bootstrap of the first administrator account.
package setup

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/server/auth"
	"github.com/dmitrijs2005/petnest/internal/server/config"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

// Test seams.
var (
	openDB         = dbx.Open
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type options struct {
	configPath string
	dsn        string
}

// load resolves the server configuration the same way the API does, minus
// command-line flags, then applies --dsn.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dsn != "" {
		cfg.DatabaseDSN = o.dsn
	}
	return cfg, nil
}

func (o *options) open(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "petnest-setup",
		Short:         "Prepare a PetNest database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "server config file (JSON or YAML)")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "database DSN, overrides config and environment")

	root.AddCommand(migrateCmd(opts), createAdminCmd(opts))
	return root
}

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, db, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := newRepoManager().RunMigrations(ctx, db); err != nil {
				return fmt.Errorf("migrations error: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

func createAdminCmd(opts *options) *cobra.Command {
	var in AdminInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Username = strings.TrimSpace(in.Username)
			in.Email = strings.TrimSpace(in.Email)
			if in.Username == "" || in.Email == "" {
				return fmt.Errorf("--username and --email are required")
			}

			password, err := promptNewPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			in.Password = password

			ctx := cmd.Context()
			cfg, db, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			m := newRepoManager()
			if err := m.RunMigrations(ctx, db); err != nil {
				return fmt.Errorf("migrations error: %w", err)
			}

			user, err := CreateAdmin(ctx, db, m, auth.NewPasswordHasher(cfg.BcryptCost), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %q created with id %d\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.FullName, "full-name", "", "admin display name")
	return cmd
}
