package cli

import (
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/aakankshagupta18/klean-backend/internal/config"
	"github.com/aakankshagupta18/klean-backend/internal/infra/db/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|version|force N]",
	Short: "Apply or revert the ingredient schema",
	Example: `  klean migrate up
  klean migrate version
  klean migrate force 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	m, err := migrations.New(a.cfg.Database.Driver, config.MigrateURL(a.cfg.Database.Driver, a.dsn))
	if err != nil {
		return err
	}
	defer m.Close()

	out := cmd.OutOrStdout()
	switch args[0] {
	case "up":
		if err := migrations.Up(m); err != nil {
			return fmt.Errorf("up: %w", err)
		}
		fmt.Fprintln(out, "migrations applied successfully")
	case "down":
		if err := migrations.Down(m); err != nil {
			return fmt.Errorf("down: %w", err)
		}
		fmt.Fprintln(out, "migrations reverted successfully")
	case "version":
		v, dirty, err := m.Version()
		if err == migrate.ErrNilVersion {
			fmt.Fprintln(out, "no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		fmt.Fprintf(out, "version: %d, dirty: %v\n", v, dirty)
	case "force":
		if len(args) != 2 {
			return fmt.Errorf("force needs a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force: %w", err)
		}
		fmt.Fprintf(out, "forced to version %d\n", v)
	default:
		return fmt.Errorf("unknown migrate action %q", args[0])
	}
	return nil
}
