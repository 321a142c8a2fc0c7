package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/taskboard/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbCfg, err := config.LoadDB()
	if err != nil {
		return err
	}

	db, err := openStore(cmd.Context(), dbCfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.Migrate(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(applied) == 0 {
		fmt.Fprintln(out, "database is up to date")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(out, "applied migration %05d\n", v)
	}
	return nil
}
