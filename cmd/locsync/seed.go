package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/provision"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <manifest.yaml>",
		Short: "Create users, locales, projects and source strings from a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := provision.Load(args[0])
			if err != nil {
				return err
			}

			dbCtx, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			res, err := provision.Apply(cmd.Context(), dbCtx, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d locales, %d projects, %d resources, %d entities\n",
				res.Users, res.Locales, res.Projects, res.Resources, res.Entities)
			return nil
		},
	}
	return cmd
}
