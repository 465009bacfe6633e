package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations and exit",
	Run: func(_ *cobra.Command, _ []string) {
		if err := initSchemas(context.Background()); err != nil {
			logrus.Fatalf("Migration failed: %v", err)
		}
		logrus.Info("Schema migrated")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
