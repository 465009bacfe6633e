package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// engineCmd runs the delivery loop without the API, for deployments that
// put the REST surface on separate replicas.
var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Run the delivery engine headless",
	Run:   engineLoop,
}

func init() {
	rootCmd.AddCommand(engineCmd)
}

func engineLoop(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := initSchemas(ctx); err != nil {
		logrus.Fatalf("Could not migrate schema: %v", err)
	}

	notifyEngine.Start(ctx)
	logrus.Info("Delivery engine running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	notifyEngine.Stop()
	if vk != nil {
		vk.Close()
	}
}
