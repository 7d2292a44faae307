package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvcharge/app"
	"github.com/kilianp07/pvcharge/config"
	"github.com/kilianp07/pvcharge/infra/logger"
)

// checkCmd runs a single control cycle and exits. Intended for cron setups
// that prefer scheduling over the built-in loop.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one control cycle and exit",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Enabled {
		logger.New("check").Infof("controller disabled, exiting")
		return nil
	}
	svc, err := app.New(cfg, cfgPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("check").Errorf("service close: %v", err)
		}
	}()
	return svc.RunCycle(cmd.Context())
}
