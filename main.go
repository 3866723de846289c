package main

import (
	"fmt"
	"os"

	"github.com/5amCurfew/tap-oracle-oic/cmd"
	"github.com/5amCurfew/tap-oracle-oic/models"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "0.2.0"

var (
	cfgPath     string
	catalogPath string
	statePath   string
	discover    bool
	testProbe   bool
)

func main() {
	Execute()
}

func Execute() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to the tap configuration JSON (required)")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a catalog JSON restricting which streams are extracted")
	rootCmd.Flags().StringVar(&statePath, "state", "", "path to a state JSON to resume from bookmarks")
	rootCmd.Flags().BoolVarP(&discover, "discover", "d", false, "emit the stream catalog to stdout and exit")
	rootCmd.Flags().BoolVarP(&testProbe, "test", "t", false, "probe Oracle OIC connectivity and exit 0/1")
	_ = rootCmd.MarkFlagRequired("config")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

var rootCmd = &cobra.Command{
	Use:           "tap-oracle-oic --config CONFIG_JSON",
	Version:       version,
	Short:         "tap-oracle-oic - Oracle Integration Cloud data extraction CLI",
	Long:          `tap-oracle-oic is a Singer tap that extracts integrations, connections, packages, lookups and monitoring data from Oracle Integration Cloud (OIC) REST APIs and emits SCHEMA/RECORD/STATE messages to stdout.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(command *cobra.Command, args []string) error {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetOutput(os.Stderr)

		config, err := models.LoadConfig(cfgPath)
		if err != nil {
			log.WithFields(log.Fields{"error": err}).Error("failed to load tap configuration")
			return fmt.Errorf("error loading config JSON: %w", err)
		}

		switch {
		case discover:
			if err := cmd.Discover(config); err != nil {
				log.WithFields(log.Fields{"error": err}).Error("discovery failed")
				return err
			}
		case testProbe:
			if err := cmd.Test(config); err != nil {
				log.WithFields(log.Fields{"error": err}).Error("connectivity test failed")
				return err
			}
		default:
			if err := cmd.Extract(config, catalogPath, statePath); err != nil {
				log.WithFields(log.Fields{"error": err}).Error("failed to extract records")
				return err
			}
		}

		return nil
	},
}
