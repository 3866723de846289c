package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/5amCurfew/tap-oracle-oic/models"
	"github.com/5amCurfew/tap-oracle-oic/streams"
	log "github.com/sirupsen/logrus"
)

// Discover writes the Singer catalog for the enabled streams to stdout.
func Discover(config *models.TapConfig) error {
	catalog := streams.BuildCatalog(config)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(catalog); err != nil {
		return fmt.Errorf("error encoding catalog: %w", err)
	}

	log.WithFields(log.Fields{"streams": len(catalog.Streams)}).Info("catalog discovered")
	return nil
}
