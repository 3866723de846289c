package cmd

import (
	"context"
	"fmt"

	"github.com/5amCurfew/tap-oracle-oic/client"
	"github.com/5amCurfew/tap-oracle-oic/models"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Test probes connectivity: one token fetch, then a limit-1 request against
// each enabled API family. Failures across families are aggregated so a
// partially-scoped credential is diagnosed in one run.
func Test(config *models.TapConfig) error {
	c, err := client.New(config)
	if err != nil {
		return err
	}

	ctx := context.Background()

	if _, err := c.Tokens().Token(ctx); err != nil {
		return fmt.Errorf("token endpoint probe failed: %w", err)
	}
	log.Info("token endpoint reachable, credentials accepted")

	probes := map[string]string{
		"core": fmt.Sprintf("/ic/api/integration/%s/integrations", config.APIVersion),
	}
	if config.IncludeMonitoring {
		probes["monitoring"] = fmt.Sprintf("/ic/api/monitoring/%s/monitoring/instances", config.APIVersion)
	}
	if config.IncludeInfrastructure {
		probes["infrastructure"] = fmt.Sprintf("/ic/api/integration/%s/adapters", config.APIVersion)
	}
	if config.IncludeExtended {
		probes["extended"] = fmt.Sprintf("/ic/api/integration/%s/libraries", config.APIVersion)
	}

	var probeErrs error
	for family, path := range probes {
		if _, _, err := c.Get(ctx, path, map[string]string{"limit": "1"}); err != nil {
			log.WithFields(log.Fields{"family": family, "error": err}).Error("API family probe failed")
			probeErrs = multierr.Append(probeErrs, fmt.Errorf("%s: %w", family, err))
			continue
		}
		log.WithFields(log.Fields{"family": family}).Info("API family reachable")
	}

	if probeErrs != nil {
		return fmt.Errorf("connectivity test failed: %w", probeErrs)
	}

	log.Info("connectivity test passed")
	return nil
}
