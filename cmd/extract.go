package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/5amCurfew/tap-oracle-oic/client"
	"github.com/5amCurfew/tap-oracle-oic/models"
	"github.com/5amCurfew/tap-oracle-oic/streams"
	"github.com/5amCurfew/tap-oracle-oic/util"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ExecutionMetric struct {
	RunID             string        `json:"run_id"`
	ExecutionStart    time.Time     `json:"execution_start,omitempty"`
	ExecutionEnd      time.Time     `json:"execution_end,omitempty"`
	ExecutionDuration time.Duration `json:"execution_duration,omitempty"`
	NewRecords        uint64        `json:"new_records"`
}

// Extract drains every enabled stream serially, emitting SCHEMA, RECORD and
// STATE messages to stdout. One stream is fully drained before the next
// begins; a terminal client error aborts the run.
func Extract(config *models.TapConfig, catalogPath, statePath string) error {
	execution := ExecutionMetric{
		RunID:          uuid.NewString(),
		ExecutionStart: time.Now().UTC(),
	}

	state := models.NewState()
	if statePath != "" {
		loaded, err := models.LoadState(statePath)
		if err != nil {
			return fmt.Errorf("error reading state json: %w", err)
		}
		state = loaded
	}

	var selected map[string]bool
	if catalogPath != "" {
		catalog, err := models.LoadCatalog(catalogPath)
		if err != nil {
			return fmt.Errorf("error reading catalog json: %w", err)
		}
		selected = catalog.Selected()

		known := map[string]bool{}
		for _, descriptor := range streams.Registry(config) {
			known[descriptor.Name] = true
		}
		for name := range selected {
			if !known[name] {
				log.WithFields(log.Fields{"stream": name}).Warn("catalog names an unknown or disabled stream, skipping")
			}
		}
	}

	c, err := client.New(config)
	if err != nil {
		return err
	}

	ctx := context.Background()

	entries := map[string]models.CatalogEntry{}
	for _, entry := range streams.BuildCatalog(config).Streams {
		entries[entry.TapStreamID] = entry
	}

	for _, descriptor := range streams.Registry(config) {
		if selected != nil && !selected[descriptor.Name] {
			log.WithFields(log.Fields{"stream": descriptor.Name}).Info("stream not in catalog, skipping")
			continue
		}

		entry := entries[descriptor.Name]
		if err := entry.Message(); err != nil {
			return err
		}

		if err := extractStream(ctx, c, config, descriptor, entry, state, &execution); err != nil {
			return err
		}

		if err := state.Message(); err != nil {
			return err
		}
	}

	if err := state.Write(); err != nil {
		return err
	}

	execution.ExecutionEnd = time.Now().UTC()
	execution.ExecutionDuration = execution.ExecutionEnd.Sub(execution.ExecutionStart)
	log.WithFields(log.Fields{"metrics": execution}).Info("execution metrics")
	return nil
}

// extractStream runs one paginator to exhaustion, emitting a RECORD message
// per record and advancing the stream's bookmark.
func extractStream(
	ctx context.Context,
	c *client.Client,
	config *models.TapConfig,
	descriptor streams.Descriptor,
	entry models.CatalogEntry,
	state *models.TapState,
	execution *ExecutionMetric,
) error {
	bookmark := state.Get(descriptor.Name, descriptor.ReplicationKey)
	if bookmark == "" {
		bookmark = config.StartDate
	}

	log.WithFields(log.Fields{
		"stream":   descriptor.Name,
		"bookmark": bookmark,
	}).Info(fmt.Sprintf("generating records from %s", descriptor.FullPath(config.APIVersion)))

	paginator := client.NewPaginator(
		c,
		descriptor.Name,
		descriptor.FullPath(config.APIVersion),
		descriptor.QueryParams(bookmark),
		config.PageSize,
	)

	return paginator.Run(ctx, func(record map[string]interface{}) {
		if valid, validationErr := entry.RecordVersusSchema(record); !valid {
			log.WithFields(log.Fields{
				"stream": descriptor.Name,
				"error":  validationErr,
			}).Warn("record violates schema constraints in catalog")
		}

		message := models.Message{
			Type:          "RECORD",
			Stream:        descriptor.Name,
			Record:        record,
			TimeExtracted: util.ToString(record["_tap_extracted_at"]),
		}
		if err := message.Emit(); err != nil {
			log.WithFields(log.Fields{"stream": descriptor.Name, "error": err}).Warn("error emitting record message - skipping...")
			return
		}

		if descriptor.ReplicationKey != "" {
			state.Advance(descriptor.Name, descriptor.ReplicationKey, util.ToString(record[descriptor.ReplicationKey]))
		}
		execution.NewRecords++
	})
}
