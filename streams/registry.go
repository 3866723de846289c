package streams

import (
	"fmt"

	"github.com/5amCurfew/tap-oracle-oic/models"
)

// Descriptor declares one OIC stream as pure data: where it lives, how its
// records are keyed, and any endpoint-specific query parameters. This
// replaces per-stream subclassing with an explicit capability struct.
type Descriptor struct {
	Name           string
	Path           string
	APICategory    string
	PrimaryKeys    []string
	ReplicationKey string
	DefaultSort    string
	// ExtraParams supplies endpoint-specific query parameters; nil when the
	// stream has none.
	ExtraParams func(bookmark string) map[string]string
}

// API base paths per Oracle OIC REST documentation; the version segment
// follows the api_version config value.
var apiBasePaths = map[string]string{
	"core":           "/ic/api/integration/%s",
	"monitoring":     "/ic/api/monitoring/%s",
	"b2b":            "/ic/api/b2b/%s",
	"process":        "/ic/api/process/%s",
	"infrastructure": "/ic/api/integration/%s",
}

// FullPath joins the category base path and the stream path.
func (d Descriptor) FullPath(apiVersion string) string {
	base, ok := apiBasePaths[d.APICategory]
	if !ok {
		base = apiBasePaths["core"]
	}
	return fmt.Sprintf(base, apiVersion) + d.Path
}

// QueryParams builds the stream's static query parameters: default sort,
// the incremental replication filter when a bookmark (or start_date) exists,
// and any descriptor extras. Pagination limit/offset are added per page by
// the paginator.
func (d Descriptor) QueryParams(bookmark string) map[string]string {
	params := map[string]string{}

	if d.DefaultSort != "" {
		params["orderBy"] = d.DefaultSort
	}
	if d.ReplicationKey != "" && bookmark != "" {
		params[d.ReplicationKey+">="] = bookmark
	}
	if d.ExtraParams != nil {
		for k, v := range d.ExtraParams(bookmark) {
			params[k] = v
		}
	}

	return params
}

var coreStreams = []Descriptor{
	{Name: "integrations", Path: "/integrations", APICategory: "core", PrimaryKeys: []string{"id"}, ReplicationKey: "lastUpdated", DefaultSort: "lastUpdated:desc"},
	{Name: "connections", Path: "/connections", APICategory: "core", PrimaryKeys: []string{"id"}, ReplicationKey: "lastUpdated", DefaultSort: "lastUpdated:desc"},
	{Name: "packages", Path: "/packages", APICategory: "core", PrimaryKeys: []string{"id"}, ReplicationKey: "lastUpdated"},
	{Name: "lookups", Path: "/lookups", APICategory: "core", PrimaryKeys: []string{"name"}, ReplicationKey: "lastUpdated"},
}

var extendedStreams = []Descriptor{
	{Name: "libraries", Path: "/libraries", APICategory: "core", PrimaryKeys: []string{"id"}, ReplicationKey: "lastUpdated"},
	{Name: "certificates", Path: "/certificates", APICategory: "core", PrimaryKeys: []string{"alias"}, ReplicationKey: "lastUpdated"},
	{Name: "projects", Path: "/projects", APICategory: "core", PrimaryKeys: []string{"id"}, ReplicationKey: "lastUpdated", DefaultSort: "name:asc"},
	{Name: "schedules", Path: "/schedules", APICategory: "core", PrimaryKeys: []string{"id"}, ReplicationKey: "lastUpdated", DefaultSort: "nextRunTime:asc"},
	{Name: "business_events", Path: "/events/business", APICategory: "core", PrimaryKeys: []string{"eventId"}, ReplicationKey: "timestamp", DefaultSort: "timestamp:desc"},
	{Name: "import_export_jobs", Path: "/jobs/importexport", APICategory: "core", PrimaryKeys: []string{"jobId"}, ReplicationKey: "startTime", DefaultSort: "startTime:desc"},
}

var monitoringStreams = []Descriptor{
	{Name: "executions", Path: "/monitoring/executions", APICategory: "monitoring", PrimaryKeys: []string{"executionId"}, ReplicationKey: "startTime", DefaultSort: "startTime:desc"},
	{Name: "errors", Path: "/monitoring/errors", APICategory: "monitoring", PrimaryKeys: []string{"errorId"}, ReplicationKey: "timestamp", DefaultSort: "timestamp:desc"},
	{Name: "audit_events", Path: "/monitoring/audit", APICategory: "monitoring", PrimaryKeys: []string{"auditId"}, ReplicationKey: "timestamp", DefaultSort: "timestamp:desc"},
	{Name: "instances", Path: "/monitoring/instances", APICategory: "monitoring", PrimaryKeys: []string{"instanceId"}, ReplicationKey: "lastUpdated"},
	// Metrics are keyed per metric per sample and served over a time range.
	{Name: "metrics", Path: "/monitoring/metrics", APICategory: "monitoring", PrimaryKeys: []string{"metricId", "timestamp"}, ReplicationKey: "timestamp", ExtraParams: func(string) map[string]string {
		return map[string]string{"timeRange": "1h"}
	}},
}

var infrastructureStreams = []Descriptor{
	{Name: "adapters", Path: "/adapters", APICategory: "infrastructure", PrimaryKeys: []string{"id"}, ReplicationKey: "lastUpdated", DefaultSort: "name:asc"},
	{Name: "agent_groups", Path: "/agentGroups", APICategory: "infrastructure", PrimaryKeys: []string{"id"}, ReplicationKey: "lastUpdated"},
}

// Registry returns the streams enabled by the configuration, core streams
// always first.
func Registry(config *models.TapConfig) []Descriptor {
	descriptors := make([]Descriptor, 0, len(coreStreams)+len(extendedStreams)+len(monitoringStreams)+len(infrastructureStreams))
	descriptors = append(descriptors, coreStreams...)

	if config.IncludeExtended {
		descriptors = append(descriptors, extendedStreams...)
	}
	if config.IncludeMonitoring {
		descriptors = append(descriptors, monitoringStreams...)
	}
	if config.IncludeInfrastructure {
		descriptors = append(descriptors, infrastructureStreams...)
	}

	return descriptors
}

// BuildCatalog assembles the Singer catalog for the enabled streams.
func BuildCatalog(config *models.TapConfig) *models.Catalog {
	descriptors := Registry(config)
	catalog := &models.Catalog{Streams: make([]models.CatalogEntry, 0, len(descriptors))}

	for _, d := range descriptors {
		replicationMethod := "FULL_TABLE"
		if d.ReplicationKey != "" {
			replicationMethod = "INCREMENTAL"
		}
		catalog.Streams = append(catalog.Streams, models.CatalogEntry{
			TapStreamID:       d.Name,
			Stream:            d.Name,
			Schema:            SchemaFor(d.Name),
			KeyProperties:     d.PrimaryKeys,
			ReplicationMethod: replicationMethod,
			ReplicationKey:    d.ReplicationKey,
		})
	}

	return catalog
}
