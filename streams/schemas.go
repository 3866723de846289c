package streams

// Schemas are pass-through metadata: they shape SCHEMA messages and feed the
// warn-only record validation, but have no effect on extraction behaviour.

func objectSchema(properties map[string]interface{}) map[string]interface{} {
	// Every record is enriched with extraction metadata before emission.
	properties["_tap_extracted_at"] = map[string]interface{}{"type": []string{"string", "null"}, "format": "date-time"}
	properties["_tap_stream_name"] = map[string]interface{}{"type": []string{"string", "null"}}

	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": true,
		"properties":           properties,
	}
}

func stringProp() map[string]interface{} {
	return map[string]interface{}{"type": []string{"string", "null"}}
}

func timestampProp() map[string]interface{} {
	return map[string]interface{}{"type": []string{"string", "null"}, "format": "date-time"}
}

func integerProp() map[string]interface{} {
	return map[string]interface{}{"type": []string{"integer", "null"}}
}

func numberProp() map[string]interface{} {
	return map[string]interface{}{"type": []string{"number", "null"}}
}

var streamSchemas = map[string]map[string]interface{}{
	"integrations": objectSchema(map[string]interface{}{
		"id":          stringProp(),
		"code":        stringProp(),
		"version":     stringProp(),
		"name":        stringProp(),
		"status":      stringProp(),
		"style":       stringProp(),
		"pattern":     stringProp(),
		"lockedFlag":  map[string]interface{}{"type": []string{"boolean", "null"}},
		"created":     timestampProp(),
		"createdBy":   stringProp(),
		"lastUpdated": timestampProp(),
		"updatedBy":   stringProp(),
	}),
	"connections": objectSchema(map[string]interface{}{
		"id":             stringProp(),
		"name":           stringProp(),
		"adapterType":    stringProp(),
		"status":         stringProp(),
		"securityPolicy": stringProp(),
		"usage":          integerProp(),
		"created":        timestampProp(),
		"lastUpdated":    timestampProp(),
	}),
	"packages": objectSchema(map[string]interface{}{
		"id":                  stringProp(),
		"name":                stringProp(),
		"type":                stringProp(),
		"countOfIntegrations": integerProp(),
		"lastUpdated":         timestampProp(),
	}),
	"lookups": objectSchema(map[string]interface{}{
		"name":        stringProp(),
		"description": stringProp(),
		"columns":     integerProp(),
		"rows":        integerProp(),
		"lastUpdated": timestampProp(),
	}),
	"libraries": objectSchema(map[string]interface{}{
		"id":          stringProp(),
		"name":        stringProp(),
		"type":        stringProp(),
		"status":      stringProp(),
		"lastUpdated": timestampProp(),
	}),
	"certificates": objectSchema(map[string]interface{}{
		"alias":       stringProp(),
		"type":        stringProp(),
		"status":      stringProp(),
		"expiryDate":  timestampProp(),
		"lastUpdated": timestampProp(),
	}),
	"projects": objectSchema(map[string]interface{}{
		"id":          stringProp(),
		"name":        stringProp(),
		"description": stringProp(),
		"code":        stringProp(),
		"lastUpdated": timestampProp(),
	}),
	"schedules": objectSchema(map[string]interface{}{
		"id":            stringProp(),
		"name":          stringProp(),
		"description":   stringProp(),
		"integrationId": stringProp(),
		"nextRunTime":   timestampProp(),
		"lastUpdated":   timestampProp(),
	}),
	"business_events": objectSchema(map[string]interface{}{
		"eventId":      stringProp(),
		"eventType":    stringProp(),
		"eventName":    stringProp(),
		"eventVersion": stringProp(),
		"timestamp":    timestampProp(),
	}),
	"import_export_jobs": objectSchema(map[string]interface{}{
		"jobId":       stringProp(),
		"jobName":     stringProp(),
		"jobType":     stringProp(),
		"description": stringProp(),
		"status":      stringProp(),
		"startTime":   timestampProp(),
	}),
	"executions": objectSchema(map[string]interface{}{
		"executionId":   stringProp(),
		"integrationId": stringProp(),
		"status":        stringProp(),
		"startTime":     timestampProp(),
		"endTime":       timestampProp(),
		"durationMs":    integerProp(),
	}),
	"errors": objectSchema(map[string]interface{}{
		"errorId":       stringProp(),
		"integrationId": stringProp(),
		"errorMessage":  stringProp(),
		"severity":      stringProp(),
		"timestamp":     timestampProp(),
	}),
	"audit_events": objectSchema(map[string]interface{}{
		"auditId":   stringProp(),
		"actor":     stringProp(),
		"action":    stringProp(),
		"resource":  stringProp(),
		"timestamp": timestampProp(),
	}),
	"instances": objectSchema(map[string]interface{}{
		"instanceId":    stringProp(),
		"integrationId": stringProp(),
		"status":        stringProp(),
		"creationDate":  timestampProp(),
		"lastUpdated":   timestampProp(),
	}),
	"metrics": objectSchema(map[string]interface{}{
		"metricId":   stringProp(),
		"timestamp":  timestampProp(),
		"metricType": stringProp(),
		"value":      numberProp(),
		"unit":       stringProp(),
	}),
	"adapters": objectSchema(map[string]interface{}{
		"id":          stringProp(),
		"name":        stringProp(),
		"type":        stringProp(),
		"vendor":      stringProp(),
		"lastUpdated": timestampProp(),
	}),
	"agent_groups": objectSchema(map[string]interface{}{
		"id":          stringProp(),
		"name":        stringProp(),
		"agentCount":  integerProp(),
		"status":      stringProp(),
		"lastUpdated": timestampProp(),
	}),
}

// SchemaFor returns the JSON schema for a stream, or a permissive object
// schema when none is registered.
func SchemaFor(name string) map[string]interface{} {
	if schema, ok := streamSchemas[name]; ok {
		return schema
	}
	return objectSchema(map[string]interface{}{})
}
