package client

import (
	"context"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	minPageSize = 10
	maxPageSize = 1000

	// latencyWindow bounds the rolling window of per-request latencies.
	latencyWindow = 10
	// latencySamples is how many samples must exist before resizing kicks in.
	latencySamples = 5

	slowThresholdSeconds = 5.0
	fastThresholdSeconds = 1.0
)

// Sink accepts one enriched record. It must return quickly and never blocks
// extraction decisions.
type Sink func(record map[string]interface{})

// Paginator drives repeated GETs against one stream path until the result
// set is exhausted, normalizing the OIC response envelope and tuning the
// page size from observed latency. A Paginator is single-use: restarting
// requires a fresh one with offset reset.
type Paginator struct {
	client     *Client
	streamName string
	path       string
	params     map[string]string

	offset    int
	pageSize  int
	latencies []float64
}

func NewPaginator(c *Client, streamName, path string, params map[string]string, pageSize int) *Paginator {
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &Paginator{
		client:     c,
		streamName: streamName,
		path:       path,
		params:     params,
		pageSize:   pageSize,
	}
}

func (p *Paginator) PageSize() int {
	return p.pageSize
}

// Run fetches pages in strictly increasing offset order and feeds every
// record to sink. A page is the last page whenever it returns fewer items
// than were requested; an explicit hasMore flag in the envelope is ignored
// (a full final page therefore costs one extra trailing request).
func (p *Paginator) Run(ctx context.Context, sink Sink) error {
	for {
		requested := p.pageSize

		params := make(map[string]string, len(p.params)+2)
		for k, v := range p.params {
			params[k] = v
		}
		params["limit"] = strconv.Itoa(requested)
		params["offset"] = strconv.Itoa(p.offset)

		log.WithFields(log.Fields{
			"stream": p.streamName,
			"offset": p.offset,
			"limit":  requested,
		}).Debug("requesting page")

		data, elapsed, err := p.client.Get(ctx, p.path, params)
		if err != nil {
			return err
		}

		p.observe(elapsed.Seconds())

		if data == nil {
			// Parsing was skipped (fail_on_parsing_errors=false).
			return nil
		}

		items, recognized := extractItems(data)
		if !recognized && !emptyResultExpected(data) {
			log.WithFields(log.Fields{
				"stream":   p.streamName,
				"endpoint": p.path,
			}).Warn("unknown response format, continuing")
		}

		for _, item := range items {
			record, ok := item.(map[string]interface{})
			if !ok {
				log.WithFields(log.Fields{"stream": p.streamName, "item": item}).Warn("encountered non-object element in items array")
				continue
			}
			sink(p.enrich(record))
		}

		if len(items) < requested {
			return nil
		}
		p.offset += len(items)
	}
}

// extractItems normalizes the four recognized envelope shapes: a bare JSON
// array, {"items": [...]}, {"data": [...]}, or a single-record object.
func extractItems(data interface{}) ([]interface{}, bool) {
	switch d := data.(type) {
	case []interface{}:
		return d, true
	case map[string]interface{}:
		if items, ok := d["items"].([]interface{}); ok {
			return items, true
		}
		if items, ok := d["data"].([]interface{}); ok {
			return items, true
		}
		if isSingleRecord(d) {
			return []interface{}{d}, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// isSingleRecord treats an object as one record when it carries none of the
// pagination-metadata keys.
func isSingleRecord(data map[string]interface{}) bool {
	for _, key := range []string{"totalSize", "count", "hasMore", "offset", "limit", "items", "data"} {
		if _, ok := data[key]; ok {
			return false
		}
	}
	return true
}

// emptyResultExpected reports whether an unrecognized envelope plausibly
// represents an empty result set, which is not worth a warning. Every size
// indicator the envelope carries must be zero; an envelope carrying none is
// not assumed empty.
func emptyResultExpected(data interface{}) bool {
	switch d := data.(type) {
	case []interface{}:
		return len(d) == 0
	case map[string]interface{}:
		indicated := false
		if total, ok := d["totalSize"].(float64); ok {
			if total != 0 {
				return false
			}
			indicated = true
		}
		if count, ok := d["count"].(float64); ok {
			if count != 0 {
				return false
			}
			indicated = true
		}
		if raw, ok := d["items"]; ok {
			if items, _ := raw.([]interface{}); len(items) != 0 {
				return false
			}
			indicated = true
		}
		if raw, ok := d["data"]; ok {
			if inner, _ := raw.([]interface{}); len(inner) != 0 {
				return false
			}
			indicated = true
		}
		return indicated
	default:
		return false
	}
}

func (p *Paginator) enrich(record map[string]interface{}) map[string]interface{} {
	enriched := make(map[string]interface{}, len(record)+2)
	for k, v := range record {
		enriched[k] = v
	}
	enriched["_tap_extracted_at"] = time.Now().UTC().Format(time.RFC3339)
	enriched["_tap_stream_name"] = p.streamName
	return enriched
}

// observe records one latency sample and, once enough samples exist, nudges
// the page size: slow averages shrink it 20%, fast averages grow it 20%,
// always within [minPageSize, maxPageSize].
func (p *Paginator) observe(seconds float64) {
	p.latencies = append(p.latencies, seconds)
	if len(p.latencies) > latencyWindow {
		p.latencies = p.latencies[1:]
	}

	if len(p.latencies) < latencySamples {
		return
	}

	var sum float64
	for _, sample := range p.latencies {
		sum += sample
	}
	avg := sum / float64(len(p.latencies))

	switch {
	case avg > slowThresholdSeconds && p.pageSize > minPageSize:
		p.pageSize = int(float64(p.pageSize) * 0.8)
		if p.pageSize < minPageSize {
			p.pageSize = minPageSize
		}
		log.WithFields(log.Fields{"stream": p.streamName, "avg_seconds": avg, "page_size": p.pageSize}).Debug("slow responses, shrinking page size")
	case avg < fastThresholdSeconds && p.pageSize < maxPageSize:
		p.pageSize = int(float64(p.pageSize) * 1.2)
		if p.pageSize > maxPageSize {
			p.pageSize = maxPageSize
		}
		log.WithFields(log.Fields{"stream": p.streamName, "avg_seconds": avg, "page_size": p.pageSize}).Debug("fast responses, growing page size")
	}
}
