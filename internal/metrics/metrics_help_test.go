package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// Every registered metric must carry a non-empty help description.
func TestMetricHelpDescriptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry, nil)

	// Touch vector metrics so they show up in Gather.
	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/health", "2xx").Add(0)
	m.HTTPRequestDuration.WithLabelValues("GET", "/api/health").Observe(0)
	m.DBQueryDuration.WithLabelValues("select", "comments").Observe(0)
	m.DBQueryErrors.WithLabelValues("select", "comments").Add(0)
	m.ExternalAPIRequestDuration.WithLabelValues("/api/comments/{id}", "200").Observe(0)
	m.ExternalAPIRequestsTotal.WithLabelValues("/api/comments/{id}", "GET", "200").Add(0)
	m.ExternalAPIErrors.WithLabelValues("/api/comments/{id}", "timeout").Add(0)
	m.CommentDeletedTotal.WithLabelValues("soft").Add(0)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(metricFamilies) == 0 {
		t.Fatal("Expected gathered metric families")
	}

	for _, mf := range metricFamilies {
		name := mf.GetName()
		help := mf.GetHelp()

		if len(strings.TrimSpace(help)) == 0 {
			t.Errorf("Metric '%s' has an empty help description", name)
		}
		if !strings.HasPrefix(name, namespace+"_") {
			t.Errorf("Metric '%s' is missing the '%s' namespace", name, namespace)
		}
	}
}
