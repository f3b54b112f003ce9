package metrics

import (
	"testing"
)

// TestMetricsInitialization tests that all metrics are properly initialized
func TestMetricsInitialization(t *testing.T) {
	m := getTestMetrics()

	// Test that all metrics are non-nil
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal should not be nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration should not be nil")
	}
	if m.DBConnectionsOpen == nil {
		t.Error("DBConnectionsOpen should not be nil")
	}
	if m.DBConnectionsInUse == nil {
		t.Error("DBConnectionsInUse should not be nil")
	}
	if m.DBConnectionsIdle == nil {
		t.Error("DBConnectionsIdle should not be nil")
	}
	if m.DBConnectionsMax == nil {
		t.Error("DBConnectionsMax should not be nil")
	}
	if m.DBConnectionWaitTotal == nil {
		t.Error("DBConnectionWaitTotal should not be nil")
	}
	if m.DBConnectionWaitDuration == nil {
		t.Error("DBConnectionWaitDuration should not be nil")
	}
	if m.DBQueryDuration == nil {
		t.Error("DBQueryDuration should not be nil")
	}
	if m.DBQueryErrors == nil {
		t.Error("DBQueryErrors should not be nil")
	}
	if m.ExternalAPIRequestDuration == nil {
		t.Error("ExternalAPIRequestDuration should not be nil")
	}
	if m.ExternalAPIRequestsTotal == nil {
		t.Error("ExternalAPIRequestsTotal should not be nil")
	}
	if m.ExternalAPIErrors == nil {
		t.Error("ExternalAPIErrors should not be nil")
	}
	if m.CommentsTotal == nil {
		t.Error("CommentsTotal should not be nil")
	}
	if m.LikesTotal == nil {
		t.Error("LikesTotal should not be nil")
	}
	if m.CommentCreatedTotal == nil {
		t.Error("CommentCreatedTotal should not be nil")
	}
	if m.CommentDeletedTotal == nil {
		t.Error("CommentDeletedTotal should not be nil")
	}
	if m.LikesToggledTotal == nil {
		t.Error("LikesToggledTotal should not be nil")
	}
	if m.OptimisticRollbacksTotal == nil {
		t.Error("OptimisticRollbacksTotal should not be nil")
	}
	if m.StaleFetchesDroppedTotal == nil {
		t.Error("StaleFetchesDroppedTotal should not be nil")
	}
	if m.ProvisionalResplicesTotal == nil {
		t.Error("ProvisionalResplicesTotal should not be nil")
	}
	if m.WSConnectionsActive == nil {
		t.Error("WSConnectionsActive should not be nil")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/comments/42", "/api/comments/{id}"},
		{"/api/comments/42/replies", "/api/comments/{id}/replies"},
		{"/api/articles/7/comments", "/api/articles/{id}/comments"},
		{"/api/health", "/api/health"},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.in); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
