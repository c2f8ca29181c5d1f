package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(GenerationsTotal.WithLabelValues(OutcomeScrapeTimeout))
	RecordGeneration(OutcomeScrapeTimeout)
	RecordGeneration(OutcomeScrapeTimeout)
	if got := testutil.ToFloat64(GenerationsTotal.WithLabelValues(OutcomeScrapeTimeout)); got != before+2 {
		t.Fatalf("scrape_timeout = %v, want %v", got, before+2)
	}
}

func TestRecordPublishFailure(t *testing.T) {
	before := testutil.ToFloat64(PublishFailuresTotal.WithLabelValues("sqs-main"))
	RecordPublishFailure("sqs-main")
	if got := testutil.ToFloat64(PublishFailuresTotal.WithLabelValues("sqs-main")); got != before+1 {
		t.Fatalf("publish failures = %v, want %v", got, before+1)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordHTTPRequest("GET", "/health", 200, 3*time.Millisecond)
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")); got != before+1 {
		t.Fatalf("http requests = %v, want %v", got, before+1)
	}
}

func TestHistogramsCollect(t *testing.T) {
	RecordStage("scrape", 120*time.Millisecond)
	RecordQuestions(5)
	if n := testutil.CollectAndCount(StageDuration); n < 1 {
		t.Fatalf("expected stage duration series, got %d", n)
	}
	if n := testutil.CollectAndCount(QuestionsGenerated); n != 1 {
		t.Fatalf("expected one question histogram, got %d", n)
	}
}
