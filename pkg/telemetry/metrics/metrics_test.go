package metrics

import (
	"testing"
	"time"

	"warren-hq/warren/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		SessionDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.registry != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_PoolMetrics(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("update size", func(t *testing.T) {
		collector.UpdatePoolSize("socks5", 212)
		size := testutil.ToFloat64(collector.poolMetrics.poolSize.WithLabelValues("socks5"))
		if size != 212 {
			t.Errorf("Expected size=212, got %f", size)
		}
	})

	t.Run("record selection", func(t *testing.T) {
		collector.RecordSelection("http", "hit")
		count := testutil.ToFloat64(collector.poolMetrics.selectionsTotal.WithLabelValues("http", "hit"))
		if count < 1 {
			t.Errorf("Expected selection count >= 1, got %f", count)
		}
	})

	t.Run("record eviction", func(t *testing.T) {
		collector.RecordEviction("consecutive_failures")
		count := testutil.ToFloat64(collector.poolMetrics.evictionsTotal.WithLabelValues("consecutive_failures"))
		if count < 1 {
			t.Errorf("Expected eviction count >= 1, got %f", count)
		}
	})
}

func TestCollector_JudgeMetrics(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("update health", func(t *testing.T) {
		collector.UpdateJudgeHealth("https://azenv.net/", true)
		health := testutil.ToFloat64(collector.judgeMetrics.health.WithLabelValues("https://azenv.net/"))
		if health != 1.0 {
			t.Errorf("Expected health=1.0, got %f", health)
		}

		collector.UpdateJudgeHealth("https://azenv.net/", false)
		health = testutil.ToFloat64(collector.judgeMetrics.health.WithLabelValues("https://azenv.net/"))
		if health != 0.0 {
			t.Errorf("Expected health=0.0, got %f", health)
		}
	})

	t.Run("record latency", func(t *testing.T) {
		collector.RecordJudgeLatency("https://azenv.net/", 0.38)
		// Just verify it doesn't panic
	})

	t.Run("record probe error", func(t *testing.T) {
		collector.RecordJudgeProbeError("https://azenv.net/", "timeout")
		count := testutil.ToFloat64(collector.judgeMetrics.probeErrors.WithLabelValues("https://azenv.net/", "timeout"))
		if count < 1 {
			t.Errorf("Expected probe error count >= 1, got %f", count)
		}
	})
}

func TestCollector_SessionMetrics(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("record session", func(t *testing.T) {
		collector.RecordSession("http", "success", 2*time.Second)
		count := testutil.ToFloat64(collector.sessionMetrics.sessionsTotal.WithLabelValues("http", "success"))
		if count < 1 {
			t.Errorf("Expected session count >= 1, got %f", count)
		}
	})

	t.Run("record bridge bytes", func(t *testing.T) {
		collector.RecordBridgeBytes("client_to_upstream", 4096)
		count := testutil.ToFloat64(collector.sessionMetrics.bridgeBytes.WithLabelValues("client_to_upstream"))
		if count < 4096 {
			t.Errorf("Expected bridge bytes >= 4096, got %f", count)
		}
	})

	t.Run("record retry", func(t *testing.T) {
		collector.RecordRetry()
		count := testutil.ToFloat64(collector.sessionMetrics.retriesTotal)
		if count < 1 {
			t.Errorf("Expected retry count >= 1, got %f", count)
		}
	})
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	// These should not panic
	collector.UpdatePoolSize("http", 10)
	collector.UpdateJudgeHealth("https://azenv.net/", true)
	collector.RecordSession("http", "success", time.Second)
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(3)

	if !limiter.Allow("label1") {
		t.Error("Expected first label to be allowed")
	}
	if !limiter.Allow("label2") {
		t.Error("Expected second label to be allowed")
	}
	if !limiter.Allow("label3") {
		t.Error("Expected third label to be allowed")
	}

	if limiter.Allow("label4") {
		t.Error("Expected fourth label to be rejected")
	}

	if !limiter.Allow("label1") {
		t.Error("Expected existing label to be allowed")
	}

	if limiter.Count() != 3 {
		t.Errorf("Expected count=3, got %d", limiter.Count())
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				collector.RecordSession("http", "success", time.Second)
				collector.UpdateJudgeHealth("https://azenv.net/", true)
				collector.RecordSelection("http", "hit")
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	count := testutil.ToFloat64(collector.sessionMetrics.sessionsTotal.WithLabelValues("http", "success"))
	if count != 1000 {
		t.Errorf("Expected 1000 sessions, got %f", count)
	}
}
