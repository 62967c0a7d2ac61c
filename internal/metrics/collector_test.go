package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("voice_convert", reg)

	c.ObserveStage("transcribe", "elevenlabs", 120*time.Millisecond, nil)
	c.ObserveStage("translate", "deepl", 30*time.Millisecond, errors.New("boom"))
	c.ObserveStage("translate", "deepl", 30*time.Millisecond, errors.New("boom"))
	c.RecordConversion("ok")
	c.RecordConversion("translation_failed")
	c.ObserveUpload(64 << 10)
	c.RecordHTTPRequest("POST", "/api/convert", 200)

	assert.Equal(t, 0.0, testutil.ToFloat64(c.stageFailures.WithLabelValues("transcribe")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.stageFailures.WithLabelValues("translate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.conversions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.conversions.WithLabelValues("translation_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "/api/convert", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.stageDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(c.uploadBytes))
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveStage("transcribe", "x", time.Second, nil)
		c.RecordConversion("ok")
		c.ObserveUpload(1)
		c.RecordHTTPRequest("GET", "/ping", 200)
	})
}
