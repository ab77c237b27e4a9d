package utils

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitedLoggerSuppressesRepeats(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	rl := NewRateLimitedLogger(logger, time.Hour)

	for i := 0; i < 5; i++ {
		rl.Warnf("hash-failure:/mnt/disk", "hash failed for %s", "/mnt/disk/file.bin")
	}

	out := buf.String()
	assert.Equal(t, 1, bytesCount(out, "hash failed"))
}

func TestRateLimitedLoggerResetsAfterWindow(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	rl := NewRateLimitedLogger(logger, time.Millisecond)

	rl.Warnf("k", "first")
	time.Sleep(5 * time.Millisecond)
	rl.Warnf("k", "second")

	out := buf.String()
	assert.Equal(t, 1, bytesCount(out, "first"))
	assert.Equal(t, 1, bytesCount(out, "second"))
}

func bytesCount(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
		}
	}
	return count
}
