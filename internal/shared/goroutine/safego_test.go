package goroutine

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

func TestTracker_WaitsAndSurvivesPanics(t *testing.T) {
	tr := NewTracker(logger.NewNop())
	var done atomic.Int32

	for i := 0; i < 5; i++ {
		tr.Go("ok", func() { done.Add(1) })
	}
	tr.Go("boom", func() { panic("sink exploded") })

	tr.Wait()
	assert.Equal(t, int32(5), done.Load())
}
