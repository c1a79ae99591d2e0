package paymentqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelayDoublesUpToCap(t *testing.T) {
	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{1, 1 * time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{5, 16 * time.Minute},
		{6, 32 * time.Minute},
		{7, 32 * time.Minute},
		{100, 32 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, retryDelay(tt.retryCount), "retry count %d", tt.retryCount)
	}
}

func TestRetryDelayClampsBelowOne(t *testing.T) {
	assert.Equal(t, time.Minute, retryDelay(0))
	assert.Equal(t, time.Minute, retryDelay(-3))
}
