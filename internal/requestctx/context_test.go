package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := SetCorrelationID(context.Background(), "req_abc123")
	assert.Equal(t, "req_abc123", CorrelationID(ctx))
}

func TestCorrelationIDUnset(t *testing.T) {
	assert.Equal(t, "", CorrelationID(context.Background()))
}
