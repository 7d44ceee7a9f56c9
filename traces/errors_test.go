package traces

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordError(t *testing.T) {
	assert.NoError(t, RecordError(context.Background(), "no-op on nil", nil))

	// works against the no-op span too, returning the error unchanged
	err := errors.New("boom")
	assert.ErrorIs(t, RecordError(context.Background(), "request failed", err), err)
}
