package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "json")
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = New("loud", "json")
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestID(ctx))

	fields := withContext(ctx, nil)
	require.Len(t, fields, 1)
	assert.Equal(t, "request_id", fields[0].Key)
}
