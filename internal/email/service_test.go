package email

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitReturnsSendResult(t *testing.T) {
	require.NoError(t, await(func() error { return nil }, time.Second))

	sendErr := errors.New("550 mailbox unavailable")
	err := await(func() error { return sendErr }, time.Second)
	assert.ErrorIs(t, err, sendErr)
}

func TestAwaitBoundsHungSend(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	start := time.Now()
	err := await(func() error { <-block; return nil }, 20*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), time.Second, "a hung server must not stall the caller")
}
