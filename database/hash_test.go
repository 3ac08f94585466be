package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	h := newHMAC("test-hmac-key")

	assert.Equal(t, h.Hash("remember-token"), h.Hash("remember-token"))
	assert.NotEqual(t, h.Hash("remember-token"), h.Hash("other-token"))
	assert.NotEqual(t, h.Hash("remember-token"), newHMAC("other-key").Hash("remember-token"))
}

func TestHashConcurrent(t *testing.T) {
	h := newHMAC("test-hmac-key")
	want := h.Hash("remember-token")

	results := make([]string, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.Hash("remember-token")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
