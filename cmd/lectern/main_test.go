package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitTimeoutReturnsOnceWorkFinishes(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
	}()
	assert.True(t, waitTimeout(&wg, time.Second))
}

func TestWaitTimeoutGivesUpOnStuckWork(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	wg.Add(1)
	release := make(chan struct{})
	go func() {
		defer wg.Done()
		<-release
	}()
	start := time.Now()
	assert.False(t, waitTimeout(&wg, 20*time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
	close(release)
	wg.Wait()
}

func TestWaitTimeoutWithNothingPending(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	assert.True(t, waitTimeout(&wg, time.Millisecond))
}
