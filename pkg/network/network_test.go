package network_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/breeze/pkg/network"
)

func TestRegistrySendDelivers(t *testing.T) {
	reg := network.NewRegistry()
	var mu sync.Mutex
	var got []byte
	var from string
	wg := sync.WaitGroup{}
	wg.Add(1)
	reg.Register("b", func(f string, payload []byte) {
		mu.Lock()
		got = payload
		from = f
		mu.Unlock()
		wg.Done()
	})

	sender := reg.Sender("a")
	cancel := sender.Send(context.Background(), "b", []byte("hello"))
	cancel()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []byte("hello"), got)
	require.Equal(t, "a", from)
}

func TestRegistryBroadcastReachesAll(t *testing.T) {
	reg := network.NewRegistry()
	wg := sync.WaitGroup{}
	wg.Add(3)
	for _, addr := range []string{"x", "y", "z"} {
		reg.Register(addr, func(string, []byte) { wg.Done() })
	}
	sender := reg.Sender("a")
	cancel := sender.Broadcast(context.Background(), []string{"x", "y", "z"}, []byte("hi"))
	cancel()
	wg.Wait()
}

func TestCancelBucketCancelsAll(t *testing.T) {
	var bucket network.CancelBucket
	n := 0
	bucket.Add(func() { n++ })
	bucket.Add(func() { n++ })
	bucket.CancelAll()
	require.Equal(t, 2, n)
	bucket.CancelAll()
	require.Equal(t, 2, n)
}
