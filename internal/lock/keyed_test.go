package lock

import (
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	key := snowflake.ID(42)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(key)
			counter++
			km.Unlock(key)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock(snowflake.ID(1))
	done := make(chan struct{})
	go func() {
		km.Lock(snowflake.ID(2))
		km.Unlock(snowflake.ID(2))
		close(done)
	}()
	<-done
	km.Unlock(snowflake.ID(1))
}
