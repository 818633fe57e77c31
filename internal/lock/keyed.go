package lock

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

// KeyedMutex serializes work per student id. Two concurrent allocation
// runs for the same student could match the same payment to different
// debts, so each run holds the student's mutex for its whole duration.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[snowflake.ID]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[snowflake.ID]*sync.Mutex)}
}

func (k *KeyedMutex) Lock(key snowflake.ID) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
}

func (k *KeyedMutex) Unlock(key snowflake.ID) {
	k.mu.Lock()
	m, ok := k.locks[key]
	k.mu.Unlock()
	if ok {
		m.Unlock()
	}
}
