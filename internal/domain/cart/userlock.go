package cart

import "sync"

// UserLocker serializes cart mutations and checkout per user within this
// process, so the item set a checkout reads is exactly the set it later
// clears. Cross-process serialization is handled by the storage layer's
// advisory lock inside the checkout transaction.
type UserLocker struct {
	locks sync.Map // int64 -> *sync.Mutex
}

// NewUserLocker creates an empty UserLocker.
func NewUserLocker() *UserLocker {
	return &UserLocker{}
}

// Lock acquires the mutex for userID and returns the unlock function.
func (l *UserLocker) Lock(userID int64) func() {
	v, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
