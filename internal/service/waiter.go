package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WaitTimeout bounds how long a client may wait for a game to change.
const WaitTimeout = 25 * time.Second

// WaitRegistry lets long-polling clients block until a game has moved past
// the ply count they last saw.
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*waitRequest
	shutdown chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	timeout  time.Duration
}

type waitRequest struct {
	plies  int
	notify chan struct{}
	timer  *time.Timer
}

func NewWaitRegistry(timeout time.Duration) *WaitRegistry {
	if timeout <= 0 {
		timeout = WaitTimeout
	}
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		shutdown: make(chan struct{}),
		timeout:  timeout,
	}
}

// Register returns a channel that receives once the game changes, the wait
// times out, the game is deleted or ctx ends.
func (w *WaitRegistry) Register(ctx context.Context, gameID string, plies int) <-chan struct{} {
	req := &waitRequest{
		plies:  plies,
		notify: make(chan struct{}, 1),
	}
	req.timer = time.AfterFunc(w.timeout, func() { w.signal(req) })

	w.mu.Lock()
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.mu.Unlock()

	done := make(chan struct{})
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(done)
		select {
		case <-ctx.Done():
		case <-req.notify:
		case <-w.shutdown:
		}
		req.timer.Stop()
		w.remove(gameID, req)
	}()

	return done
}

// Notify wakes every waiter on gameID whose ply count is stale.
func (w *WaitRegistry) Notify(gameID string, plies int) {
	w.mu.Lock()
	list := append([]*waitRequest(nil), w.waiters[gameID]...)
	w.mu.Unlock()

	for _, req := range list {
		if req.plies != plies {
			w.signal(req)
		}
	}
}

// RemoveGame wakes and forgets all waiters on a deleted game.
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	list := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range list {
		w.signal(req)
	}
}

func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out after %s", timeout)
	}
}

func (w *WaitRegistry) signal(req *waitRequest) {
	select {
	case req.notify <- struct{}{}:
	default:
	}
}

func (w *WaitRegistry) remove(gameID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list := w.waiters[gameID]
	for i, r := range list {
		if r == req {
			w.waiters[gameID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
