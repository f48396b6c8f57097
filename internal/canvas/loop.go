package canvas

import "context"

// Inbox delivers completions of background work. Each value must be called
// on the goroutine that owns the engine.
func (e *Engine) Inbox() <-chan func() { return e.inbox }

// Pump runs every queued completion without blocking and returns how many
// ran.
func (e *Engine) Pump() int {
	n := 0
	for {
		select {
		case fn := <-e.inbox:
			fn()
			n++
		default:
			return n
		}
	}
}

// Wait blocks until one completion arrives and runs it.
func (e *Engine) Wait(ctx context.Context) error {
	if e.closed {
		return ErrUnmounted
	}
	select {
	case fn := <-e.inbox:
		fn()
		return nil
	case <-e.done:
		return ErrUnmounted
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many expansions are outstanding.
func (e *Engine) Pending() int { return len(e.pending) }

// post hands fn to the owner. It gives up once the engine is unmounted.
func (e *Engine) post(fn func()) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.inbox <- fn:
		return true
	case <-e.done:
		return false
	}
}
