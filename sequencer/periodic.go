package sequencer

import (
	"sync"
	"time"
)

// Periodic runs a callback on a fixed period until cancelled. Separates what
// happens on a tick from how time drives it.
type Periodic interface {
	Every(d time.Duration, fn func()) (cancel func())
}

// TickerPeriodic drives callbacks from a time.Ticker on its own goroutine.
type TickerPeriodic struct{}

// Every starts calling fn every d. The returned cancel stops the ticker and
// waits for an in-flight callback to finish. Calling cancel more than once is
// safe.
func (TickerPeriodic) Every(d time.Duration, fn func()) (cancel func()) {
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// stop may have raced the tick
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
		})
	}
}
