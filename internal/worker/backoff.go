package worker

import (
	"runtime"
	"time"
)

// yieldToScheduler hands off the current goroutine's slice without
// parking it, the Go analogue of std::thread::yield_now.
func yieldToScheduler() {
	runtime.Gosched()
}

// sleepBriefly is the sleep phase's ~500ns pause before re-checking
// should_terminate.
func sleepBriefly() {
	time.Sleep(500 * time.Nanosecond)
}
