package taschlib

import (
	"log"
	"runtime/debug"
	"sync"
)

// safeGo runs fn in a goroutine, logging a panic instead of crashing the
// process. wg, when non-nil, is marked done once fn returns.
func safeGo(l *log.Logger, wg *sync.WaitGroup, context string, fn func()) {
	go func() {
		if wg != nil {
			defer wg.Done()
		}
		defer recoverLog(l, context)
		fn()
	}()
}

func recoverLog(l *log.Logger, context string) {
	if r := recover(); r != nil && l != nil {
		l.Printf("PANIC [%s]: %v\n%s", context, r, debug.Stack())
	}
}
