package common

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

var goroutineCounter int64

// GetGoroutineCount returns the number of goroutines spawned via SafeGo
func GetGoroutineCount() int64 {
	return atomic.LoadInt64(&goroutineCounter)
}

// SafeGo runs fn in a goroutine. A panic is logged with its stack and
// reported through onPanic (when set) instead of crashing the process.
func SafeGo(logger arbor.ILogger, name string, fn func(), onPanic ...func(recovered any)) {
	atomic.AddInt64(&goroutineCounter, 1)

	go func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logPanic(logger, name, r)
			for _, h := range onPanic {
				h(r)
			}
		}()
		fn()
	}()
}

// Recover converts a panic in the calling goroutine into an error. Use it as
//
//	defer common.Recover(logger, "analyze", &err)
func Recover(logger arbor.ILogger, name string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	logPanic(logger, name, r)
	if errp != nil {
		*errp = fmt.Errorf("%s panicked: %v", name, r)
	}
}

func logPanic(logger arbor.ILogger, name string, r any) {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	if logger == nil {
		fmt.Fprintf(os.Stderr, "PANIC in goroutine %s: %v\n%s\n", name, r, stack)
		return
	}
	logger.Error().
		Str("goroutine", name).
		Str("panic", fmt.Sprintf("%v", r)).
		Str("stack", stack).
		Msg("Recovered from panic")
}
