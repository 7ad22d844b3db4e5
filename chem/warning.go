// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : warning.go
package chem

import (
	"fmt"
	"sync"
)

// WarningCallback receives a non-fatal diagnostic message. Warnings
// never raise (spec.md §8): a malformed optional field is reported and
// parsing continues with that field absent.
type WarningCallback func(message string)

var (
	warningMu sync.Mutex
	warningCb WarningCallback = func(string) {}
)

// SetWarningCallback replaces the process-wide warning callback. The
// callback is guarded by its own mutex (the format registry has a
// separate one): callers may swap it at any time, concurrently with
// reads.
func SetWarningCallback(cb WarningCallback) {
	warningMu.Lock()
	defer warningMu.Unlock()
	if cb == nil {
		cb = func(string) {}
	}
	warningCb = cb
}

// Warn invokes the current warning callback with a formatted message.
func Warn(format string, args ...interface{}) {
	warningMu.Lock()
	cb := warningCb
	warningMu.Unlock()
	cb(fmt.Sprintf(format, args...))
}
