package main

import (
	"errors"

	"neoport/internal/core/model"
)

// 进程退出码
const (
	ExitOK        = 0
	ExitFatal     = 1   // 调度器故障或参数错误
	ExitCancelled = 130 // 128 + SIGINT
)

// exitError 携带退出码的错误，err 为 nil 时不再打印
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCodeFor 扫描终态到退出码
func exitCodeFor(state model.ScanState) int {
	switch state {
	case model.ScanStateCompleted:
		return ExitOK
	case model.ScanStateCancelled:
		return ExitCancelled
	default:
		return ExitFatal
	}
}

// exitCode 命令返回值到退出码
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitFatal
}
