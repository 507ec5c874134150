package release_lock

import (
	"context"
)

type SlotLocker interface {
	Release(ctx context.Context, slotID int64, holder string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
