package sherpa

import (
	"sync"

	"github.com/tphakala/sherpa-go/internal/logger"
)

var (
	serviceLogger logger.Logger
	loggerOnce    sync.Once
)

// GetLogger returns the sherpa module logger.
func GetLogger() logger.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logger.Global().Module("sherpa")
	})
	return serviceLogger
}
