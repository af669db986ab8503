package badgerdb

import (
	"fmt"
	"strings"

	"github.com/celer-network/go-inheritance/log"
)

// badgerLogger adapts our logger to the badger.Logger interface.
type badgerLogger struct {
	*log.Logger
}

func (l *badgerLogger) Errorf(format string, v ...interface{}) {
	l.Error().Msg(trim(format, v...))
}

func (l *badgerLogger) Warningf(format string, v ...interface{}) {
	l.Warn().Msg(trim(format, v...))
}

func (l *badgerLogger) Infof(format string, v ...interface{}) {
	l.Info().Msg(trim(format, v...))
}

func (l *badgerLogger) Debugf(format string, v ...interface{}) {
	l.Debug().Msg(trim(format, v...))
}

func trim(format string, v ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, v...), "\n")
}
