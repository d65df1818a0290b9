package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is replaced by BoostrapLogger; the default keeps packages usable in tests.
var Log = logrus.New()

func BoostrapLogger() {
	Log = &logrus.Logger{
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Formatter: &logrus.TextFormatter{
			DisableColors:    false,
			DisableQuote:     false,
			DisableTimestamp: false,
			FullTimestamp:    true,
			TimestampFormat:  "",
		},
		ReportCaller: false,
		Level:        logrus.DebugLevel,
		ExitFunc:     os.Exit,
	}

	Log.SetReportCaller(true)
}

// SetLevel applies a level name from config. Unknown names keep the current level.
func SetLevel(level string) {
	if level == "" {
		return
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("unknown log level '%s', keeping %s", level, Log.GetLevel())
		return
	}
	Log.SetLevel(lvl)
}
