package main

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Per-concern loggers. The defaults write through the logrus standard logger
// so code paths exercised before initLogging (or from tests) stay safe.
var (
	coreLog  = logrus.NewEntry(logrus.StandardLogger()).WithField("name", "core")
	relayLog = logrus.NewEntry(logrus.StandardLogger()).WithField("name", "relay")
	callLog  = logrus.NewEntry(logrus.StandardLogger()).WithField("name", "call")

	logFile *lumberjack.Logger
)

// relayMessages controls whether full relay event frames are logged.
var relayMessages bool

// initLogging configures the per-concern loggers from the [logging] section.
func initLogging(cfg *ini.File) error {
	sec := cfg.Section("logging")

	consoleMin := toLogrusLevel(sec.Key("console_min_level").MustInt(0))
	fileMin := toLogrusLevel(sec.Key("file_min_level").MustInt(0))

	logFile = &lumberjack.Logger{
		Filename:   "foundcall.log",
		MaxSize:    100, // megabytes
		MaxBackups: 1,
	}

	coreLog = newLogger("core", toLogrusLevel(sec.Key("core").MustInt(2)), consoleMin, fileMin, logFile)
	relayLog = newLogger("relay", toLogrusLevel(sec.Key("relay").MustInt(2)), consoleMin, fileMin, logFile)
	callLog = newLogger("call", toLogrusLevel(sec.Key("call").MustInt(2)), consoleMin, fileMin, logFile)

	relayMessages = sec.Key("relay_messages").MustBool(true)
	if !relayMessages {
		// filter out verbose relay frame dumps
		relayLog.Logger.AddHook(&relayMessageFilterHook{})
	}

	return nil
}

// closeLogging flushes and closes log files.
func closeLogging() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// writerHook writes logs to the specified writer for provided levels.
type writerHook struct {
	Writer    io.Writer
	LogLevels []logrus.Level
}

func (h *writerHook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		return err
	}
	_, err = h.Writer.Write([]byte(line))
	return err
}

func (h *writerHook) Levels() []logrus.Level {
	return h.LogLevels
}

func newLogger(name string, level, consoleMin, fileMin logrus.Level, file io.Writer) *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	logger.AddHook(&writerHook{Writer: os.Stdout, LogLevels: availableLevels(consoleMin)})
	logger.AddHook(&writerHook{Writer: file, LogLevels: availableLevels(fileMin)})
	return logger.WithField("name", name)
}

func availableLevels(min logrus.Level) []logrus.Level {
	levels := []logrus.Level{}
	for _, l := range logrus.AllLevels {
		if l <= min {
			levels = append(levels, l)
		}
	}
	return levels
}

func toLogrusLevel(v int) logrus.Level {
	switch {
	case v <= 0:
		return logrus.TraceLevel
	case v == 1:
		return logrus.DebugLevel
	case v == 2:
		return logrus.InfoLevel
	case v == 3:
		return logrus.WarnLevel
	case v == 4:
		return logrus.ErrorLevel
	case v == 5:
		return logrus.FatalLevel
	default:
		return logrus.PanicLevel // off
	}
}

// relayMessageFilterHook suppresses logging of full relay frames when
// disabled via configuration.
type relayMessageFilterHook struct{}

func (h *relayMessageFilterHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *relayMessageFilterHook) Fire(e *logrus.Entry) error {
	if strings.HasPrefix(e.Message, "received relay event:") {
		// elevate level so writer hooks ignore the entry
		e.Level = logrus.PanicLevel + 1
	}
	return nil
}
