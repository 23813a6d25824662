package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crytic/soltrace/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the CLI starts. Each package
// should create its own sub-logger from it.
var GlobalLogger *Logger

// Logger describes a custom logging object that can log events to any arbitrary channel and can handle specialized
// output to console as well
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// multiLogger outputs logs to any arbitrary channel(s) in either structured or unstructured format.
	multiLogger zerolog.Logger

	// consoleLogger outputs unstructured, colorized output to console.
	consoleLogger zerolog.Logger

	// writers describes the list of io.Writer objects where multiLogger output goes.
	writers []io.Writer

	// context holds the key-value pairs attached by NewSubLogger so they survive writer changes.
	context map[string]string
}

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. The Logger can output to console, if enabled,
// and output logs to any number of arbitrary io.Writer channels
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	// The base loggers are disabled so we never dereference an uninitialized logger.
	baseMultiLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	baseConsoleLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	if len(writers) > 0 {
		baseMultiLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}

	if consoleEnabled {
		consoleWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: os.Stdout}, level)
		baseConsoleLogger = zerolog.New(consoleWriter).Level(level)
	}

	return &Logger{
		level:         level,
		multiLogger:   baseMultiLogger,
		consoleLogger: baseConsoleLogger,
		writers:       writers,
		context:       make(map[string]string),
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. Each package is expected
// to hold its own sub-logger so logs are grep-able by service.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	context := make(map[string]string, len(l.context)+1)
	for k, v := range l.context {
		context[k] = v
	}
	context[key] = value

	return &Logger{
		level:         l.level,
		multiLogger:   l.multiLogger.With().Str(key, value).Logger(),
		consoleLogger: l.consoleLogger.With().Str(key, value).Logger(),
		writers:       l.writers,
		context:       context,
	}
}

// AddWriter will add a writer to the list of channels where log output will be sent.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat) {
	for _, w := range l.writers {
		if consoleWriter, ok := w.(zerolog.ConsoleWriter); ok {
			w = consoleWriter.Out
		}
		if writer == w {
			return
		}
	}

	// Unstructured output gets wrapped in a console writer with no ANSI coloring
	if format == UNSTRUCTURED {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: true}
	}

	l.writers = append(l.writers, writer)
	l.rebuildMultiLogger()
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. If the writer does not exist,
// this function is a no-op. Unstructured writers are matched by their underlying output.
func (l *Logger) RemoveWriter(writer io.Writer) {
	for i, w := range l.writers {
		if consoleWriter, ok := w.(zerolog.ConsoleWriter); ok {
			w = consoleWriter.Out
		}
		if w == writer {
			l.writers = append(l.writers[:i], l.writers[i+1:]...)
			l.rebuildMultiLogger()
			return
		}
	}
}

// rebuildMultiLogger recreates the multi logger from the current writer list, retaining sub-logger context.
func (l *Logger) rebuildMultiLogger() {
	ctx := zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp()
	for k, v := range l.context {
		ctx = ctx.Str(k, v)
	}
	l.multiLogger = ctx.Logger()
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// Debug logs a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info logs an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn logs a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error logs an error event
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// log sends one event at the given level to the console and to every writer. The console receives the colorized
// message and the writers the plain one. Error stacks are attached when running at debug verbosity.
func (l *Logger) log(level zerolog.Level, args ...any) {
	consoleMsg, plainMsg, err, info := buildMsgs(args...)
	withStack := err != nil && l.level <= zerolog.DebugLevel

	for _, event := range []struct {
		logger  *zerolog.Logger
		message string
	}{
		{&l.consoleLogger, consoleMsg},
		{&l.multiLogger, plainMsg},
	} {
		e := event.logger.WithLevel(level).Err(err)
		if withStack {
			e = e.Stack()
		}
		if info != nil {
			e = e.Any("info", info)
		}
		e.Msg(event.message)
	}
}

// buildMsgs takes a variadic list of arguments of any type and returns two strings and, optionally, an error and a
// StructuredLogInfo object. The first string is colorized for console logging while the second string is plain for
// file/structured logging.
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	if len(args) == 0 {
		return "", "", nil, nil
	}

	colorCtx := colors.Reset
	consoleOutput := make([]string, 0, len(args))
	fileOutput := make([]string, 0, len(args))
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// Switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Only one structured log info can be provided for each log message
			info = t
		case error:
			// Only one error can be provided for each log message
			err = t
		default:
			consoleOutput = append(consoleOutput, colorCtx(t))
			fileOutput = append(fileOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(consoleOutput, ""), strings.Join(fileOutput, ""), err, info
}

// setupDefaultFormatting updates the console writer's formatting: no timestamps and a colored level marker.
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	writer.FormatTimestamp = func(i any) string {
		return ""
	}

	writer.FormatLevel = func(i any) string {
		levelStr, _ := i.(string)
		parsedLevel, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}

		switch parsedLevel {
		case zerolog.TraceLevel:
			return colors.CyanBold(zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colors.BlueBold(zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colors.GreenBold(colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colors.YellowBold(zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colors.RedBold(zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colors.RedBold(zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colors.RedBold(zerolog.LevelPanicValue)
		default:
			return levelStr
		}
	}

	// Above debug level, drop the service component when logging to console
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"service"}
	}

	return writer
}
