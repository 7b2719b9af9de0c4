package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup 设置全局日志级别与输出格式；json=false 时输出便于本地阅读的 console 格式
func Setup(level string, json bool) {
	setup(os.Stderr, level, json)
}

func setup(out io.Writer, level string, json bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if !json {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Component 返回带 component 字段的子 logger
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// CronLogger 把 robfig/cron 的 Printf 风格日志接到 zerolog。
// cron.PrintfLogger 只会转发错误（例如 job panic），所以这里用 warn 级别
type CronLogger struct {
	L zerolog.Logger
}

func (c CronLogger) Printf(format string, v ...interface{}) {
	c.L.Warn().Msgf(format, v...)
}
