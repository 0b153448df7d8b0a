// Package logger はlogrusのロガーを組み立てる。
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// levelが読めなければinfo
func New(level, format string) *logrus.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	l.SetLevel(lv)
	return l
}

// テスト用（出力を捨てる）
func Discard() *logrus.Logger {
	return NewWithWriter(io.Discard, "panic", "text")
}
