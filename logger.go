package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceName = "qa-forum"

// log is the process-wide logger; main replaces its level from config.
var log = newLogger(os.Stdout, os.Getenv("LOG_LEVEL"))

func newLogger(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	l.SetOutput(out)
	setLogLevel(l, level)
	return l
}

func setLogLevel(l *logrus.Logger, level string) {
	switch strings.ToLower(level) {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
}

func logFor(component string) *logrus.Entry {
	return log.WithFields(logrus.Fields{"service": serviceName, "component": component})
}

// RequestLogger replaces gin's default access log with a structured one.
func RequestLogger() gin.HandlerFunc {
	entry := logFor("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"remote":   c.ClientIP(),
		}
		if pid, ok := c.Get(ctxParticipantPublicID); ok {
			fields["participant"] = pid
		}
		switch {
		case c.Writer.Status() >= 500:
			entry.WithFields(fields).Error("request")
		case c.Writer.Status() >= 400:
			entry.WithFields(fields).Warn("request")
		default:
			entry.WithFields(fields).Info("request")
		}
	}
}
