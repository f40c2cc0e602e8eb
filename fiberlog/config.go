package fiberlog

import "github.com/sirupsen/logrus"

// Config selects the logger and the request fields written for every call.
type Config struct {
	Logger *logrus.Logger
	Tags   []string
}

// ConfigDefault logs through the standard logrus logger.
var ConfigDefault = Config{
	Logger: nil,
	Tags: []string{
		TagMethod,
		TagPath,
		TagStatus,
		TagLatency,
		RequestID,
	},
}
