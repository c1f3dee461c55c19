package server

import (
	"fmt"
	"time"

	"github.com/df07/go-photon-raytracer/pkg/log"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger writes render messages to the server log and to a console
// channel streamed to the client
type WebLogger struct {
	renderID    string
	logger      log.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		logger:      logger,
		consoleChan: consoleChan,
	}
}

// Infof logs an informational message
func (wl *WebLogger) Infof(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	wl.logger.Infof("[%s] %s", wl.renderID, message)
	wl.send(message, "info")
}

// Warningf logs a warning
func (wl *WebLogger) Warningf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	wl.logger.Warningf("[%s] %s", wl.renderID, message)
	wl.send(message, "warning")
}

// Errorf logs an error
func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	wl.logger.Errorf("[%s] %s", wl.renderID, message)
	wl.send(message, "error")
}

func (wl *WebLogger) send(message, level string) {
	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     level,
	}:
	default:
		// Channel full, skip (don't block)
	}
}
