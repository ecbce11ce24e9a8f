package utils

import (
	"io"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// Global logger variables
var (
	InfoLogger  = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	WarnLogger  = log.New(os.Stderr, "WARN: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
)

// InitLogging initializes structured logging with separate stdout/stderr streams
func InitLogging() {
	InitLoggingTo(os.Stdout, os.Stderr)
}

// InitLoggingTo points the info logger at out and the warn/error loggers at errOut.
func InitLoggingTo(out, errOut io.Writer) {
	// Info logs go to stdout
	InfoLogger = log.New(out, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Warnings and errors go to stderr
	WarnLogger = log.New(errOut, "WARN: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	log.SetOutput(errOut)
	log.SetPrefix("SYSTEM: ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

// LogError logs errors with context to stderr
func LogError(context string, err error, metadata ...interface{}) {
	if err != nil {
		args := []interface{}{context, err}
		args = append(args, metadata...)
		ErrorLogger.Println(args...)
	}
}

// LogWarn logs a warning to stderr
func LogWarn(message string, metadata ...interface{}) {
	args := []interface{}{message}
	args = append(args, metadata...)
	WarnLogger.Println(args...)
}

// LogInfo logs informational messages to stdout
func LogInfo(message string, metadata ...interface{}) {
	args := []interface{}{message}
	args = append(args, metadata...)
	InfoLogger.Println(args...)
}

// LogRequestError logs errors with request context to stderr
func LogRequestError(c *fiber.Ctx, context string, err error, metadata ...interface{}) {
	if err != nil {
		requestID, _ := c.Locals("request_id").(string)

		args := []interface{}{
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"ip", ClientIP(c),
			"context", context,
			"error", err,
		}
		args = append(args, metadata...)
		ErrorLogger.Println(args...)
	}
}
