// Package logger provides the application-wide leveled loggers.
// Output goes to stdout/stderr by default; InitLogger additionally
// mirrors everything into a log file.
package logger

import (
	"io"
	"log"
	"os"
)

var (
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	logFile  *os.File
)

func init() {
	infoLog = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	warnLog = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// InitLogger routes all levels to both stdout and the given file.
func InitLogger(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return err
	}
	logFile = f

	w := io.MultiWriter(os.Stdout, f)
	infoLog = log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	warnLog = log.New(w, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLog = log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	return nil
}

func Close() {
	if logFile != nil {
		logFile.Close()
	}
}

func Infof(format string, v ...interface{}) {
	infoLog.Printf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	warnLog.Printf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	errorLog.Printf(format, v...)
}
