/*
 * skjaere log-wrappers
 *
 * Copyright (c) 2022 Telenor Norge AS
 * Author(s):
 *  - Kristian Lyngstøl <kly@kly.no>
 *
 * This library is free software; you can redistribute it and/or
 * modify it under the terms of the GNU Lesser General Public
 * License as published by the Free Software Foundation; either
 * version 2.1 of the License, or (at your option) any later version.
 *
 * This library is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public
 * License along with this library; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
 * 02110-1301  USA
 */

package skjaere

/*
log.go wraps logrus so the rest of the code base can call skjaere.Logf()
and friends without caring about the backend.

Add wrappers on demand.

Debug/Debugf checks Config.Debug before doing anything at all, which makes
calls to skjaere.Debugf() very cheap when debugging is off. That makes it
unproblematic to add debug-logging in the request/response path, which is
about as hot as it gets here.
*/

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// Init (re)configures the logger according to Config. Call it after the
// configuration is parsed.
func Init() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if Config.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// entry adds the source location of the wrapper's caller when debugging,
// which is what log.Lshortfile used to give us.
func entry() *logrus.Entry {
	if !Config.Debug {
		return logrus.NewEntry(logger)
	}
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return logrus.NewEntry(logger)
	}
	return logger.WithField("src", fmt.Sprintf("%s:%d", filepath.Base(file), line))
}

func Log(v ...any) {
	entry().Info(fmt.Sprint(v...))
}

func Logf(format string, v ...any) {
	entry().Infof(format, v...)
}

func Logln(v ...any) {
	entry().Info(fmt.Sprintln(v...))
}

func Warnf(format string, v ...any) {
	entry().Warnf(format, v...)
}

func Errorf(format string, v ...any) {
	entry().Errorf(format, v...)
}

func Fatal(v ...any) {
	entry().Error(fmt.Sprint(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	entry().Errorf(format, v...)
	os.Exit(1)
}

func Fatalln(v ...any) {
	entry().Error(fmt.Sprintln(v...))
	os.Exit(1)
}

func Debug(v ...any) {
	if Config.Debug {
		entry().Debug(fmt.Sprint(v...))
	}
}

func Debugf(format string, v ...any) {
	if Config.Debug {
		entry().Debugf(format, v...)
	}
}

func Debugln(v ...any) {
	if Config.Debug {
		entry().Debug(fmt.Sprintln(v...))
	}
}
