/*
 * skjaere errors
 *
 * Copyright (c) 2026 Telenor Norge AS
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

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies failures the way callers of the service care about:
// was it the network or was it the device/request.
type ErrorKind int

const (
	Application ErrorKind = iota // device-reported error status, bad input, exhausted set ladder
	Transport                    // timeout, socket trouble, unresolvable address
)

func (k ErrorKind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Application:
		return "application"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the error type returned across the service boundary. Msg is
// the complete human readable message, Err is kept for errors.Is/As.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrTimeout is wrapped by every no-response failure.
var ErrTimeout = errors.New("timed out")

// TransportErrorf is a shorthand for a Transport Error. Like fmt.Errorf, a
// %w verb wraps its argument.
func TransportErrorf(format string, v ...any) *Error {
	return newError(Transport, format, v...)
}

// ApplicationErrorf is TransportErrorf for Application errors.
func ApplicationErrorf(format string, v ...any) *Error {
	return newError(Application, format, v...)
}

func newError(kind ErrorKind, format string, v ...any) *Error {
	err := fmt.Errorf(format, v...)
	return &Error{Kind: kind, Msg: err.Error(), Err: errors.Unwrap(err)}
}

// KindOf classifies any error. Errors that are not an *Error are transport
// errors if they come from the network or a context, application errors
// otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, ErrTimeout) ||
		errors.As(err, &ne) {
		return Transport
	}
	return Application
}

// AsError returns err as an *Error, classifying it with KindOf if it is
// not one already. nil stays nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindOf(err), Msg: err.Error(), Err: err}
}
