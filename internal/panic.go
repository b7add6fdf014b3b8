// SPDX-License-Identifier: MIT
//
// Copyright (C) 2021 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package internal holds test helpers shared across packages.
package internal

import (
	"errors"
	"fmt"
)

var (
	errNoPanic        = errors.New("no panic")
	errNoPanicMessage = errors.New("panic but no message")
)

// recovered runs f and returns the value it panicked with, if any.
func recovered(f func()) (value interface{}, panicked bool) {
	defer func() {
		if value = recover(); value != nil {
			panicked = true
		}
	}()
	f()
	return nil, false
}

// ExpectPanic runs f expecting it to panic. With a non-nil expected error the panic value must
// render to the same message. It returns (false, reason) on any mismatch.
func ExpectPanic(expected error, f func()) (bool, error) {
	value, panicked := recovered(f)
	if !panicked {
		return false, errNoPanic
	}
	if expected == nil {
		return true, nil
	}
	var msg string
	switch v := value.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = fmt.Sprintf("%v", v)
	}
	if msg == "" {
		return false, errNoPanicMessage
	}
	if msg != expected.Error() {
		return false, fmt.Errorf("expected %q, got: %q", expected, msg)
	}
	return true, nil
}
