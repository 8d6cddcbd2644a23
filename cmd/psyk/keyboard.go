package main

import (
	"errors"
	"io"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
)

var errInterrupted = errors.New("interrupted")

// keyboardReader reads single key presses from the terminal without
// waiting for a newline, so a program's character reads react to each key.
type keyboardReader struct {
	listen func(onKey func(key keys.Key) (stop bool, err error)) error
}

func newKeyboardReader() *keyboardReader {
	return &keyboardReader{listen: keyboard.Listen}
}

// ReadRune blocks until one key is pressed. Ctrl+C fails the read and
// Ctrl+D ends the input.
func (r *keyboardReader) ReadRune() (rune, int, error) {
	var (
		result  rune
		readErr error
	)
	err := r.listen(func(key keys.Key) (bool, error) {
		switch key.Code {
		case keys.CtrlC:
			readErr = errInterrupted
		case keys.CtrlD:
			readErr = io.EOF
		case keys.Enter:
			result = '\n'
		case keys.Tab:
			result = '\t'
		case keys.Space:
			result = ' '
		case keys.RuneKey:
			if len(key.Runes) == 0 {
				return false, nil
			}
			result = key.Runes[0]
		default:
			// Arrows, function keys and the like are ignored.
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return 0, 0, err
	}
	if readErr != nil {
		return 0, 0, readErr
	}
	return result, len(string(result)), nil
}

// Read lets the keyboard serve as an io.Reader.
func (r *keyboardReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	ch, size, err := r.ReadRune()
	if err != nil {
		return 0, err
	}
	if size > len(p) {
		return 0, io.ErrShortBuffer
	}
	return copy(p, string(ch)), nil
}

var _ io.RuneReader = (*keyboardReader)(nil)
