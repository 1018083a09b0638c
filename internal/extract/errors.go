package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBlockFound indicates the block locator did not match the document text.
	ErrNoBlockFound = errors.New("no table block found")
	// ErrNoBlockGroup indicates the block locator matched but captured nothing.
	ErrNoBlockGroup = errors.New("block pattern has no capturing group")
	// ErrNoRowMatch indicates a block line did not match the row splitter.
	ErrNoRowMatch = errors.New("line does not match row pattern")
	// ErrValueParse indicates a value token could not be read as a number.
	ErrValueParse = errors.New("value is not numeric")
	// ErrWidthMismatch indicates a row has a different number of values than the layout declares.
	ErrWidthMismatch = errors.New("row width does not match columns")
)

// RowMatchError reports a block line the row splitter rejected.
type RowMatchError struct {
	Layout string
	Line   int // 1-indexed within the block
	Text   string
}

func (e *RowMatchError) Error() string {
	return fmt.Sprintf("%s: line %d %q: %v", e.Layout, e.Line, e.Text, ErrNoRowMatch)
}

func (e *RowMatchError) Unwrap() error {
	return ErrNoRowMatch
}

// ValueParseError reports a value string that did not yield numbers.
// Token is empty when the value string held no tokens at all.
type ValueParseError struct {
	Layout string
	Line   int
	Raw    string
	Token  string
	Err    error
}

func (e *ValueParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: line %d: no values in %q: %v", e.Layout, e.Line, e.Raw, ErrValueParse)
	}
	return fmt.Sprintf("%s: line %d: token %q in %q: %v", e.Layout, e.Line, e.Token, e.Raw, ErrValueParse)
}

func (e *ValueParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValueParse}
	}
	return []error{ErrValueParse, e.Err}
}

// WidthMismatchError reports a row whose value count differs from the
// layout's value columns.
type WidthMismatchError struct {
	Layout string
	Line   int
	Label  string
	Got    int
	Want   int
}

func (e *WidthMismatchError) Error() string {
	return fmt.Sprintf("%s: line %d (%s): got %d values, want %d: %v",
		e.Layout, e.Line, e.Label, e.Got, e.Want, ErrWidthMismatch)
}

func (e *WidthMismatchError) Unwrap() error {
	return ErrWidthMismatch
}
