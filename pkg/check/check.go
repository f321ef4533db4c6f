package check

import (
	"fmt"

	"github.com/pkg/errors"
)

// check returns nil if the condition holds. Otherwise it returns an error built from the
// caller-supplied message (if any) followed by the default message.
func check(condition bool, msgAndArgs []interface{}, defaultMsg string, args ...interface{}) error {
	if condition {
		return nil
	}
	detail := fmt.Sprintf(defaultMsg, args...)
	if msg := messageFromMsgAndArgs(msgAndArgs...); msg != "" {
		return errors.Errorf("%s: %s", msg, detail)
	}
	return errors.New(detail)
}

// True checks whether the condition is true.
func True(condition bool, msgAndArgs ...interface{}) error {
	return check(condition, msgAndArgs, "expected true, got false")
}

// NotEmpty checks whether the provided string is non-empty.
func NotEmpty(actual string, msgAndArgs ...interface{}) error {
	return check(actual != "", msgAndArgs, "expected non-empty string")
}

// In checks whether the actual string is one of the expected values.
func In(actual string, expected []string, msgAndArgs ...interface{}) error {
	for _, e := range expected {
		if e == actual {
			return nil
		}
	}
	return check(false, msgAndArgs, "%s not in %v", actual, expected)
}

// GreaterThan checks whether actual is strictly greater than expected.
func GreaterThan(actual, expected int64, msgAndArgs ...interface{}) error {
	return check(actual > expected, msgAndArgs, "%d is not greater than %d", actual, expected)
}

// GreaterThanOrEqualTo checks whether actual is greater than or equal to expected.
func GreaterThanOrEqualTo(actual, expected int64, msgAndArgs ...interface{}) error {
	return check(actual >= expected, msgAndArgs,
		"%d is not greater than or equal to %d", actual, expected)
}
