package check

import "fmt"

// messageFromMsgAndArgs renders the optional trailing message arguments accepted by every check.
// A single argument is used as-is; more than one is treated as a format string plus arguments.
func messageFromMsgAndArgs(msgAndArgs ...interface{}) string {
	switch len(msgAndArgs) {
	case 0:
		return ""
	case 1:
		if msg, ok := msgAndArgs[0].(string); ok {
			return msg
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	default:
		format, ok := msgAndArgs[0].(string)
		if !ok {
			return fmt.Sprint(msgAndArgs...)
		}
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
}
