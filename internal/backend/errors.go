package backend

import (
	"fmt"
	"net/http"
)

// StatusError is returned when the simulator answers a request with anything other than 200.
type StatusError struct {
	Op   string
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("%s: simulator returned status %d (%s)", e.Op, e.Code, http.StatusText(e.Code))
}
