package check

import (
	"testing"

	"gotest.tools/assert"
)

type pointerReceiver struct {
	A bool
}

func (p *pointerReceiver) Validate() []error {
	return []error{True(p.A, "field A must be true")}
}

type valueReceiver struct {
	A bool
}

func (v valueReceiver) Validate() []error {
	return []error{True(v.A, "field A must be true")}
}

type nested struct {
	Inner  valueReceiver
	Items  []valueReceiver
	hidden valueReceiver //nolint:unused
}

func TestMethodSets(t *testing.T) {
	const want = "error found at root: field A must be true: expected true, got false"

	p := pointerReceiver{}
	assert.ErrorContains(t, Validate(p), want)
	assert.ErrorContains(t, Validate(&p), want)

	v := valueReceiver{}
	assert.ErrorContains(t, Validate(v), want)
	assert.ErrorContains(t, Validate(&v), want)

	assert.NilError(t, Validate(valueReceiver{A: true}))
	assert.NilError(t, Validate((*valueReceiver)(nil)))
}

func TestNestedPaths(t *testing.T) {
	err := Validate(nested{
		Inner: valueReceiver{A: true},
		Items: []valueReceiver{{A: true}, {A: false}},
	})
	assert.ErrorContains(t, err, "error found at root.Items[1]")
	assert.ErrorContains(t, err, "1 errors found")
}

func TestChecks(t *testing.T) {
	assert.NilError(t, NotEmpty("x"))
	assert.ErrorContains(t, NotEmpty("", "host must be set"), "host must be set: expected non-empty")
	assert.NilError(t, In("info", []string{"debug", "info"}))
	assert.ErrorContains(t, In("loud", []string{"debug", "info"}), "loud not in [debug info]")
	assert.NilError(t, GreaterThan(2, 1))
	assert.ErrorContains(t, GreaterThan(1, 1, "count %s", "bad"), "count bad: 1 is not greater than 1")
	assert.NilError(t, GreaterThanOrEqualTo(1, 1))
	assert.ErrorContains(t, GreaterThanOrEqualTo(0, 1), "0 is not greater than or equal to 1")
}
