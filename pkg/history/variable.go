package history

import (
	"fmt"

	"github.com/solvkit/solvtrace/pkg/errors"
)

// Variable stores the history of a single named, typed quantity across
// solver iterations. Elements are either nil (no value supplied for that
// iteration) or a value coerced to the variable's kind.
//
// Variables are created through History.AddVariable and live for the
// lifetime of the owning History.
type Variable struct {
	name        string
	kind        Kind
	valueFormat string
	headerWidth int
	data        []interface{}
}

func newVariable(name string, kind Kind, valueFormat string, headerWidth int) *Variable {
	return &Variable{
		name:        name,
		kind:        kind,
		valueFormat: valueFormat,
		headerWidth: headerWidth,
	}
}

// Name returns the variable name
func (v *Variable) Name() string {
	return v.name
}

// Kind returns the variable's declared kind
func (v *Variable) Kind() Kind {
	return v.kind
}

// Len returns the number of recorded iterations
func (v *Variable) Len() int {
	return len(v.data)
}

// Reset clears the recorded data. Kind, name and formats are untouched.
func (v *Variable) Reset() {
	v.data = nil
}

// Write records the value for a single iteration. A nil value is stored
// unchanged as the "no data" marker; anything else is coerced to the
// variable's kind first.
func (v *Variable) Write(value interface{}) error {
	if value == nil {
		v.data = append(v.data, nil)
		return nil
	}

	converted, err := v.kind.Convert(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConversion,
			fmt.Sprintf("value %v provided for variable %q could not be converted to the declared kind %s",
				value, v.name, v.kind)).
			WithDetail("variable", v.name).
			WithDetail("kind", v.kind.String())
	}
	v.data = append(v.data, converted)
	return nil
}

// WriteFullHistory replaces the entire recorded data in one call, coercing
// each element. Nil elements pass through as the "no data" marker. On the
// first inconvertible element the call fails and the variable's contents
// are unspecified; callers should treat the variable as failed.
func (v *Variable) WriteFullHistory(values []interface{}) error {
	converted := make([]interface{}, 0, len(values))
	for _, value := range values {
		if value == nil {
			converted = append(converted, nil)
			continue
		}
		c, err := v.kind.Convert(value)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConversion,
				fmt.Sprintf("a value provided for variable %q could not be converted to the declared kind %s",
					v.name, v.kind)).
				WithDetail("variable", v.name).
				WithDetail("kind", v.kind.String())
		}
		converted = append(converted, c)
	}
	v.data = converted
	return nil
}

// Data returns a copy of the recorded data. Nil elements indicate
// iterations where no value was supplied.
func (v *Variable) Data() []interface{} {
	out := make([]interface{}, len(v.data))
	copy(out, v.data)
	return out
}

// Value returns the recorded element for the given iteration. Negative
// indices count back from the most recent iteration.
func (v *Variable) Value(iteration int) (interface{}, error) {
	i := iteration
	if i < 0 {
		i += len(v.data)
	}
	if i < 0 || i >= len(v.data) {
		return nil, errors.Newf(errors.ErrorTypeOutOfRange,
			"iteration %d is out of range for variable %q", iteration, v.name).
			WithDetail("variable", v.name).
			WithDetail("iteration", iteration)
	}
	return v.data[i], nil
}

// FormattedHeader renders text centered in the variable's header width.
// An empty text renders the variable's own name.
func (v *Variable) FormattedHeader(text string) (string, error) {
	if v.headerWidth <= 0 {
		return "", errors.Newf(errors.ErrorTypeConfig,
			"no header format specified for variable %q", v.name)
	}
	if text == "" {
		text = v.name
	}
	return center(text, v.headerWidth), nil
}

// FormattedValue renders a value through the variable's value format.
func (v *Variable) FormattedValue(value interface{}) (string, error) {
	if v.valueFormat == "" {
		return "", errors.Newf(errors.ErrorTypeConfig,
			"no value format specified for variable %q", v.name)
	}
	return fmt.Sprintf(v.valueFormat, value), nil
}
