package datestr

import (
	"fmt"
	"strings"
)

// DateNotValidError reports a directive map that cannot be resolved into a
// date because an entire required group (year, month or day forms) is absent.
type DateNotValidError struct {
	Group   string
	Missing []Directive
}

func (e *DateNotValidError) Error() string {
	names := make([]string, len(e.Missing))
	for i, d := range e.Missing {
		names[i] = string(d)
	}
	return fmt.Sprintf("datestr: no %s directive present, need one of %s",
		e.Group, strings.Join(names, ", "))
}

// InvalidDirectiveError reports a directive absent from the pattern table.
// This is a programmer error in the caller-supplied match order.
type InvalidDirectiveError struct {
	Directive Directive
}

func (e *InvalidDirectiveError) Error() string {
	return fmt.Sprintf("datestr: invalid directive %q", string(e.Directive))
}

// WeekdayNameError reports a name that does not resolve to a weekday in the
// active locale.
type WeekdayNameError struct {
	Name   string
	Locale string
}

func (e *WeekdayNameError) Error() string {
	return fmt.Sprintf("datestr: %q is not a weekday name in locale %q", e.Name, e.Locale)
}
