package ill

import "errors"

// errNilArg is returned when a required list, element, or link argument is
// nil. Mirrors the C original's list_append/list_remove returning NULL on
// bad parameters (_examples/original_source/rtos/util/list/list.c).
var errNilArg = errors.New("ill: nil list, element, or link")
