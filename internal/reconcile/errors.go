package reconcile

import "errors"

var errNoStore = errors.New("no database available")
