package handlers

import "errors"

var errNoEnvironment = errors.New("no environment selected: pass --environment or set JUJU_ENV")
