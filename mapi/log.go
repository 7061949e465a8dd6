package mapi

import (
	"fmt"
	"log"
	"os"
)

const logPrefix = "mapi.driver"

// stderrLogger is a stderr logger for driver warnings. No code in this
// package writes to it: protocol violations reach callers as returned
// errors, and server info lines through Session.Warnings. Per-subsystem
// wire/auth/dispatch/transfer detail goes through mapi/internal/trace,
// toggleable at runtime.
var stderrLogger = log.New(os.Stderr, fmt.Sprintf("%s ", logPrefix), log.Ldate|log.Ltime|log.Lshortfile)
