package hooks

import (
	"errors"
	"time"
)

const (
	DEF_HOOK_ENTRY = "main.js"
	MANIFEST_FILE  = "manifest.json"

	EVENT_CALLBACK = "onEvent"

	// DEF_HOOK_TIMEOUT bounds a single onEvent call.
	DEF_HOOK_TIMEOUT = 2 * time.Second
)

var (
	ErrInvalidHook        = errors.New("invalid hook")
	ErrCallbackNotDefined = errors.New("onEvent function not defined")
	ErrEntrypointNotFound = errors.New("entrypoint not found")
	ErrHookTimeout        = errors.New("hook timed out")
)
