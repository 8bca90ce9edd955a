// internal/websocket/errors.go
package websocket

import "errors"

var errNoValidator = errors.New("websocket hub has no token validator")
