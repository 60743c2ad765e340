// Package httpapi exposes the rental commands and queries over HTTP with fiber.
//
// Every response uses the same JSON envelope:
//
//	{success, message, data, error{code, message, details}, timestamp, request_id}
//
// Domain rejections map to 4xx statuses with a stable error code. Closing a hold
// that is already closed is answered with 200 and "idempotent": true, so kiosks
// can resubmit a return or cancel without special handling.
package httpapi
