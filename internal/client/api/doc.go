// Package api is the console's adapter to the rent backend's REST API.
//
// # Overview
//
//  1. Client is the transport-agnostic contract the services depend on.
//  2. HTTPClient implements it over net/http: URLs are built from a configured
//     base and path prefix, each request carries an X-Request-ID and, after
//     login, a bearer token.
//  3. NormalizeBill is the single place where the backend's drifting field
//     names for the miscellaneous charge are folded into one field.
//
// # Error Handling
//
// Transport failures wrap ErrNetwork; non-2xx answers are *HTTPError and
// may also match ErrUnauthorized or ErrRegistrationIncomplete via errors.Is.
// UserMessage converts any of them into text that is safe to display.
package api
