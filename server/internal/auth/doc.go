// Package auth provides authentication middleware for moneypit-server.
//
// APIKey(mode, header, key) returns HTTP middleware that validates the API
// key carried in the named request header.
//
// When mode != "apikey", all requests pass through (useful for local
// development with auth disabled). In apikey mode an empty configured key
// refuses everything. When the key is incorrect or absent, the middleware
// answers 401 with a JSON error body and the wrapped handler is never called.
package auth
