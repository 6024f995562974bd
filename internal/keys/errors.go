package keys

import "errors"

// ErrInvalidInput is returned when a required field is missing or empty.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound is returned when a key does not exist or belongs to another
// tenant. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("api key not found")

// ErrGenerationExhausted is returned when repeated hash collisions prevent
// key creation. Reaching it implies a broken random source or digest.
var ErrGenerationExhausted = errors.New("key generation exhausted")

// ErrInvalidCredential is returned for malformed or unknown bearer keys.
var ErrInvalidCredential = errors.New("invalid credential")

// ErrRevoked is returned for keys that have been revoked. Callers must
// surface it identically to ErrInvalidCredential.
var ErrRevoked = errors.New("credential revoked")
