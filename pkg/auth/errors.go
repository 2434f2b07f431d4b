package auth

import "errors"

// ErrTokenInvalid indicates an access token that could not be parsed.
// Expected rejections (bad credentials, locked accounts, rejected
// codes) are not errors: strategies report them inside a failed Result
// so the message reaches the user unchanged.
var ErrTokenInvalid = errors.New("auth.token_invalid")
