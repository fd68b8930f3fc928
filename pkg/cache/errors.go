package cache

import "errors"

// ErrCacheMiss is returned by helpers that need to distinguish a miss from a
// hit, such as [GetJSON].
var ErrCacheMiss = errors.New("cache miss")
