package auth

import "time"

// OperatorClaims identifies the holder of an operator token. Operators may
// trigger syncs; every other endpoint is public.
type OperatorClaims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

func (c *OperatorClaims) Source() string { return "JWT" }
