package jwtx

import "errors"

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrIssuer       = errors.New("jwtx: unexpected issuer")
)
