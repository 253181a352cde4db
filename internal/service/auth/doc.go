// Package auth validates the signed bearer tokens minted by the identity
// service. Tokens are HS256 JWTs carrying user_id and token_type claims;
// only access tokens are accepted.
package auth
