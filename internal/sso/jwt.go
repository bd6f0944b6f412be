// Package sso decodes GoDaddy SSO JWT payloads.
//
// Tokens in the test environment are decoded without signature verification;
// the upstream commerce APIs perform the actual validation on every call.
package sso

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the identity fields extracted from an SSO token payload.
type Claims struct {
	CustomerID string
	ShopperID  string
	Email      string
}

// Decode extracts identity claims from the token payload without verifying
// the signature. Customer ID is tried under several field names since token
// shapes vary across SSO issuers.
func Decode(token string) (*Claims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode sso token: %w", err)
	}

	c := &Claims{
		CustomerID: firstString(claims, "sub", "customerId", "customer_id", "customerGuid"),
		ShopperID:  firstString(claims, "shopperId", "sid"),
		Email:      firstString(claims, "email", "accountName"),
	}
	if c.CustomerID == "" {
		return nil, fmt.Errorf("sso token has no customer id claim")
	}
	return c, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
