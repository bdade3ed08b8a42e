// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and validates bearer tokens.

# Issuance

Tokens are HS256 JWTs valid for one hour (TokenTTL). There are two ways to
get one:

	token, err := m.IssueForWorker("Alice")  // after checking Alice exists
	token, err := m.IssueForService()        // after verifying an API key

Service tokens name the fixed identity "mobile_app".

# Validation

	user, err := m.Validate(raw)

Validate only fails with ErrTokenMissing, ErrTokenExpired or ErrTokenInvalid
so callers can tell clients whether to log in again. Only HS256 is accepted
and an expiry claim is required. There is no revocation; expiry is the only
way a token stops working.

BearerToken pulls the token out of an Authorization header.
*/
package auth
