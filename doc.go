// Package register implements user registration with email based
// activation codes, credential verification, and stateless session
// tokens.
//
// Registration flow:
//   - RegisterUserHandler validates the request, enrolls the user into
//     the default USER role, persists it deactivated, and issues a six
//     digit activation code with a fifteen minute TTL. Persistence and
//     email dispatch share one transaction, so a failed delivery rolls
//     the registration back.
//   - ActivateAccountHandler resolves the submitted code. Expired codes
//     trigger a single replacement (new code, fresh TTL) and report
//     ErrActivationCodeExpired so callers can tell the user a new code
//     was sent. Valid codes activate the user and stamp the token's
//     validation time through a conditional write, so concurrent
//     submissions of the same code cannot both win.
//
// Sessions:
//   - Auther verifies credentials through an IdentityProvider and signs
//     HS256 session tokens carrying the subject (email), display name,
//     and role names. SessionFromToken verifies a raw token and returns
//     an AuthenticatedPrincipal value object; no session state is kept
//     server side.
//   - TokenValidator implementations (including a JWKS backed one) can
//     be swapped in for tokens signed by an external issuer.
//
// Stores are plain interfaces over bun repositories; consumers own the
// *bun.DB, HTTP surface, and real mail transport.
package register
