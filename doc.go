// Package accounts implements the user-account lifecycle and stateless JWT
// authentication for the storefront backend.
//
// Registration and activation:
//   - RegisterUser persists a new account in a not-activated state together
//     with a random activation key, reclaiming login or email addresses held
//     by accounts that never completed activation. ActivateRegistration
//     redeems the key exactly once; unknown keys yield an empty result so
//     the endpoint cannot be used to probe key validity.
//
// Password management:
//   - RequestPasswordReset and CompletePasswordReset implement a reset flow
//     with a 24 hour redemption window, and ChangePassword replaces the
//     password of an authenticated principal after verifying the current one.
//
// Tokens and authentication:
//   - TokenService signs and validates HS256 JWTs whose validity depends on
//     the remember-me flag. Auther resolves credentials by login or email
//     and surfaces NotFound, NotActivated, and BadCredentials distinctly so
//     callers can decide how much to reveal.
//
// Housekeeping:
//   - Sweeper runs a daily purge that removes accounts left unactivated for
//     more than three days, freeing their login and email for reuse.
//
// Every mutating operation runs inside a single transaction through
// RepositoryManager.RunInTx, and time is injected everywhere via clock
// functions so expiry and window logic is testable.
package accounts
