/*
Session coordination for backend-for-frontend (BFF) OAuth.

A mobile or CLI client cannot safely hold private OAuth signing keys, so a
backend performs the actual OAuth exchange and hands the client an opaque,
backend-issued session token delivered via an HTTP-only cookie. The
[Coordinator] drives the client's half of that arrangement: it produces the
hosted authorization URL, consumes the callback redirect, materializes the
session cookie locally, validates the session to recover account identity,
and refreshes the session before or after expiry.

State lives in two injected collaborators, not in the Coordinator itself: a
[CredentialsStore] (the source of truth for the current session; [MemStore]
and [FileStore] are provided) and a [SessionCookieManager] (which owns the
one session cookie; [JarCookieManager] keeps it in a cookie jar shared with
the HTTP client, so requests carry the session implicitly and no bearer
token is ever held or transmitted by the client).

Failures follow a small taxonomy: [ErrInvalidCredentials] (malformed
callback or rejected completion; restart sign-in), [ErrSessionExpired]
(refresh definitively failed; restart sign-in), [*NetworkError] (transport
failure; retry later), [*StorageError], and [*APIError]. [Recoverable]
classifies them.
*/
package bffauth
