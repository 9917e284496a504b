/*
Authenticated HTTP client for a backend-for-frontend (BFF) API.

[APIClient] layers credential lifecycle management over a plain
[net/http.Client]: credentials are loaded from the coordinator's store
before every request, the session is refreshed proactively when close to
expiry, and a 401 response triggers refresh-and-retry with exponential
backoff bounded by the configured retry ceiling. The session cookie is
carried implicitly by the shared cookie jar; the client never sets an
Authorization header, because under the BFF pattern no bearer token ever
reaches the client.

[APIRequest] is the generic request form (with replayable bodies via
GetBody, since refresh-and-retry can issue a request more than once);
[APIClient.Get] and [APIClient.Post] are JSON conveniences on top, and
[APIClient.PostMultipart] handles form uploads with a deliberately simpler
single-retry policy.
*/
package bffclient
