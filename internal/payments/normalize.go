package payments

import "strings"

// sessionTokenMarker is the literal word the gateway appends to session
// tokens. Corrupted responses have been observed duplicating it at the end
// of the token, which breaks the constructed checkout URL.
const sessionTokenMarker = "payment"

// NormalizeSessionToken strips trailing occurrences of the marker from a
// session token, repeatedly, until none remain. A token arriving as
// "abc123paymentpayment" comes out as "abc123".
func NormalizeSessionToken(token string) string {
	for strings.HasSuffix(token, sessionTokenMarker) {
		token = strings.TrimSuffix(token, sessionTokenMarker)
	}
	return token
}
