package sigv4

import (
	"strings"

	"github.com/jayantasamaddar/go-awsclient/utils"
)

// # (2) Create the stringToSign
//
// The stringToSign is built out of four parts, joined by a newline character
// ("\n") after each part:
//  1. `Algorithm`: the literal algorithm tag, AWS4-HMAC-SHA256.
//  2. `RequestDateTime`: the full signing timestamp, e.g. 20150830T123600Z.
//  3. `CredentialScope`: YYYYMMDD/region/execute-api/aws4_request. This
//     restricts the resulting signature to one day, one region and one service.
//  4. `HashedCanonicalRequest`: Hex(SHA256(canonicalRequest)).
func stringToSign(amzDate, region, canonicalRequest string) string {
	return strings.Join([]string{
		Algorithm,
		amzDate,
		credentialScope(amzDate[:len(ShortTimeFormat)], region),
		utils.Hash([]byte(canonicalRequest)),
	}, "\n")
}

// credentialScope limits a derived key to one date, region and service.
func credentialScope(shortDate, region string) string {
	return strings.Join([]string{shortDate, region, ServiceName, TerminationString}, "/")
}
