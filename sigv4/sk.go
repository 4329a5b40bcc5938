package sigv4

import (
	"encoding/hex"

	"github.com/jayantasamaddar/go-awsclient/utils"
)

// # (3) Derive the Signing Key
//
// Four chained HMAC-SHA256 steps, each keyed by the previous output, seeded
// with "AWS4" prepended to the secret key:
//
//	kDate    = HMAC("AWS4"+secret, YYYYMMDD)
//	kRegion  = HMAC(kDate, region)
//	kService = HMAC(kRegion, "execute-api")
//	kSigning = HMAC(kService, "aws4_request")
func signingKey(secretKey, shortDate, region string) ([]byte, error) {
	return utils.HmacChain([]byte("AWS4"+secretKey), shortDate, region, ServiceName, TerminationString)
}

// # (4) Calculate the signature: Hex(HMAC(kSigning, stringToSign)).
func generateSignature(signingKey []byte, stringToSign string) (string, error) {
	mac, err := utils.HmacSHA256(signingKey, stringToSign)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(mac), nil
}
