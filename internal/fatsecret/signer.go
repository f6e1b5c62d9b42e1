// Package fatsecret is a small client for the FatSecret Platform REST API.
//
// Requests are signed with OAuth 1.0 "two-legged" HMAC-SHA1: there is no
// user token, so the signing key is the consumer secret followed by "&".
package fatsecret

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	signatureMethod = "HMAC-SHA1"
	oauthVersion    = "1.0"
)

// Sign returns a copy of params with the OAuth parameters and
// oauth_signature added. params itself is not modified.
//
// nonce and timestamp are inputs so the result is reproducible; callers
// must pass a fresh pair for every request.
func Sign(method, baseURL string, params url.Values, consumerKey, consumerSecret, nonce string, timestamp int64) url.Values {
	signed := make(url.Values, len(params)+6)
	for k, v := range params {
		signed[k] = append([]string(nil), v...)
	}
	signed.Set("oauth_consumer_key", consumerKey)
	signed.Set("oauth_nonce", nonce)
	signed.Set("oauth_signature_method", signatureMethod)
	signed.Set("oauth_timestamp", strconv.FormatInt(timestamp, 10))
	signed.Set("oauth_version", oauthVersion)

	base := signatureBase(method, baseURL, signed)
	key := percentEncode(consumerSecret) + "&"

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	signed.Set("oauth_signature", base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	return signed
}

// signatureBase builds METHOD&enc(url)&enc(sorted params).
func signatureBase(method, baseURL string, params url.Values) string {
	pairs := make([]string, 0, len(params))
	for k, vs := range params {
		ek := percentEncode(k)
		for _, v := range vs {
			pairs = append(pairs, ek+"="+percentEncode(v))
		}
	}
	// Encoded keys never contain '=', so sorting "k=v" strings orders by key
	// first and by value for repeated keys.
	sort.Strings(pairs)

	return strings.ToUpper(method) + "&" +
		percentEncode(baseURL) + "&" +
		percentEncode(strings.Join(pairs, "&"))
}

// percentEncode is RFC 3986 encoding: only ALPHA / DIGIT / "-._~" stay
// literal. url.QueryEscape matches that except for writing space as "+",
// and a literal '+' in the input is already escaped to %2B.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
