package core

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OAuthSignatureMethod = "HMAC-SHA1"
	OAuthVersion         = "1.0"

	ParamConsumerKey     = "oauth_consumer_key"
	ParamNonce           = "oauth_nonce"
	ParamSignature       = "oauth_signature"
	ParamSignatureMethod = "oauth_signature_method"
	ParamTimestamp       = "oauth_timestamp"
	ParamToken           = "oauth_token"
	ParamTokenSecret     = "oauth_token_secret"
	ParamVerifier        = "oauth_verifier"
	ParamVersion         = "oauth_version"
	ParamCallback        = "oauth_callback"

	oauthParamPrefix = "oauth_"
)

// Parameter is one signable key/value pair. Multiple entries may share a key.
type Parameter struct {
	Key   string
	Value string
}

// OAuth1Signer builds HMAC-SHA1 Authorization header values. Nonce and Now
// are the only volatile inputs; both default to random/wall-clock sources.
type OAuth1Signer struct {
	Nonce func() string
	Now   func() time.Time
}

func NewOAuth1Signer() OAuth1Signer {
	return OAuth1Signer{}
}

// Sign returns the value for the Authorization header of a request with the
// given method and URL. token may be nil for the request-token step.
func (s OAuth1Signer) Sign(
	method string,
	rawURL string,
	consumer ConsumerCredential,
	token *Credential,
	extra map[string]string,
) (string, error) {
	nonce := s.nonce()
	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	return s.SignWith(nonce, timestamp, method, rawURL, consumer, token, extra)
}

// SignWith is Sign with caller-supplied nonce and timestamp. extra may only
// carry oauth_ protocol parameters such as oauth_callback or oauth_verifier.
func (s OAuth1Signer) SignWith(
	nonce string,
	timestamp string,
	method string,
	rawURL string,
	consumer ConsumerCredential,
	token *Credential,
	extra map[string]string,
) (string, error) {
	if strings.TrimSpace(consumer.Key) == "" {
		return "", newInputError("core: consumer key is required for signing")
	}
	if strings.TrimSpace(nonce) == "" || strings.TrimSpace(timestamp) == "" {
		return "", newInputError("core: nonce and timestamp are required for signing")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "", newInputError("core: http method is required for signing")
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", wrapInputError(err, "core: invalid url for signing")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", newInputError(fmt.Sprintf("core: url %q must be absolute", rawURL))
	}

	protocol := map[string]string{
		ParamConsumerKey:     consumer.Key,
		ParamNonce:           nonce,
		ParamSignatureMethod: OAuthSignatureMethod,
		ParamTimestamp:       timestamp,
		ParamVersion:         OAuthVersion,
	}
	if token != nil && token.Key != "" {
		protocol[ParamToken] = token.Key
	}
	for key, value := range extra {
		if strings.TrimSpace(key) == "" {
			continue
		}
		// only oauth_ parameters travel in the header; anything else belongs
		// in the URL query, where the signer already picks it up
		if !strings.HasPrefix(key, oauthParamPrefix) {
			return "", newInputError(fmt.Sprintf("core: extra signing parameter %q must use the oauth_ prefix", key))
		}
		protocol[key] = value
	}

	params := make([]Parameter, 0, len(protocol)+4)
	for key, value := range protocol {
		params = append(params, Parameter{Key: key, Value: value})
	}
	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return "", wrapInputError(err, "core: invalid url query for signing")
	}
	for key, values := range query {
		for _, value := range values {
			params = append(params, Parameter{Key: key, Value: value})
		}
	}

	baseString := SignatureBaseString(method, parsed, params)
	tokenSecret := ""
	if token != nil {
		tokenSecret = token.Secret
	}
	protocol[ParamSignature] = hmacSHA1Signature(consumer.Secret, tokenSecret, baseString)

	return authorizationHeader(protocol), nil
}

func (s OAuth1Signer) nonce() string {
	if s.Nonce != nil {
		if value := strings.TrimSpace(s.Nonce()); value != "" {
			return value
		}
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s OAuth1Signer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// SignatureBaseString builds METHOD&enc(base-url)&enc(normalized-params).
func SignatureBaseString(method string, requestURL *url.URL, params []Parameter) string {
	return strings.Join([]string{
		strings.ToUpper(strings.TrimSpace(method)),
		PercentEncode(BaseURL(requestURL)),
		PercentEncode(NormalizeParameters(params)),
	}, "&")
}

// BaseURL is scheme://host[:non-default-port]/path without query or fragment.
func BaseURL(requestURL *url.URL) string {
	if requestURL == nil {
		return ""
	}
	scheme := strings.ToLower(requestURL.Scheme)
	host := strings.ToLower(requestURL.Hostname())
	if port := requestURL.Port(); port != "" {
		if !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
			host = host + ":" + port
		}
	}
	path := requestURL.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path
}

// NormalizeParameters encodes, sorts by encoded key then encoded value, and
// joins the pairs with '&'.
func NormalizeParameters(params []Parameter) string {
	if len(params) == 0 {
		return ""
	}
	encoded := make([]Parameter, 0, len(params))
	for _, param := range params {
		encoded = append(encoded, Parameter{
			Key:   PercentEncode(param.Key),
			Value: PercentEncode(param.Value),
		})
	}
	sort.Slice(encoded, func(i, j int) bool {
		if encoded[i].Key == encoded[j].Key {
			return encoded[i].Value < encoded[j].Value
		}
		return encoded[i].Key < encoded[j].Key
	})

	pairs := make([]string, 0, len(encoded))
	for _, param := range encoded {
		pairs = append(pairs, param.Key+"="+param.Value)
	}
	return strings.Join(pairs, "&")
}

// PercentEncode escapes everything outside the RFC 3986 unreserved set.
func PercentEncode(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func PercentDecode(value string) (string, error) {
	return url.PathUnescape(value)
}

// ParseNormalizedParameters reverses NormalizeParameters.
func ParseNormalizedParameters(normalized string) ([]Parameter, error) {
	if normalized == "" {
		return nil, nil
	}
	pairs := strings.Split(normalized, "&")
	out := make([]Parameter, 0, len(pairs))
	for _, pair := range pairs {
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := PercentDecode(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := PercentDecode(rawValue)
		if err != nil {
			return nil, err
		}
		out = append(out, Parameter{Key: key, Value: value})
	}
	return out, nil
}

func hmacSHA1Signature(consumerSecret string, tokenSecret string, baseString string) string {
	signingKey := PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	_, _ = mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func authorizationHeader(protocol map[string]string) string {
	keys := make([]string, 0, len(protocol))
	for key := range protocol {
		if !strings.HasPrefix(key, oauthParamPrefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, PercentEncode(key)+`="`+PercentEncode(protocol[key])+`"`)
	}
	return "OAuth " + strings.Join(pairs, ", ")
}

// ParseAuthorizationHeader splits an "OAuth k=\"v\", ..." value into decoded
// parameters.
func ParseAuthorizationHeader(header string) (map[string]string, error) {
	trimmed := strings.TrimSpace(header)
	if !strings.HasPrefix(trimmed, "OAuth ") {
		return nil, fmt.Errorf("core: authorization header is not an OAuth header")
	}
	out := map[string]string{}
	for _, part := range strings.Split(strings.TrimPrefix(trimmed, "OAuth "), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rawKey, rawValue, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("core: malformed authorization parameter %q", part)
		}
		key, err := PercentDecode(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := PercentDecode(strings.Trim(rawValue, `"`))
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}
