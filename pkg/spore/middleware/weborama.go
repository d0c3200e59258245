package middleware

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/transport"
)

// Weborama authentication headers.
const (
	HeaderAppKey    = "X-Weborama-AppKey"
	HeaderSignature = "X-Weborama-Signature"
	HeaderUserEmail = "X-Weborama-User-Email"
)

// Weborama signs each request with a SHA-1 digest of the verb, the url path,
// the sorted params and the private key.
type Weborama struct {
	AppKey     string `mapstructure:"application_key" validate:"required"`
	PrivateKey string `mapstructure:"private_key" validate:"required"`
	UserEmail  string `mapstructure:"user_email"`

	lastCanonical string
	lastSignature string
}

func NewWeborama(appKey, privateKey, userEmail string) *Weborama {
	return &Weborama{AppKey: appKey, PrivateKey: privateKey, UserEmail: userEmail}
}

func (w *Weborama) Name() string {
	return "WeboramaAuth"
}

func (w *Weborama) Apply(rc *request.Context, h transport.HeaderWriter) error {
	canonical := CanonicalString(rc.Verb, rc.URLPath, rc.Params, w.PrivateKey)
	sig := Sign(canonical)
	w.lastCanonical = canonical
	w.lastSignature = sig

	h.SetHeader(HeaderAppKey, w.AppKey)
	h.SetHeader(HeaderSignature, sig)
	h.SetHeader(HeaderUserEmail, w.UserEmail)
	return nil
}

// LastCanonical returns the string signed by the latest Apply.
func (w *Weborama) LastCanonical() string {
	return w.lastCanonical
}

// LastSignature returns the signature produced by the latest Apply.
func (w *Weborama) LastSignature() string {
	return w.lastSignature
}

func (*Weborama) sealed() {}

// CanonicalString builds lower(verb) + urlPath + sorted "k=v" pairs +
// privateKey, with no separators.
func CanonicalString(verb, urlPath string, params *request.Params, privateKey string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(verb))
	b.WriteString(urlPath)
	for _, kv := range sortedPairs(params) {
		b.WriteString(kv)
	}
	b.WriteString(privateKey)
	return b.String()
}

// Sign returns the lowercase hex SHA-1 of canonical.
func Sign(canonical string) string {
	sum := sha1.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// sortedPairs renders params as "k=v" ordered by key.
func sortedPairs(params *request.Params) []string {
	keys := params.Keys()
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := params.Get(k)
		out = append(out, k+"="+v)
	}
	return out
}
