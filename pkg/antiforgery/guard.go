// Package antiforgery implements double-submit CSRF protection.
//
// A random session token lives in an authenticated (optionally encrypted)
// cookie. The request token sent back in a header or form field is the
// HMAC-SHA256 of that session token under a server secret, so it can only be
// produced by the server and only matches the cookie it was issued with.
package antiforgery

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// Default names of the cookie, header and form field.
const (
	CookieName    = "todoapp_antiforgery"
	HeaderName    = "X-XSRF-TOKEN"
	FormFieldName = "__RequestVerificationToken"
)

// DefaultMaxAge is the lifetime of an issued cookie.
const DefaultMaxAge = 12 * time.Hour

const sessionTokenBytes = 32

var (
	// ErrValidationFailed is wrapped by every validation failure.
	ErrValidationFailed = errors.New("antiforgery validation failed")

	ErrMissingCookie = fmt.Errorf("%w: cookie not present", ErrValidationFailed)
	ErrInvalidCookie = fmt.Errorf("%w: cookie invalid or expired", ErrValidationFailed)
	ErrMissingToken  = fmt.Errorf("%w: request token not present", ErrValidationFailed)
	ErrTokenMismatch = fmt.Errorf("%w: request token does not match cookie", ErrValidationFailed)
)

// TokenSet is everything a client needs to pass validation.
type TokenSet struct {
	CookieName    string `json:"cookieName"`
	CookieValue   string `json:"cookieValue"`
	FormFieldName string `json:"formFieldName"`
	HeaderName    string `json:"headerName"`
	RequestToken  string `json:"requestToken"`
}

// Options configures a Guard. HashKey and Secret are required; BlockKey
// enables cookie encryption and must be 16, 24 or 32 bytes when set.
type Options struct {
	HashKey  []byte
	BlockKey []byte
	Secret   []byte
	Secure   bool
	MaxAge   time.Duration
	Now      func() time.Time
}

// Guard issues and validates anti-forgery tokens.
type Guard struct {
	codecs []securecookie.Codec
	secret []byte
	secure bool
	maxAge time.Duration
	now    func() time.Time
}

type cookiePayload struct {
	Token    string    `json:"t"`
	IssuedAt time.Time `json:"iat"`
}

// New builds a Guard from opts.
func New(opts Options) (*Guard, error) {
	if len(opts.HashKey) == 0 {
		return nil, errors.New("antiforgery: hash key is required")
	}
	if len(opts.Secret) == 0 {
		return nil, errors.New("antiforgery: secret is required")
	}
	var blockKey []byte
	if len(opts.BlockKey) > 0 {
		switch len(opts.BlockKey) {
		case 16, 24, 32:
			blockKey = opts.BlockKey
		default:
			return nil, fmt.Errorf("antiforgery: block key must be 16, 24 or 32 bytes, got %d", len(opts.BlockKey))
		}
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	codecs := securecookie.CodecsFromPairs(opts.HashKey, blockKey)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(int(opts.MaxAge / time.Second))
			sc.SetSerializer(securecookie.JSONEncoder{})
		}
	}

	return &Guard{
		codecs: codecs,
		secret: opts.Secret,
		secure: opts.Secure,
		maxAge: opts.MaxAge,
		now:    opts.Now,
	}, nil
}

// Issue returns the token set for r. A valid cookie younger than half of
// MaxAge is reused; otherwise a new session token is minted and its cookie
// set on w, so a rendered page always has at least MaxAge/2 to submit.
func (g *Guard) Issue(w http.ResponseWriter, r *http.Request) (TokenSet, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		if p, err := g.decode(c.Value); err == nil && g.now().Sub(p.IssuedAt) < g.maxAge/2 {
			return g.tokenSet(c.Value, p.Token), nil
		}
	}

	raw := securecookie.GenerateRandomKey(sessionTokenBytes)
	if raw == nil {
		return TokenSet{}, errors.New("antiforgery: generate session token")
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	value, err := securecookie.EncodeMulti(CookieName, cookiePayload{Token: token, IssuedAt: g.now().UTC()}, g.codecs...)
	if err != nil {
		return TokenSet{}, fmt.Errorf("antiforgery: encode cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(g.maxAge / time.Second),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return g.tokenSet(value, token), nil
}

// Validate checks the request token in r against its cookie. The header is
// consulted first; the form field only for form-encoded bodies.
func (g *Guard) Validate(r *http.Request) error {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return ErrMissingCookie
	}
	p, err := g.decode(c.Value)
	if err != nil {
		return ErrInvalidCookie
	}

	got := r.Header.Get(HeaderName)
	if got == "" && isFormContent(r) {
		got = r.PostFormValue(FormFieldName)
	}
	if got == "" {
		return ErrMissingToken
	}

	want := g.requestToken(p.Token)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrTokenMismatch
	}
	return nil
}

func (g *Guard) decode(value string) (cookiePayload, error) {
	var p cookiePayload
	if err := securecookie.DecodeMulti(CookieName, value, &p, g.codecs...); err != nil {
		return cookiePayload{}, err
	}
	if p.Token == "" {
		return cookiePayload{}, errors.New("empty session token")
	}
	if g.now().Sub(p.IssuedAt) > g.maxAge {
		return cookiePayload{}, errors.New("cookie expired")
	}
	return p, nil
}

func (g *Guard) requestToken(sessionToken string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(sessionToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *Guard) tokenSet(cookieValue, sessionToken string) TokenSet {
	return TokenSet{
		CookieName:    CookieName,
		CookieValue:   cookieValue,
		FormFieldName: FormFieldName,
		HeaderName:    HeaderName,
		RequestToken:  g.requestToken(sessionToken),
	}
}

func isFormContent(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}
