package oauthstate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/recallmail/recall/internal/domain"
)

// TokenTTL is how long a minted state token stays valid.
const TokenTTL = 10 * time.Minute

const payloadVersion = "v1"

var (
	// ErrInvalidState covers malformed tokens: bad encoding, wrong
	// structure, missing segments, unparseable payload fields.
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrSignatureMismatch means the payload did not verify against the
	// signing secret. Treat as a possible forgery attempt.
	ErrSignatureMismatch = errors.New("oauth state signature mismatch")

	// ErrExpired means the token verified but is older than TokenTTL.
	ErrExpired = errors.New("oauth state expired")

	// ErrEmptySubject rejects Generate calls without an initiating user.
	ErrEmptySubject = errors.New("oauth state subject must not be empty")
)

// StateToken is the decoded, verified content of a state parameter.
type StateToken struct {
	SubjectID string
	Source    domain.SourceType
	IssuedAt  time.Time
}

// Codec mints and validates state tokens with a process-wide signing
// secret. It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	clock  clockwork.Clock
}

// NewCodec creates a Codec. The signing secret must be at least 32
// characters; shorter secrets are a deployment error that the startup
// guard should have caught.
func NewCodec(signingSecret string, clock clockwork.Clock) (*Codec, error) {
	if len(signingSecret) < 32 {
		return nil, fmt.Errorf("signing secret must be at least 32 characters, got %d", len(signingSecret))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Codec{secret: []byte(signingSecret), clock: clock}, nil
}

// Generate mints a signed state token for the given user and source.
// An empty source falls back to domain.DefaultSource.
func (c *Codec) Generate(subjectID string, source domain.SourceType) (string, error) {
	if subjectID == "" {
		return "", ErrEmptySubject
	}
	if source == "" {
		source = domain.DefaultSource
	}

	payload := canonicalPayload(subjectID, source, c.clock.Now().UnixMilli())
	sig := c.sign(payload)

	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(payload)) + "." + enc.EncodeToString(sig), nil
}

// Validate decodes and verifies a state token. Failure kinds are
// ErrInvalidState, ErrSignatureMismatch, and ErrExpired; callers at the
// HTTP boundary must collapse all of them into one generic response.
func (c *Codec) Validate(token string) (*StateToken, error) {
	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok || payloadPart == "" || sigPart == "" {
		return nil, ErrInvalidState
	}

	enc := base64.RawURLEncoding
	payload, err := enc.DecodeString(payloadPart)
	if err != nil {
		return nil, ErrInvalidState
	}
	sig, err := enc.DecodeString(sigPart)
	if err != nil {
		return nil, ErrInvalidState
	}

	// Constant-time compare so response timing leaks nothing about how
	// close a forged signature was.
	if !hmac.Equal(sig, c.sign(string(payload))) {
		return nil, ErrSignatureMismatch
	}

	st, err := parsePayload(string(payload))
	if err != nil {
		return nil, err
	}

	if c.clock.Now().Sub(st.IssuedAt) > TokenTTL {
		return nil, ErrExpired
	}
	return st, nil
}

func (c *Codec) sign(payload string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func canonicalPayload(subjectID string, source domain.SourceType, issuedAtMs int64) string {
	return fmt.Sprintf("%s|%s|%s|%d", payloadVersion, subjectID, source, issuedAtMs)
}

func parsePayload(payload string) (*StateToken, error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 || parts[0] != payloadVersion {
		return nil, ErrInvalidState
	}

	subjectID := parts[1]
	if subjectID == "" {
		return nil, ErrInvalidState
	}

	source, err := domain.ParseSourceType(parts[2])
	if err != nil {
		return nil, ErrInvalidState
	}

	issuedAtMs, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, ErrInvalidState
	}

	return &StateToken{
		SubjectID: subjectID,
		Source:    source,
		IssuedAt:  time.UnixMilli(issuedAtMs),
	}, nil
}
