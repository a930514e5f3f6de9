package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func sampleClaims() Claims {
	return Claims{
		UserID:    "user-1",
		Name:      "Ada",
		Email:     "ada@example.com",
		Address:   "1 Main St",
		Latitude:  "51.5",
		Longitude: "-0.12",
		Day:       3,
	}
}

func newTestCodec(t *testing.T, clock *fakeClock, opts ...Option) *Codec {
	t.Helper()
	opts = append(opts, WithClock(clock.Now))
	c, err := New("test-secret", DefaultTTL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New("", time.Hour)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestNew_DefaultTTL(t *testing.T) {
	c, err := New("k", 0)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, c.TTL())
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	raw, err := c.Issue(sampleClaims())
	require.NoError(t, err)

	got, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "51.5", got.Latitude)
	assert.Equal(t, 3, got.Day)
	assert.Equal(t, "user-1", got.Subject)
	assert.True(t, got.ExpiresAt.Time.Equal(clock.t.Add(DefaultTTL)))
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issued}
	c := newTestCodec(t, clock)

	raw, err := c.Issue(sampleClaims())
	require.NoError(t, err)

	clock.t = issued.Add(DefaultTTL - time.Second)
	_, err = c.Verify(raw)
	require.NoError(t, err, "one second before expiry must still verify")

	clock.t = issued.Add(DefaultTTL)
	_, err = c.Verify(raw)
	require.ErrorIs(t, err, ErrInvalid, "token must be invalid at expiry")

	clock.t = issued.Add(DefaultTTL + time.Hour)
	_, err = c.Verify(raw)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	signer := newTestCodec(t, clock)
	other, err := New("other-secret", DefaultTTL, WithClock(clock.Now))
	require.NoError(t, err)

	raw, err := signer.Issue(sampleClaims())
	require.NoError(t, err)

	_, err = other.Verify(raw)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_TamperedPayload(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	raw, err := c.Issue(sampleClaims())
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)

	forged := sampleClaims()
	forged.UserID = "admin"
	forgedRaw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString([]byte("attacker"))
	require.NoError(t, err)
	forgedParts := strings.Split(forgedRaw, ".")

	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = c.Verify(spliced)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	claims := sampleClaims()
	claims.ExpiresAt = jwt.NewNumericDate(clock.t.Add(time.Hour))

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = c.Verify(hs512)
	require.ErrorIs(t, err, ErrInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Verify(none)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_MissingExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sampleClaims()).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = c.Verify(raw)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	for _, raw := range []string{"", "not.a.jwt", "abc", "a.b", "....", "eyJhbGciOiJIUzI1NiJ9.%%%.sig"} {
		t.Run(raw, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := c.Verify(raw)
				assert.ErrorIs(t, err, ErrInvalid)
			})
		})
	}
}

func TestVerify_Issuer(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	issuerA := newTestCodec(t, clock, WithIssuer("a"))
	issuerB := newTestCodec(t, clock, WithIssuer("b"))

	raw, err := issuerA.Issue(sampleClaims())
	require.NoError(t, err)

	_, err = issuerA.Verify(raw)
	require.NoError(t, err)

	_, err = issuerB.Verify(raw)
	require.ErrorIs(t, err, ErrInvalid)
}
