package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"golang.org/x/oauth2"

	"crimestats/internal/models"
)

func newTestTokens(t *testing.T, secret string) *Tokens {
	t.Helper()
	tokens, err := NewTokens(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}
	return tokens
}

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := newTestTokens(t, "test-secret")

	raw, err := tokens.Issue("analyst")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(raw, ".") != 2 {
		t.Errorf("Issue() = %q, want compact JWS", raw)
	}

	p, err := tokens.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if p.Subject != "analyst" || p.Source != models.SourceLocal {
		t.Errorf("Verify() = %+v", p)
	}
}

func TestTokens_UniqueIDs(t *testing.T) {
	tokens := newTestTokens(t, "test-secret")
	a, _ := tokens.Issue("analyst")
	b, _ := tokens.Issue("analyst")
	if a == b {
		t.Error("Issue() returned identical tokens for the same subject")
	}
}

func TestTokens_VerifyRejects(t *testing.T) {
	tokens := newTestTokens(t, "test-secret")
	good, _ := tokens.Issue("analyst")

	expiredIssuer := newTestTokens(t, "test-secret")
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredIssuer.Issue("analyst")

	foreign, _ := newTestTokens(t, "other-secret").Issue("analyst")

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"tampered payload", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(context.Background(), tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	if _, err := NewTokens("", time.Hour); err == nil {
		t.Error("NewTokens(\"\") error = nil")
	}
}

func TestCredentials_Authenticate(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	creds, err := NewCredentials(map[string]string{"analyst": hash})
	if err != nil {
		t.Fatalf("NewCredentials() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "analyst", "s3cret", false},
		{"wrong password", "analyst", "guess", true},
		{"unknown user", "intruder", "s3cret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := creds.Authenticate(tt.username, tt.password)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil || p.Subject != tt.username {
				t.Errorf("Authenticate() = %+v, %v", p, err)
			}
		})
	}
}

func TestNewCredentials_RejectsPlaintext(t *testing.T) {
	if _, err := NewCredentials(map[string]string{"analyst": "plaintext"}); err == nil {
		t.Error("NewCredentials() accepted a non-bcrypt hash")
	}
}

const testIssuer = "https://issuer.example.com"

func newTestOIDC(t *testing.T) (*OIDC, jose.Signer) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, nil)
	if err != nil {
		t.Fatal(err)
	}

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: "dashboard"})
	return NewOIDCWithVerifier(oauth2.Config{ClientID: "dashboard"}, verifier), signer
}

func signIDToken(t *testing.T, signer jose.Signer, aud string, exp time.Time) string {
	t.Helper()
	raw, err := jwt.Signed(signer).Claims(jwt.Claims{
		Issuer:   testIssuer,
		Subject:  "user-123",
		Audience: jwt.Audience{aud},
		IssuedAt: jwt.NewNumericDate(time.Now()),
		Expiry:   jwt.NewNumericDate(exp),
	}).Serialize()
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestOIDC_Verify(t *testing.T) {
	o, signer := newTestOIDC(t)

	p, err := o.Verify(context.Background(), signIDToken(t, signer, "dashboard", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if p.Subject != "user-123" || !p.IsOIDC() {
		t.Errorf("Verify() = %+v", p)
	}

	_, err = o.Verify(context.Background(), signIDToken(t, signer, "someone-else", time.Now().Add(time.Hour)))
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(wrong audience) error = %v, want ErrInvalidToken", err)
	}

	_, err = o.Verify(context.Background(), signIDToken(t, signer, "dashboard", time.Now().Add(-time.Hour)))
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(expired) error = %v, want ErrInvalidToken", err)
	}
}

func TestOIDC_AuthCodeURL(t *testing.T) {
	o := NewOIDCWithVerifier(oauth2.Config{
		ClientID: "dashboard",
		Endpoint: oauth2.Endpoint{AuthURL: testIssuer + "/authorize"},
	}, nil)

	got := o.AuthCodeURL("xyz")
	if !strings.HasPrefix(got, testIssuer+"/authorize?") || !strings.Contains(got, "state=xyz") {
		t.Errorf("AuthCodeURL() = %q", got)
	}
}

func TestChain(t *testing.T) {
	tokens := newTestTokens(t, "test-secret")
	o, signer := newTestOIDC(t)
	chain := Chain{tokens, o}

	local, _ := tokens.Issue("analyst")
	p, err := chain.Verify(context.Background(), local)
	if err != nil || p.Source != models.SourceLocal {
		t.Errorf("Verify(local) = %+v, %v", p, err)
	}

	idToken := signIDToken(t, signer, "dashboard", time.Now().Add(time.Hour))
	p, err = chain.Verify(context.Background(), idToken)
	if err != nil || p.Source != models.SourceOIDC {
		t.Errorf("Verify(oidc) = %+v, %v", p, err)
	}

	if _, err := chain.Verify(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(\"\") error = %v, want ErrInvalidToken", err)
	}
}
