//go:build integration
// +build integration

package test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/edusdk/sessionkit"
	"github.com/edusdk/sessionkit/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

func newIntegrationRedis(t *testing.T) (*store.Redis, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rs := store.NewRedis(rdb, "sk")

	return rs, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func makeIntegrationToken(tb testing.TB, ttl time.Duration) string {
	tb.Helper()

	claims := jwt.MapClaims{
		"uid":  "u1",
		"role": "teacher",
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("integration-secret"))
	if err != nil {
		tb.Fatalf("sign token failed: %v", err)
	}
	return signed
}

func integrationUser() *sessionkit.User {
	return &sessionkit.User{
		ID:       "u1",
		Email:    "alice@school.example",
		FullName: "Alice Martin",
		Role:     sessionkit.RoleTeacher,
		SchoolID: "sch-9",
	}
}

// scriptedAPI is a function-field fake for the backend client.
type scriptedAPI struct {
	loginFn         func(ctx context.Context, email, password string) (*sessionkit.LoginResponse, error)
	signupFn        func(ctx context.Context, req sessionkit.SignupRequest) (*sessionkit.LoginResponse, error)
	googleFn        func(ctx context.Context, idToken string) (*sessionkit.LoginResponse, error)
	refreshFn       func(ctx context.Context, refreshToken string) (*sessionkit.TokenPair, error)
	validateFn      func(ctx context.Context, accessToken string) (*sessionkit.User, error)
	createProfileFn func(ctx context.Context, accessToken string, req sessionkit.ProfileRequest) (*sessionkit.User, error)
}

func (a *scriptedAPI) Login(ctx context.Context, email, password string) (*sessionkit.LoginResponse, error) {
	if a.loginFn == nil {
		return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 500, "login not scripted", nil)
	}
	return a.loginFn(ctx, email, password)
}

func (a *scriptedAPI) Signup(ctx context.Context, req sessionkit.SignupRequest) (*sessionkit.LoginResponse, error) {
	if a.signupFn == nil {
		return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 500, "signup not scripted", nil)
	}
	return a.signupFn(ctx, req)
}

func (a *scriptedAPI) LoginWithGoogle(ctx context.Context, idToken string) (*sessionkit.LoginResponse, error) {
	if a.googleFn == nil {
		return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 500, "google login not scripted", nil)
	}
	return a.googleFn(ctx, idToken)
}

func (a *scriptedAPI) Refresh(ctx context.Context, refreshToken string) (*sessionkit.TokenPair, error) {
	if a.refreshFn == nil {
		return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 500, "refresh not scripted", nil)
	}
	return a.refreshFn(ctx, refreshToken)
}

func (a *scriptedAPI) ValidateToken(ctx context.Context, accessToken string) (*sessionkit.User, error) {
	if a.validateFn == nil {
		return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 500, "validate not scripted", nil)
	}
	return a.validateFn(ctx, accessToken)
}

func (a *scriptedAPI) CreateProfile(ctx context.Context, accessToken string, req sessionkit.ProfileRequest) (*sessionkit.User, error) {
	if a.createProfileFn == nil {
		return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 500, "create profile not scripted", nil)
	}
	return a.createProfileFn(ctx, accessToken, req)
}

func buildIntegrationEngine(t *testing.T, tokens sessionkit.TokenStore, scratch sessionkit.ScratchStore, api sessionkit.AuthAPI) *sessionkit.Engine {
	t.Helper()

	engine, err := sessionkit.New().
		WithTokenStore(tokens).
		WithScratchStore(scratch).
		WithAuthAPI(api).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}
