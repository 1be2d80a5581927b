package sessionkit

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

type memTokenStore struct {
	mu   sync.Mutex
	pair *TokenPair
	user *User

	pairErr error
	userErr error

	setPairCalls    int
	setUserCalls    int
	removePairCalls int
	removeUserCalls int
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{}
}

func (s *memTokenStore) Pair(context.Context) (*TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pairErr != nil {
		return nil, s.pairErr
	}
	if s.pair == nil {
		return nil, nil
	}
	pair := *s.pair
	return &pair, nil
}

func (s *memTokenStore) SetPair(_ context.Context, pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setPairCalls++
	p := pair
	s.pair = &p
	return nil
}

func (s *memTokenStore) RemovePair(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removePairCalls++
	s.pair = nil
	return nil
}

func (s *memTokenStore) User(context.Context) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userErr != nil {
		return nil, s.userErr
	}
	if s.user == nil {
		return nil, nil
	}
	user := *s.user
	return &user, nil
}

func (s *memTokenStore) SetUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setUserCalls++
	u := user
	s.user = &u
	return nil
}

func (s *memTokenStore) RemoveUser(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeUserCalls++
	s.user = nil
	return nil
}

func (s *memTokenStore) storedPair() *TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pair == nil {
		return nil
	}
	pair := *s.pair
	return &pair
}

func (s *memTokenStore) storedUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

type memScratchStore struct {
	mu    sync.Mutex
	items map[string][]byte

	getErr    error
	setErr    error
	removeErr error
}

func newMemScratchStore() *memScratchStore {
	return &memScratchStore{items: make(map[string][]byte)}
}

func (s *memScratchStore) Item(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	value, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *memScratchStore) SetItem(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setErr != nil {
		return s.setErr
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = stored
	return nil
}

func (s *memScratchStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.items, key)
	return nil
}

func (s *memScratchStore) stored(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.items[key]
	if !ok {
		return nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}

type mockAuthAPI struct {
	mu sync.Mutex

	loginFn         func(ctx context.Context, email, password string) (*LoginResponse, error)
	signupFn        func(ctx context.Context, req SignupRequest) (*LoginResponse, error)
	googleFn        func(ctx context.Context, idToken string) (*LoginResponse, error)
	refreshFn       func(ctx context.Context, refreshToken string) (*TokenPair, error)
	validateFn      func(ctx context.Context, accessToken string) (*User, error)
	createProfileFn func(ctx context.Context, accessToken string, req ProfileRequest) (*User, error)

	loginCalls         int
	signupCalls        int
	googleCalls        int
	refreshCalls       int
	validateCalls      int
	createProfileCalls int
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	m.mu.Lock()
	m.loginCalls++
	fn := m.loginFn
	m.mu.Unlock()

	if fn == nil {
		return nil, NewAPIError(ErrorKindServer, 500, "login not wired", nil)
	}
	return fn(ctx, email, password)
}

func (m *mockAuthAPI) Signup(ctx context.Context, req SignupRequest) (*LoginResponse, error) {
	m.mu.Lock()
	m.signupCalls++
	fn := m.signupFn
	m.mu.Unlock()

	if fn == nil {
		return nil, NewAPIError(ErrorKindServer, 500, "signup not wired", nil)
	}
	return fn(ctx, req)
}

func (m *mockAuthAPI) LoginWithGoogle(ctx context.Context, idToken string) (*LoginResponse, error) {
	m.mu.Lock()
	m.googleCalls++
	fn := m.googleFn
	m.mu.Unlock()

	if fn == nil {
		return nil, NewAPIError(ErrorKindServer, 500, "google login not wired", nil)
	}
	return fn(ctx, idToken)
}

func (m *mockAuthAPI) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	m.mu.Lock()
	m.refreshCalls++
	fn := m.refreshFn
	m.mu.Unlock()

	if fn == nil {
		return nil, NewAPIError(ErrorKindServer, 500, "refresh not wired", nil)
	}
	return fn(ctx, refreshToken)
}

func (m *mockAuthAPI) ValidateToken(ctx context.Context, accessToken string) (*User, error) {
	m.mu.Lock()
	m.validateCalls++
	fn := m.validateFn
	m.mu.Unlock()

	if fn == nil {
		return nil, NewAPIError(ErrorKindServer, 500, "validate not wired", nil)
	}
	return fn(ctx, accessToken)
}

func (m *mockAuthAPI) CreateProfile(ctx context.Context, accessToken string, req ProfileRequest) (*User, error) {
	m.mu.Lock()
	m.createProfileCalls++
	fn := m.createProfileFn
	m.mu.Unlock()

	if fn == nil {
		return nil, NewAPIError(ErrorKindServer, 500, "create profile not wired", nil)
	}
	return fn(ctx, accessToken, req)
}

func (m *mockAuthAPI) calls() (login, signup, google, refresh, validate, createProfile int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCalls, m.signupCalls, m.googleCalls, m.refreshCalls, m.validateCalls, m.createProfileCalls
}

func sessionTestConfig() Config {
	return DefaultConfig()
}

func newTestEngine(t *testing.T, cfg Config, api AuthAPI) (*Engine, *memTokenStore, *memScratchStore) {
	t.Helper()

	tokens := newMemTokenStore()
	scratch := newMemScratchStore()

	engine, err := New().
		WithConfig(cfg).
		WithTokenStore(tokens).
		WithScratchStore(scratch).
		WithAuthAPI(api).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, tokens, scratch
}

func makeAccessToken(tb testing.TB, ttl time.Duration) string {
	tb.Helper()

	claims := jwtlib.MapClaims{
		"uid": "u1",
		"exp": time.Now().Add(ttl).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	if err != nil {
		tb.Fatalf("sign test token failed: %v", err)
	}
	return token
}

func makeTokenWithoutExpiry(tb testing.TB) string {
	tb.Helper()

	claims := jwtlib.MapClaims{"uid": "u1"}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	if err != nil {
		tb.Fatalf("sign test token failed: %v", err)
	}
	return token
}

func teacherUser() *User {
	return &User{
		ID:       "u1",
		Email:    "alice@school.example",
		FullName: "Alice Martin",
		Role:     RoleTeacher,
		SchoolID: "sch-9",
	}
}

func TestSignInTransitionsToAuthenticated(t *testing.T) {
	engine, tokens, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})

	pair := TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r1"}
	engine.SignIn(context.Background(), pair, teacherUser())

	st := engine.State()
	if st.Status != StatusAuthenticated {
		t.Fatalf("status = %v, want %v", st.Status, StatusAuthenticated)
	}
	if st.Token == nil || st.Token.Access != pair.Access {
		t.Fatalf("state token = %+v, want access %q", st.Token, pair.Access)
	}
	if st.User == nil || st.User.ID != "u1" || st.User.Role != RoleTeacher {
		t.Fatalf("state user = %+v, want u1/teacher", st.User)
	}

	if stored := tokens.storedPair(); stored == nil || stored.Refresh != "r1" {
		t.Fatalf("stored pair = %+v, want refresh r1", stored)
	}
	if stored := tokens.storedUser(); stored == nil || stored.ID != "u1" {
		t.Fatalf("stored user = %+v, want u1", stored)
	}
}

func TestSignInWithoutUserLeavesProfilePending(t *testing.T) {
	engine, tokens, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})

	tokens.user = teacherUser()

	pair := TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r1"}
	engine.SignIn(context.Background(), pair, nil)

	st := engine.State()
	if st.Status != StatusAuthenticated {
		t.Fatalf("status = %v, want %v", st.Status, StatusAuthenticated)
	}
	if st.User != nil {
		t.Fatalf("state user = %+v, want nil until onboarding completes", st.User)
	}
	if stored := tokens.storedUser(); stored != nil {
		t.Fatalf("stored user = %+v, want a stale profile cleared on profileless sign-in", stored)
	}
}

func TestSignInBumpsGeneration(t *testing.T) {
	engine, _, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})

	before := engine.State().Generation
	engine.SignIn(context.Background(), TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r1"}, teacherUser())
	mid := engine.State().Generation
	engine.SignIn(context.Background(), TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r2"}, teacherUser())
	after := engine.State().Generation

	if mid <= before || after <= mid {
		t.Fatalf("generation did not advance: %d -> %d -> %d", before, mid, after)
	}
}

func TestSignOutClearsSessionAndStoredCredentials(t *testing.T) {
	engine, tokens, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})

	engine.SignIn(context.Background(), TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r1"}, teacherUser())
	engine.SignOut(context.Background())

	st := engine.State()
	if st.Status != StatusUnauthenticated {
		t.Fatalf("status = %v, want %v", st.Status, StatusUnauthenticated)
	}
	if st.Token != nil || st.User != nil {
		t.Fatalf("expected token and user cleared, got token=%+v user=%+v", st.Token, st.User)
	}
	if tokens.storedPair() != nil || tokens.storedUser() != nil {
		t.Fatal("expected stored credentials removed on sign-out")
	}
}

func TestSignOutPreservesScratchState(t *testing.T) {
	cfg := sessionTestConfig()
	engine, _, scratch := newTestEngine(t, cfg, &mockAuthAPI{})
	ctx := context.Background()

	engine.SignIn(ctx, TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r1"}, nil)
	if err := engine.SetOnboardingContext(ctx, OnboardingContext{Email: "alice@school.example", Provider: "password"}); err != nil {
		t.Fatalf("SetOnboardingContext failed: %v", err)
	}
	if err := engine.SetDraftData(ctx, []byte(`{"role":"teacher"}`)); err != nil {
		t.Fatalf("SetDraftData failed: %v", err)
	}

	engine.SignOut(ctx)

	if scratch.stored(cfg.Storage.OnboardingContextKey) == nil {
		t.Fatal("expected onboarding context to survive sign-out")
	}
	if scratch.stored(cfg.Storage.DraftDataKey) == nil {
		t.Fatal("expected draft data to survive sign-out")
	}
	if engine.State().OnboardingContext == nil {
		t.Fatal("expected in-memory onboarding context to survive sign-out")
	}
}

func TestSignOutWhenAlreadySignedOutIsSafe(t *testing.T) {
	engine, _, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})

	engine.SignOut(context.Background())
	engine.SignOut(context.Background())

	if got := engine.State().Status; got != StatusUnauthenticated {
		t.Fatalf("status = %v, want %v", got, StatusUnauthenticated)
	}
}

func TestStateReturnsDeepCopies(t *testing.T) {
	engine, _, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})

	engine.SignIn(context.Background(), TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r1"}, teacherUser())

	st := engine.State()
	st.Token.Access = "tampered"
	st.User.FullName = "Mallory"

	fresh := engine.State()
	if fresh.Token.Access == "tampered" {
		t.Fatal("mutating a snapshot token leaked into engine state")
	}
	if fresh.User.FullName == "Mallory" {
		t.Fatal("mutating a snapshot user leaked into engine state")
	}
}

func TestSubscribeReceivesTransitionsUntilUnsubscribed(t *testing.T) {
	engine, _, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})
	ctx := context.Background()

	var seen []Status
	unsubscribe := engine.Subscribe(func(st State) {
		seen = append(seen, st.Status)
	})

	engine.SignIn(ctx, TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r1"}, teacherUser())
	engine.SignOut(ctx)
	unsubscribe()
	engine.SignIn(ctx, TokenPair{Access: makeAccessToken(t, time.Hour), Refresh: "r2"}, teacherUser())

	want := []Status{StatusAuthenticated, StatusUnauthenticated}
	if len(seen) != len(want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notification %d = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestOnboardingContextRoundTrip(t *testing.T) {
	cfg := sessionTestConfig()
	engine, _, scratch := newTestEngine(t, cfg, &mockAuthAPI{})
	ctx := context.Background()

	in := OnboardingContext{
		Email:    "alice@school.example",
		Provider: "google",
		FullName: "Alice Martin",
		Role:     RoleTeacher,
	}
	if err := engine.SetOnboardingContext(ctx, in); err != nil {
		t.Fatalf("SetOnboardingContext failed: %v", err)
	}

	// A second engine over the same scratch store models an app relaunch.
	relaunched, err := New().
		WithConfig(cfg).
		WithTokenStore(newMemTokenStore()).
		WithScratchStore(scratch).
		WithAuthAPI(&mockAuthAPI{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer relaunched.Close()

	out, err := relaunched.LoadOnboardingContext(ctx)
	if err != nil {
		t.Fatalf("LoadOnboardingContext failed: %v", err)
	}
	if out == nil || *out != in {
		t.Fatalf("loaded context = %+v, want %+v", out, in)
	}
	if relaunched.State().OnboardingContext == nil {
		t.Fatal("expected loaded context cached in state")
	}
}

func TestLoadOnboardingContextAbsentReturnsNil(t *testing.T) {
	engine, _, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})

	out, err := engine.LoadOnboardingContext(context.Background())
	if err != nil {
		t.Fatalf("LoadOnboardingContext failed: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil context for empty storage, got %+v", out)
	}
}

func TestLoadOnboardingContextCorruptPayloadReported(t *testing.T) {
	cfg := sessionTestConfig()
	engine, _, scratch := newTestEngine(t, cfg, &mockAuthAPI{})

	scratch.items[cfg.Storage.OnboardingContextKey] = []byte("{not json")

	_, err := engine.LoadOnboardingContext(context.Background())
	if err == nil {
		t.Fatal("expected decode error for corrupt payload")
	}
	if !strings.Contains(err.Error(), "decode onboarding context") {
		t.Fatalf("error = %v, want decode context wrap", err)
	}
}

func TestClearOnboardingContextRemovesMemoryAndStorage(t *testing.T) {
	cfg := sessionTestConfig()
	engine, _, scratch := newTestEngine(t, cfg, &mockAuthAPI{})
	ctx := context.Background()

	if err := engine.SetOnboardingContext(ctx, OnboardingContext{Email: "alice@school.example"}); err != nil {
		t.Fatalf("SetOnboardingContext failed: %v", err)
	}
	if err := engine.ClearOnboardingContext(ctx); err != nil {
		t.Fatalf("ClearOnboardingContext failed: %v", err)
	}

	if engine.State().OnboardingContext != nil {
		t.Fatal("expected in-memory context cleared")
	}
	if scratch.stored(cfg.Storage.OnboardingContextKey) != nil {
		t.Fatal("expected stored context cleared")
	}
}

func TestSetOnboardingContextStorageFailureKeepsMemoryAndReportsError(t *testing.T) {
	cfg := sessionTestConfig()
	engine, _, scratch := newTestEngine(t, cfg, &mockAuthAPI{})

	scratch.setErr = NewAPIError(ErrorKindServer, 0, "disk full", nil)

	err := engine.SetOnboardingContext(context.Background(), OnboardingContext{Email: "alice@school.example"})
	if err == nil {
		t.Fatal("expected storage error to surface")
	}
	if engine.State().OnboardingContext == nil {
		t.Fatal("expected memory-first write to survive a storage failure")
	}
}

func TestDraftDataRoundTripAndClear(t *testing.T) {
	engine, _, _ := newTestEngine(t, sessionTestConfig(), &mockAuthAPI{})
	ctx := context.Background()

	draft := []byte(`{"role":"student","grade":"5"}`)
	if err := engine.SetDraftData(ctx, draft); err != nil {
		t.Fatalf("SetDraftData failed: %v", err)
	}

	got, err := engine.DraftData(ctx)
	if err != nil {
		t.Fatalf("DraftData failed: %v", err)
	}
	if string(got) != string(draft) {
		t.Fatalf("draft = %q, want %q", got, draft)
	}

	if err := engine.ClearDraftData(ctx); err != nil {
		t.Fatalf("ClearDraftData failed: %v", err)
	}
	got, err = engine.DraftData(ctx)
	if err != nil {
		t.Fatalf("DraftData after clear failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil draft after clear, got %q", got)
	}
}
