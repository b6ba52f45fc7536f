package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	users    map[int64]*User
	byEmail  map[string]*User
	sessions map[string]*Session
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[int64]*User),
		byEmail:  make(map[string]*User),
		sessions: make(map[string]*Session),
		nextID:   1,
	}
}

func (r *fakeRepo) CreateUser(ctx context.Context, user *User) error {
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeRepo) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (r *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (r *fakeRepo) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *fakeRepo) CreateSession(ctx context.Context, session *Session) error {
	session.ID = r.nextID
	r.nextID++
	r.sessions[session.RefreshToken] = session
	return nil
}

func (r *fakeRepo) GetSessionByRefreshToken(ctx context.Context, token string) (*Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (r *fakeRepo) DeleteSessionByRefreshToken(ctx context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

func (r *fakeRepo) DeleteUserSessions(ctx context.Context, userID int64) error {
	for token, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

func testConfig() *Config {
	return &Config{
		JWTSecret:          "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		BCryptCost:         4,
	}
}

func signupRequest() *SignupRequest {
	return &SignupRequest{
		Email:           "Ada@Example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		DisplayName:     "Ada",
	}
}

func TestSignup(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, testConfig())
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if resp.User.Email != "ada@example.com" {
		t.Errorf("email not normalized, got %q", resp.User.Email)
	}
	if resp.User.PasswordHash == "" || resp.User.PasswordHash == "correct-horse" {
		t.Error("password was not hashed")
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected both tokens in response")
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", resp.TokenType)
	}
	if len(repo.sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(repo.sessions))
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testConfig())

	req := signupRequest()
	req.ConfirmPassword = "something-else"
	if _, err := svc.Signup(context.Background(), req); err == nil {
		t.Fatal("expected error for mismatched passwords")
	}
}

func TestSignupEmailAlreadyExists(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testConfig())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupRequest()); err != nil {
		t.Fatalf("first Signup: %v", err)
	}

	req := signupRequest()
	req.Email = "ADA@example.com"
	if _, err := svc.Signup(ctx, req); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestSignin(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testConfig())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupRequest()); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	resp, err := svc.Signin(ctx, &SigninRequest{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected an access token")
	}
}

func TestSigninInvalidCredentials(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testConfig())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupRequest()); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	tests := []struct {
		name string
		req  *SigninRequest
	}{
		{"wrong password", &SigninRequest{Email: "ada@example.com", Password: "wrong"}},
		{"unknown email", &SigninRequest{Email: "nobody@example.com", Password: "correct-horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Signin(ctx, tt.req); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRefreshTokenRotates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, testConfig())
	ctx := context.Background()

	first, err := svc.Signup(ctx, signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	second, err := svc.RefreshToken(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("user ID = %d, want %d", second.User.ID, first.User.ID)
	}
	if _, ok := repo.sessions[first.RefreshToken]; ok {
		t.Error("old refresh token still has a session after rotation")
	}
	if _, ok := repo.sessions[second.RefreshToken]; !ok {
		t.Error("new refresh token has no session")
	}

	// The old token is single use.
	if _, err := svc.RefreshToken(ctx, first.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reusing rotated token: err = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testConfig())

	if _, err := svc.RefreshToken(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testConfig())
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, resp.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, testConfig())
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	claims, err := svc.ValidateToken(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("claims user ID = %d, want %d", claims.UserID, resp.User.ID)
	}
	if claims.Type != "access" {
		t.Errorf("claims type = %q, want access", claims.Type)
	}
}

func TestLogout(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, testConfig())
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if err := svc.Logout(ctx, resp.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Errorf("sessions = %d after logout, want 0", len(repo.sessions))
	}
}

func TestLogoutAllDevices(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, testConfig())
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := svc.Signin(ctx, &SigninRequest{Email: "ada@example.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("Signin: %v", err)
	}
	if len(repo.sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(repo.sessions))
	}

	if err := svc.LogoutAllDevices(ctx, resp.User.ID); err != nil {
		t.Fatalf("LogoutAllDevices: %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Errorf("sessions = %d after logout, want 0", len(repo.sessions))
	}
}
