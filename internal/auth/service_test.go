package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/andalib/andalib-backend/internal/admins"
	pkgAuth "github.com/andalib/andalib-backend/pkg/auth"
	"github.com/andalib/andalib-backend/pkg/config"
	"github.com/andalib/andalib-backend/pkg/db/dbtest"
	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "andalib",
	ExpirationMinutes: 30,
}

func TestServiceLoginIssuesToken(t *testing.T) {
	password := "pustaka-rahasia"
	admin := &models.Admin{
		ID:           7,
		Email:        "pustakawan@andalib.test",
		PasswordHash: mustHashPassword(t, password),
		Name:         "Pustakawan",
		Role:         enums.AdminRoleLibrarian,
	}
	repo := &stubAdminRepo{admin: admin}
	svc := buildTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "  PUSTAKAWAN@andalib.test ", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.lookedUp != "pustakawan@andalib.test" {
		t.Fatalf("expected normalized email lookup, got %q", repo.lookedUp)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.Token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.AdminID != 7 || claims.Role != enums.AdminRoleLibrarian {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if resp.Admin == nil || resp.Admin.Email != admin.Email {
		t.Fatalf("expected admin in response, got %+v", resp.Admin)
	}
	if repo.lastLogin == nil {
		t.Fatal("expected last login to be recorded")
	}
	if resp.ExpiresAt <= time.Now().Unix() {
		t.Fatalf("expected future expiry, got %d", resp.ExpiresAt)
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	admin := &models.Admin{
		ID:           1,
		Email:        "admin@andalib.test",
		PasswordHash: mustHashPassword(t, "correct"),
		Name:         "Admin",
		Role:         enums.AdminRoleAdmin,
	}

	cases := map[string]struct {
		repo *stubAdminRepo
		req  LoginRequest
	}{
		"wrong password": {repo: &stubAdminRepo{admin: admin}, req: LoginRequest{Email: admin.Email, Password: "nope"}},
		"unknown email":  {repo: &stubAdminRepo{err: gorm.ErrRecordNotFound}, req: LoginRequest{Email: "x@andalib.test", Password: "correct"}},
		"blank email":    {repo: &stubAdminRepo{admin: admin}, req: LoginRequest{Password: "correct"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := buildTestService(t, tc.repo)
			_, err := svc.Login(context.Background(), tc.req)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized error, got %v", err)
			}
			if tc.repo.lastLogin != nil {
				t.Fatal("failed login must not touch last login")
			}
		})
	}
}

func TestServiceLoginLookupFailureIsInternal(t *testing.T) {
	svc := buildTestService(t, &stubAdminRepo{err: errors.New("connection reset")})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@andalib.test", Password: "pw"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	client := dbtest.New(t)
	ctx := context.Background()
	cfg := config.BootstrapConfig{AdminEmail: "Root@Andalib.test", AdminPassword: "first-password", AdminName: "Root"}

	created, err := EnsureBootstrapAdmin(ctx, client, cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !created {
		t.Fatal("expected bootstrap admin to be created")
	}

	repo := admins.NewRepository(client.DB())
	admin, err := repo.FindByEmail(ctx, "root@andalib.test")
	if err != nil {
		t.Fatalf("find bootstrap admin: %v", err)
	}
	ok, err := security.VerifyPassword("first-password", admin.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("bootstrap password should verify: ok=%v err=%v", ok, err)
	}

	cfg.AdminPassword = "second-password"
	created, err = EnsureBootstrapAdmin(ctx, client, cfg)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if created {
		t.Fatal("bootstrap must not run when admins exist")
	}
}

func TestEnsureBootstrapAdminDisabled(t *testing.T) {
	created, err := EnsureBootstrapAdmin(context.Background(), nil, config.BootstrapConfig{})
	if err != nil || created {
		t.Fatalf("disabled bootstrap should be a no-op, got created=%v err=%v", created, err)
	}
}

func buildTestService(t *testing.T, repo *stubAdminRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{AdminRepo: repo, JWTConfig: testJWT})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubAdminRepo struct {
	admin     *models.Admin
	err       error
	lookedUp  string
	lastLogin *time.Time
}

func (s *stubAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	s.lookedUp = email
	if s.err != nil {
		return nil, s.err
	}
	if s.admin == nil || s.admin.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.admin, nil
}

func (s *stubAdminRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	s.lastLogin = &at
	return nil
}
