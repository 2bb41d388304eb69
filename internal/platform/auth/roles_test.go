package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestAs(roles ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), "user-1", roles...))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireRole_Allows(t *testing.T) {
	h := RequireRole(RoleDoctor)(okHandler)
	if err := h(requestAs(RoleDoctor)); err != nil {
		t.Fatalf("expected doctor to pass, got %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	h := RequireRole(RoleDoctor)(okHandler)
	if err := h(requestAs(RoleAdmin)); err != nil {
		t.Fatalf("expected admin to pass every check, got %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	h := RequireRole(RoleDoctor)(okHandler)
	err := h(requestAs(RoleVisitor))
	if err == nil {
		t.Fatal("expected forbidden")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireRole_AnyOf(t *testing.T) {
	h := RequireRole(RoleDoctor, RoleSecretary)(okHandler)
	if err := h(requestAs(RoleSecretary)); err != nil {
		t.Fatalf("expected secretary to pass, got %v", err)
	}
}

func TestRequireRole_NoRoles(t *testing.T) {
	h := RequireRole(RoleDoctor)(okHandler)
	if err := h(requestAs()); err == nil {
		t.Fatal("expected request without roles to be denied")
	}
}

func TestActingRole_Precedence(t *testing.T) {
	cases := []struct {
		roles []string
		want  string
	}{
		{[]string{RoleVisitor, RoleSecretary}, RoleSecretary},
		{[]string{RoleSecretary, RoleDoctor}, RoleDoctor},
		{[]string{RoleDoctor, RoleAdmin}, RoleAdmin},
		{[]string{RoleVisitor}, RoleVisitor},
		{nil, ""},
	}
	for _, tc := range cases {
		c := requestAs(tc.roles...)
		if got := ActingRole(c.Request().Context()); got != tc.want {
			t.Errorf("roles %v: expected %q, got %q", tc.roles, tc.want, got)
		}
	}
}
