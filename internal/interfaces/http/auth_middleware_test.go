package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/oficialia-api/internal/application/dto"
	apphttp "github.com/jhoicas/oficialia-api/internal/interfaces/http"
	"github.com/jhoicas/oficialia-api/pkg/logger"
	pkgjwt "github.com/jhoicas/oficialia-api/pkg/jwt"
)

const (
	testJWTSecret       = "test-secret-key-for-unit-tests"
	testUserID    int64 = 41
	testIssuer          = "oficialia-test"
	testExpMin          = 60
)

// tokenForRole genera el header Authorization para testUserID con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// routerWithRoles arma el router real restringido a los roles dados.
func routerWithRoles(svc *stubService, roles ...string) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Correspondence: svc,
		JWTSecret:      testJWTSecret,
		AllowedRoles:   roles,
		Log:            logger.Nop(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, authHeader string) (*http.Response, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var body dto.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	return resp, body
}

// ── AuthMiddleware ───────────────────────────────────────────────────────────

func TestAuth_CabeceraInvalida(t *testing.T) {
	app := routerWithRoles(&stubService{})

	otroSecreto, err := pkgjwt.Generate("otro-secreto", testUserID, "oficialia", testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"firma ajena", "Bearer " + otroSecreto, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := call(t, app, http.MethodGet, "/api/correspondencia", tc.header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestAuth_UsuarioDelTokenLlegaAlServicio(t *testing.T) {
	svc := &stubService{}
	app := routerWithRoles(svc)

	resp, _ := call(t, app, http.MethodGet, "/api/correspondencia/9", tokenForRole(t, "oficialia"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testUserID, svc.gotUser)
	assert.Equal(t, int64(9), svc.gotID)
}

func TestAuth_HealthEsPublico(t *testing.T) {
	app := routerWithRoles(&stubService{}, "titular")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ── RequireRole vía HTTP_ALLOWED_ROLES ──────────────────────────────────────

func TestAllowedRoles(t *testing.T) {
	cases := []struct {
		name   string
		role   string
		status int
		code   string
	}{
		{"rol permitido", "titular", http.StatusOK, ""},
		{"otro rol permitido", "oficialia", http.StatusOK, ""},
		{"mayúsculas", "OFICIALIA", http.StatusOK, ""},
		{"rol ajeno", "capturista", http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", "", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{}
			app := routerWithRoles(svc, "oficialia", "titular")

			resp, body := call(t, app, http.MethodGet, "/api/areas", tokenForRole(t, tc.role))

			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.code != "" {
				assert.Equal(t, tc.code, body.Code)
			}
		})
	}
}

func TestAllowedRoles_BloqueaAntesDelServicio(t *testing.T) {
	svc := &stubService{}
	app := routerWithRoles(svc, "titular")

	resp, _ := call(t, app, http.MethodGet, "/api/correspondencia?estado=todos", tokenForRole(t, "capturista"))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, svc.gotUser, "el servicio no debe invocarse")
}

func TestAllowedRoles_VacioAceptaCualquierRol(t *testing.T) {
	app := routerWithRoles(&stubService{})

	resp, _ := call(t, app, http.MethodGet, "/api/areas", tokenForRole(t, ""))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ── RequirePosition en POST /api/correspondencia ─────────────────────────────

func TestRequirePosition_UsuarioSinPuesto(t *testing.T) {
	svc := &stubService{}
	app := routerWithRoles(svc)

	resp, body := call(t, app, http.MethodPost, "/api/correspondencia", tokenForRole(t, "oficialia"))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "NO_POSITION", body.Code)
	assert.Zero(t, svc.gotUser, "el servicio no debe invocarse")
}

func TestRequirePosition_FallaAlConsultarPuestos(t *testing.T) {
	svc := &stubService{positionsErr: errors.New("pool agotado")}
	app := routerWithRoles(svc)

	resp, body := call(t, app, http.MethodPost, "/api/correspondencia", tokenForRole(t, "oficialia"))

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "POSITION_CHECK_FAILED", body.Code)
}

func TestRequirePosition_NoAplicaALaBandeja(t *testing.T) {
	svc := &stubService{}
	app := routerWithRoles(svc)

	resp, _ := call(t, app, http.MethodGet, "/api/correspondencia", tokenForRole(t, "oficialia"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testUserID, svc.gotUser)
}
