package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"academics/internal/auth"
	"academics/internal/handler"
	"academics/internal/model"
	"academics/internal/repository"
	"academics/internal/service"
	"academics/internal/testutil"
)

type app struct {
	e   *echo.Echo
	db  *gorm.DB
	jwt *auth.JWTService
}

func newApp(t *testing.T) *app {
	t.Helper()
	gdb := testutil.NewDB(t)
	jwtService := auth.NewJWTService("router-test-secret")

	users := repository.NewUserRepository(gdb, time.Second)
	departements := repository.NewDepartementRepository(gdb, time.Second)
	filieres := repository.NewFiliereRepository(gdb, time.Second)
	modules := repository.NewModuleRepository(gdb, time.Second)
	inscriptions := repository.NewInscriptionRepository(gdb, time.Second)
	notes := repository.NewNoteRepository(gdb, time.Second)
	stats := repository.NewStatsRepository(gdb, time.Second)

	userService := service.NewUserService(users, nil, 0)
	authService := service.NewAuthService(users, jwtService, userService)

	e := echo.New()
	Register(e, jwtService, Handlers{
		Auth:        handler.NewAuthHandler(authService, userService),
		Users:       handler.NewUserHandler(userService),
		Catalogue:   handler.NewCatalogueHandler(service.NewCatalogueService(departements, filieres, modules, users, nil)),
		Inscription: handler.NewInscriptionHandler(service.NewInscriptionService(inscriptions, filieres, users, nil)),
		Notes:       handler.NewNoteHandler(service.NewNoteService(notes, modules, inscriptions)),
		Stats:       handler.NewStatsHandler(service.NewStatsService(stats, nil)),
	})
	return &app{e: e, db: gdb, jwt: jwtService}
}

func (a *app) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) tokenFor(t *testing.T, u *model.User) string {
	t.Helper()
	pair, err := a.jwt.IssuePair(u)
	require.NoError(t, err)
	return pair.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestLogin(t *testing.T) {
	a := newApp(t)
	testutil.CreateUser(t, a.db, "alice@example.com", "alice", model.RoleTeacher, "pw123")

	t.Run("valid credentials", func(t *testing.T) {
		rec := a.do(t, http.MethodPost, "/api/login", "", `{"email":"alice@example.com","password":"pw123"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body handler.LoginResponse
		decode(t, rec, &body)
		assert.Equal(t, model.RoleTeacher, body.Role)
		assert.Equal(t, "alice", body.Username)
		assert.NotEmpty(t, body.AccessToken)
		assert.NotEmpty(t, body.RefreshToken)

		claims, err := a.jwt.ValidateAccessToken(body.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, model.RoleTeacher, claims.Role)
	})

	t.Run("token alias", func(t *testing.T) {
		rec := a.do(t, http.MethodPost, "/api/token", "", `{"email":"alice@example.com","password":"pw123"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	for name, body := range map[string]string{
		"wrong password": `{"email":"alice@example.com","password":"wrongpw"}`,
		"unknown email":  `{"email":"nobody@example.com","password":"pw123"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := a.do(t, http.MethodPost, "/api/login", "", body)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.NotContains(t, rec.Body.String(), "access_token")

			var errBody map[string]string
			decode(t, rec, &errBody)
			assert.Equal(t, "INVALID_CREDENTIALS", errBody["code"])
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		rec := a.do(t, http.MethodPost, "/api/login", "", `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRefresh(t *testing.T) {
	a := newApp(t)
	alice := testutil.CreateUser(t, a.db, "alice@example.com", "alice", model.RoleTeacher, "pw123")
	pair, err := a.jwt.IssuePair(alice)
	require.NoError(t, err)

	rec := a.do(t, http.MethodPost, "/api/token/refresh", "", fmt.Sprintf(`{"refresh_token":%q}`, pair.RefreshToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body handler.RefreshResponse
	decode(t, rec, &body)
	assert.NotEmpty(t, body.AccessToken)

	rec = a.do(t, http.MethodPost, "/api/token/refresh", "", fmt.Sprintf(`{"refresh_token":%q}`, pair.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/token/refresh", "", `{"refresh_token":"garbage"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListUsers(t *testing.T) {
	a := newApp(t)
	admin := testutil.CreateUser(t, a.db, "admin1@example.com", "admin1", model.RoleAdmin, "pw123")
	testutil.CreateUser(t, a.db, "admin2@example.com", "admin2", model.RoleAdmin, "pw123")
	student := testutil.CreateUser(t, a.db, "s1@example.com", "s1", model.RoleStudent, "pw123")
	testutil.CreateUser(t, a.db, "s2@example.com", "s2", model.RoleStudent, "pw123")
	testutil.CreateUser(t, a.db, "s3@example.com", "s3", model.RoleStudent, "pw123")
	director := testutil.CreateUser(t, a.db, "d@example.com", "d", model.RoleDirection, "pw123")
	adminToken := a.tokenFor(t, admin)

	t.Run("role filter returns exactly the admins", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/users?role=ADMIN", adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var users []model.UserSummary
		decode(t, rec, &users)
		require.Len(t, users, 2)
		for _, u := range users {
			assert.Equal(t, model.RoleAdmin, u.Role)
		}
	})

	t.Run("no filter returns everyone without secrets", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/users", adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var users []map[string]interface{}
		decode(t, rec, &users)
		assert.Len(t, users, 6)
		for _, u := range users {
			assert.NotContains(t, u, "password")
			assert.NotContains(t, u, "password_hash")
		}
		assert.NotContains(t, rec.Body.String(), "$2a$")
	})

	t.Run("unknown role gives an empty array", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/users?role=NOT_A_ROLE", adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("direction may list", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/users?role=STUDENT", a.tokenFor(t, director), "")
		require.Equal(t, http.StatusOK, rec.Code)
		var users []model.UserSummary
		decode(t, rec, &users)
		assert.Len(t, users, 3)
	})

	t.Run("student is forbidden", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/users", a.tokenFor(t, student), "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/users", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		pair, err := a.jwt.IssuePair(admin)
		require.NoError(t, err)
		rec := a.do(t, http.MethodGet, "/api/users", pair.RefreshToken, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRegisterAndMe(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, http.MethodPost, "/api/register", "",
		`{"email":"new@example.com","username":"newbie","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.UserSummary
	decode(t, rec, &created)
	assert.Equal(t, model.RoleStudent, created.Role)

	rec = a.do(t, http.MethodPost, "/api/register", "",
		`{"email":"new@example.com","username":"other","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/login", "", `{"email":"new@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login handler.LoginResponse
	decode(t, rec, &login)

	rec = a.do(t, http.MethodGet, "/api/me", login.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.UserSummary
	decode(t, rec, &me)
	assert.Equal(t, created.ID, me.ID)
}

func TestOverlongPasswordsAreRejected(t *testing.T) {
	a := newApp(t)
	admin := testutil.CreateUser(t, a.db, "admin@example.com", "admin", model.RoleAdmin, "pw123")
	target := testutil.CreateUser(t, a.db, "s@example.com", "s", model.RoleStudent, "pw123")
	adminToken := a.tokenFor(t, admin)
	long := strings.Repeat("x", 80)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		code   string
	}{
		{"register", http.MethodPost, "/api/register", "",
			fmt.Sprintf(`{"email":"new@example.com","username":"newbie","password":%q}`, long), "VALIDATION_ERROR"},
		{"create user", http.MethodPost, "/api/users", adminToken,
			fmt.Sprintf(`{"email":"t@example.com","username":"teach","password":%q,"role":"TEACHER"}`, long), "VALIDATION_ERROR"},
		{"update user", http.MethodPut, fmt.Sprintf("/api/users/%d", target.ID), adminToken,
			fmt.Sprintf(`{"password":%q}`, long), "VALIDATION_ERROR"},
		// 40 runes pass the length rule but take 80 bytes
		{"multi-byte register", http.MethodPost, "/api/register", "",
			fmt.Sprintf(`{"email":"mb@example.com","username":"multibyte","password":%q}`, strings.Repeat("é", 40)), "PASSWORD_TOO_LONG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, tt.method, tt.path, tt.token, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var errBody map[string]string
			decode(t, rec, &errBody)
			assert.Equal(t, tt.code, errBody["code"])
		})
	}

	rec := a.do(t, http.MethodPost, "/api/login", "", `{"email":"s@example.com","password":"pw123"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "rejected update must leave the password untouched")
}

func TestEnrollmentAndGradingFlow(t *testing.T) {
	a := newApp(t)
	admin := testutil.CreateUser(t, a.db, "admin@example.com", "admin", model.RoleAdmin, "pw123")
	teacher := testutil.CreateUser(t, a.db, "alice@example.com", "alice", model.RoleTeacher, "pw123")
	student := testutil.CreateUser(t, a.db, "s@example.com", "s", model.RoleStudent, "pw123")
	adminToken := a.tokenFor(t, admin)
	teacherToken := a.tokenFor(t, teacher)
	studentToken := a.tokenFor(t, student)

	rec := a.do(t, http.MethodPost, "/api/departements", adminToken, `{"code":"info","name":"Informatique"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dep model.Departement
	decode(t, rec, &dep)

	rec = a.do(t, http.MethodPost, "/api/departements", teacherToken, `{"code":"math","name":"Maths"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/filieres", adminToken, fmt.Sprintf(`{"code":"GI","name":"Genie","departement":%d}`, dep.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var fil model.Filiere
	decode(t, rec, &fil)

	rec = a.do(t, http.MethodPost, "/api/modules", adminToken,
		fmt.Sprintf(`{"code":"ALGO","name":"Algo","semestre":"S1","filiere":%d,"enseignant":%d}`, fil.ID, teacher.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var mod model.Module
	decode(t, rec, &mod)

	rec = a.do(t, http.MethodPost, "/api/inscriptions", studentToken, fmt.Sprintf(`{"filiere":%d,"academic_year":"2024-2025"}`, fil.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ins model.Inscription
	decode(t, rec, &ins)
	assert.Equal(t, model.InscriptionPending, ins.Status)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/api/notes/modules/%d/bulk", mod.ID), teacherToken,
		fmt.Sprintf(`{"academic_year":"2024-2025","grades":[{"student_id":%d,"note_controle":12,"note_examen":15}]}`, student.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "pending students cannot be graded")

	rec = a.do(t, http.MethodPatch, fmt.Sprintf("/api/inscriptions/%d/validate", ins.ID), adminToken, `{"status":"REJECTED"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPatch, fmt.Sprintf("/api/inscriptions/%d/validate", ins.ID), adminToken, `{"status":"VALIDATED"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/api/notes/modules/%d/bulk", mod.ID), teacherToken,
		fmt.Sprintf(`{"academic_year":"2024-2025","grades":[{"student_id":%d,"note_controle":"12"}]}`, student.ID))
	require.Equal(t, http.StatusBadRequest, rec.Code, "a missing exam grade is not a zero")
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	var stored int64
	require.NoError(t, a.db.Model(&model.Note{}).Count(&stored).Error)
	assert.Zero(t, stored)

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/api/notes/modules/%d/bulk", mod.ID), teacherToken,
		fmt.Sprintf(`{"academic_year":"2024-2025","grades":[{"student_id":%d,"note_controle":"12","note_examen":"15"}]}`, student.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/notes", studentToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []model.Note
	decode(t, rec, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "13.8", notes[0].NoteFinale.String())

	rec = a.do(t, http.MethodGet, "/api/admin/performance?academic_year=2024-2025", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var perf service.Performance
	decode(t, rec, &perf)
	assert.Equal(t, int64(1), perf.Graded)
	assert.InDelta(t, 100.0, perf.PassRate, 0.001)

	rec = a.do(t, http.MethodGet, "/api/admin/dashboard", teacherToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthz(t *testing.T) {
	a := newApp(t)
	rec := a.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
