package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondserving/internal/apperror"
	"secondserving/internal/logging"
	"secondserving/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logging.Silence()
}

type stubProtector struct {
	gotToken string
	gotKinds []models.AccountKind
	account  *models.Account
	spot     *models.HungerSpot
	err      error
}

func (s *stubProtector) Protect(_ context.Context, raw string, kinds ...models.AccountKind) (*models.Account, error) {
	s.gotToken, s.gotKinds = raw, kinds
	return s.account, s.err
}

func (s *stubProtector) ProtectHungerSpot(_ context.Context, raw string) (*models.HungerSpot, error) {
	s.gotToken = raw
	return s.spot, s.err
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAccountReadsBearerHeader(t *testing.T) {
	p := &stubProtector{account: &models.Account{FullName: "Asha", Kind: models.KindDonor}}
	r := gin.New()
	r.GET("/me", RequireAccount(p, models.KindDonor), func(c *gin.Context) {
		account, err := CurrentAccount(c)
		require.NoError(t, err)
		c.String(http.StatusOK, account.FullName)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", w.Body.String())
	assert.Equal(t, "abc.def", p.gotToken)
	assert.Equal(t, []models.AccountKind{models.KindDonor}, p.gotKinds)
}

func TestRequireAccountFallsBackToCookie(t *testing.T) {
	p := &stubProtector{account: &models.Account{}}
	r := gin.New()
	r.GET("/me", RequireAccount(p), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "from-cookie"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-cookie", p.gotToken)
}

func TestRequireAccountMalformedHeaderSendsEmptyToken(t *testing.T) {
	p := &stubProtector{err: apperror.Authentication("You are not logged in. Please log in to get access.")}
	r := gin.New()
	r.GET("/me", RequireAccount(p), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "", p.gotToken)
	body := decode(t, w)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "You are not logged in. Please log in to get access.", body["message"])
}

func TestRequireHungerSpotForbidden(t *testing.T) {
	p := &stubProtector{err: apperror.Forbidden("You do not have permission to perform this action")}
	r := gin.New()
	r.GET("/spot", RequireHungerSpot(p), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/spot", nil)
	req.Header.Set("Authorization", "Bearer donor-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAbortWithErrorMasksInternal(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, assert.AnError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "something went wrong", body["message"])
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDs(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
}

func TestRequestIDsKeepsValidInboundID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDs())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	inbound := "6f1c1f5e-4c7a-4c2b-9d0e-2f5a3d7b8c91"
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, inbound)
	r.ServeHTTP(w, req)
	assert.Equal(t, inbound, w.Body.String())
	assert.Equal(t, inbound, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.org"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.org")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2:1000"))
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.limiter("a")
	now = now.Add(10 * time.Minute)
	rl.limiter("b")

	assert.Equal(t, 1, rl.Prune(5*time.Minute))
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "b")
}

func TestSanitizeBody(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeBody())
	r.POST("/", func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusOK, body)
	})

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"clean", `{"phoneNumber":"9876543210","location":{"coordinates":[77.5,12.9]}}`, http.StatusOK},
		{"operator", `{"phoneNumber":{"$gt":""}}`, http.StatusBadRequest},
		{"dotted", `{"a":[{"b.c":1}]}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
