package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zachkp/termfolio/internal/analytics"
	"github.com/Zachkp/termfolio/internal/config"
	"github.com/Zachkp/termfolio/internal/content"
	"github.com/Zachkp/termfolio/internal/terminal"
)

type fakeMailer struct {
	sent []contactMessage
	err  error
}

func (f *fakeMailer) Send(msg contactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type testSite struct {
	srv    *server
	engine *gin.Engine
	mail   *fakeMailer
}

func newTestSite(t *testing.T, tweak func(*config.Config)) *testSite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Admin = config.Admin{Username: "admin", Password: "s3cret"}
	if tweak != nil {
		tweak(&cfg)
	}

	store, err := content.NewStore("")
	require.NoError(t, err)
	stats, err := analytics.Open(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { stats.Close() })

	srv, err := newServer(cfg, store, stats)
	require.NoError(t, err)
	mail := &fakeMailer{}
	srv.mailer = mail

	engine, err := srv.engine()
	require.NoError(t, err)
	return &testSite{srv: srv, engine: engine, mail: mail}
}

func (ts *testSite) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func (ts *testSite) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(req, cookies...)
}

func (ts *testSite) postJSON(path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return ts.do(req, cookies...)
}

// visit loads the home page and returns the session cookie it issued.
func (ts *testSite) visit(t *testing.T) *http.Cookie {
	t.Helper()
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return findCookie(t, rec, sessionCookie)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestSectionPages(t *testing.T) {
	ts := newTestSite(t, nil)
	p := content.Default()

	tests := []struct {
		path string
		want string
	}{
		{"/", p.Profile.Name},
		{"/about", p.Profile.Mission},
		{"/skills", p.Skills[0].Name},
		{"/projects", p.Projects[0].Name},
		{"/education", p.Education[0].Institution},
		{"/testimonials", "Testimonials"},
		{"/contact", p.Contact.Email},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := ts.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Contains(t, rec.Body.String(), "Welcome to the Elite Dev Terminal!")
			findCookie(t, rec, sessionCookie)
		})
	}
}

func TestSectionPageMasksEncryptedProjects(t *testing.T) {
	ts := newTestSite(t, nil)
	cookie := ts.visit(t)

	var locked content.Project
	for _, pr := range content.Default().Projects {
		if pr.Encrypted {
			locked = pr
			break
		}
	}
	require.NotEmpty(t, locked.ID)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/projects", nil), cookie)
	assert.NotContains(t, rec.Body.String(), locked.Description)
	assert.Contains(t, rec.Body.String(), "decrypt "+locked.ID)

	rec = ts.postForm("/terminal", url.Values{"command": {"decrypt " + locked.ID}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/projects", nil), cookie)
	assert.Contains(t, rec.Body.String(), locked.Description)
}

func TestUnknownPageIsNotFound(t *testing.T) {
	ts := newTestSite(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/secret-files", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "bash: cd: No such file or directory")
	assert.Contains(t, rec.Body.String(), "/secret-files")
}

func TestTerminalCDNavigates(t *testing.T) {
	ts := newTestSite(t, nil)
	cookie := ts.visit(t)

	rec := ts.postForm("/terminal", url.Values{"command": {"cd about"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/about", rec.Header().Get("HX-Push-Url"))
	assert.Equal(t, "/about", rec.Header().Get("HX-Location"))
	assert.Contains(t, rec.Body.String(), "Navigating to about section...")

	sess, err := ts.srv.sessions.Get(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "/about", sess.Path())
}

func TestTerminalFailedCDStaysPut(t *testing.T) {
	ts := newTestSite(t, nil)
	cookie := ts.visit(t)

	rec := ts.postForm("/terminal", url.Values{"command": {"cd nowhere"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("HX-Push-Url"))
	assert.Contains(t, rec.Body.String(), "bash: cd: /nowhere: No such file or directory")
}

func TestTerminalMatrixTrigger(t *testing.T) {
	ts := newTestSite(t, nil)
	cookie := ts.visit(t)

	rec := ts.postForm("/terminal", url.Values{"command": {"matrix"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "matrix-toggle", rec.Header().Get("HX-Trigger"))

	sess, err := ts.srv.sessions.Get(cookie.Value)
	require.NoError(t, err)
	assert.True(t, sess.MatrixEnabled())
}

func TestTerminalClearEmptiesScrollback(t *testing.T) {
	ts := newTestSite(t, nil)
	cookie := ts.visit(t)

	ts.postForm("/terminal", url.Values{"command": {"ls"}}, cookie)
	rec := ts.postForm("/terminal", url.Values{"command": {"clear"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Available directories")
	assert.NotContains(t, rec.Body.String(), "Welcome")
}

type terminalResponse struct {
	Result terminal.Result `json:"result"`
	Path   string          `json:"path"`
	Matrix bool            `json:"matrix"`
	Error  string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) terminalResponse {
	t.Helper()
	var resp terminalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestTerminalJSON(t *testing.T) {
	ts := newTestSite(t, nil)
	cookie := ts.visit(t)

	rec := ts.postJSON("/api/terminal", map[string]string{"input": "cd /projects"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Result.Success)
	assert.Equal(t, "Navigating to projects repository...", resp.Result.Output)
	assert.Equal(t, "/projects", resp.Path)

	rec = ts.postJSON("/api/terminal", map[string]string{"input": "pwd"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/projects", decode(t, rec).Result.Output)

	rec = ts.postJSON("/api/terminal", map[string]string{"input": "sudo rm -rf /"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode(t, rec)
	assert.False(t, resp.Result.Success)
	assert.Equal(t, "bash: sudo: command not found", resp.Result.Output)
}

func TestTerminalJSONRejectsBlankInput(t *testing.T) {
	ts := newTestSite(t, nil)
	cookie := ts.visit(t)

	rec := ts.postJSON("/api/terminal", map[string]string{"input": "   "}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/terminal", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, ts.do(req, cookie).Code)

	sess, err := ts.srv.sessions.Get(cookie.Value)
	require.NoError(t, err)
	assert.Len(t, sess.Entries(), 1)
}

func TestTerminalRateLimit(t *testing.T) {
	ts := newTestSite(t, func(cfg *config.Config) {
		cfg.Terminal.CommandRate = 0.001
		cfg.Terminal.CommandBurst = 1
	})
	cookie := ts.visit(t)

	rec := ts.postJSON("/api/terminal", map[string]string{"input": "whoami"}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.postJSON("/api/terminal", map[string]string{"input": "whoami"}, cookie)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, terminal.ErrRateLimited.Error(), decode(t, rec).Error)

	rec = ts.postForm("/terminal", url.Values{"command": {"whoami"}}, cookie)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestCookielessVisitsAreBounded(t *testing.T) {
	ts := newTestSite(t, func(cfg *config.Config) {
		cfg.Terminal.MaxSessions = 3
	})

	for i := 0; i < 20; i++ {
		ts.do(httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	}
	assert.Equal(t, 3, ts.srv.sessions.Len())

	// the newest visitor keeps a working session
	cookie := ts.visit(t)
	rec := ts.postJSON("/api/terminal", map[string]string{"input": "pwd"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", decode(t, rec).Path)
	assert.Equal(t, 3, ts.srv.sessions.Len())
}

func TestTerminalUnknownCookieStartsNewSession(t *testing.T) {
	ts := newTestSite(t, nil)
	stale := &http.Cookie{Name: sessionCookie, Value: "expired-session"}

	rec := ts.postJSON("/api/terminal", map[string]string{"input": "pwd"}, stale)
	require.Equal(t, http.StatusOK, rec.Code)
	fresh := findCookie(t, rec, sessionCookie)
	assert.NotEqual(t, stale.Value, fresh.Value)
}

func TestHistoryCompleteAndRecall(t *testing.T) {
	ts := newTestSite(t, nil)
	cookie := ts.visit(t)

	ts.postJSON("/api/terminal", map[string]string{"input": "ls"}, cookie)
	ts.postJSON("/api/terminal", map[string]string{"input": "date"}, cookie)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/terminal/history", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Entries []terminal.HistoryEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Entries, 3)
	assert.Equal(t, "ls", history.Entries[1].Command)
	assert.Equal(t, "date", history.Entries[2].Command)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/terminal/complete?prefix=cd+pro", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var completion struct {
		Completion string `json:"completion"`
		Found      bool   `json:"found"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completion))
	assert.True(t, completion.Found)
	assert.Equal(t, "cd projects", completion.Completion)

	recall := func(dir string) string {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/terminal/recall?dir="+dir, nil), cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}
	assert.Equal(t, "date", recall("up"))
	assert.Equal(t, "ls", recall("up"))
	assert.Equal(t, "date", recall("down"))
	assert.Equal(t, "", recall("down"))

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/terminal/recall?dir=sideways", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSectionsJSON(t *testing.T) {
	ts := newTestSite(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/sections", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sections []struct {
		Key  string `json:"key"`
		Path string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sections))
	require.Len(t, sections, 7)
	assert.Equal(t, "home", sections[0].Key)
	assert.Equal(t, "/", sections[0].Path)
}

func TestAdminRequiresLogin(t *testing.T) {
	ts := newTestSite(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	rec = ts.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = ts.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	token := findCookie(t, rec, "admin_token")

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard")

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats analytics.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/admin/export/stats", nil), token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "admin-stats.json")

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/admin/visitors", nil), token)
	assert.Equal(t, http.StatusOK, rec.Code)

	bogus := &http.Cookie{Name: "admin_token", Value: "guess"}
	rec = ts.do(httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil), bogus)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestAdminLoginWithTOTP(t *testing.T) {
	const secret = "JBSWY3DPEHPK3PXP"
	ts := newTestSite(t, func(cfg *config.Config) { cfg.Admin.TOTPSecret = secret })

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Contains(t, rec.Body.String(), `name="code"`)

	form := url.Values{"username": {"admin"}, "password": {"s3cret"}}
	rec = ts.postForm("/admin/login", form)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	form.Set("code", code)
	rec = ts.postForm("/admin/login", form)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestAdminLoginWithPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	ts := newTestSite(t, func(cfg *config.Config) {
		cfg.Admin = config.Admin{Username: "admin", PasswordHash: string(hash)}
	})

	rec := ts.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"hunter2"}})
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = ts.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {""}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err = adminPasswordHash(config.Admin{PasswordHash: "plaintext"})
	assert.Error(t, err)
}

func TestPrivacyPage(t *testing.T) {
	ts := newTestSite(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/privacy", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Do Not Track")
}

func TestContactForm(t *testing.T) {
	form := url.Values{
		"fullName": {"Ada\r\nBcc: everyone@example.com"},
		"email":    {"ada@example.com"},
		"subject":  {"Hello"},
		"message":  {"Let's build something."},
	}

	t.Run("sends", func(t *testing.T) {
		ts := newTestSite(t, nil)
		rec := ts.postForm("/contact", form)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Thank you for your message!")
		require.Len(t, ts.mail.sent, 1)
		assert.Equal(t, "Ada  Bcc: everyone@example.com", ts.mail.sent[0].Name)
		assert.Equal(t, "Hello", ts.mail.sent[0].Subject)
	})

	t.Run("missing fields", func(t *testing.T) {
		ts := newTestSite(t, nil)
		rec := ts.postForm("/contact", url.Values{"fullName": {"Ada"}})
		assert.Contains(t, rec.Body.String(), "required")
		assert.Empty(t, ts.mail.sent)
	})

	t.Run("mailer failure", func(t *testing.T) {
		ts := newTestSite(t, nil)
		ts.mail.err = errors.New("connection refused")
		rec := ts.postForm("/contact", form)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "error sending your message")
	})
}

func TestSMTPMailerRequiresCredentials(t *testing.T) {
	err := smtpMailer{cfg: config.Default().SMTP}.Send(contactMessage{Name: "Ada"})
	assert.ErrorIs(t, err, errSMTPNotConfigured)
}
