package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/emailjs"
	"github.com/Zachkp/portfolio/internal/geo"
	"github.com/Zachkp/portfolio/internal/theme"
	"github.com/Zachkp/portfolio/internal/visitor"
)

// fakeEmailJS records every send and answers with status/body.
type fakeEmailJS struct {
	mu     sync.Mutex
	sends  []map[string]any
	status int
	body   string
}

func (f *fakeEmailJS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	_ = json.NewDecoder(r.Body).Decode(&payload)

	f.mu.Lock()
	f.sends = append(f.sends, payload)
	status, body := f.status, f.body
	f.mu.Unlock()

	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (f *fakeEmailJS) byTemplate(id string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, s := range f.sends {
		if s["template_id"] == id {
			out = append(out, s)
		}
	}
	return out
}

type testEnv struct {
	app    *app
	router *gin.Engine
	mail   *fakeEmailJS
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mail := &fakeEmailJS{status: http.StatusOK, body: "OK"}
	mailServer := httptest.NewServer(mail)
	t.Cleanup(mailServer.Close)

	geoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"192.0.2.1","country_name":"India","city":"Kolkata"}`))
	}))
	t.Cleanup(geoServer.Close)

	cfg := &config.Config{
		EmailJS: config.EmailJSConfig{
			ServiceID:         "service_test",
			VisitorTemplateID: "template_visitor_alert",
			ContactTemplateID: "template_contact",
			PublicKey:         "pub_test",
		},
		Admin: config.AdminConfig{Username: "owner", Password: "s3cret"},
	}
	mailer := emailjs.NewClient(mailServer.URL, cfg.EmailJS.ServiceID, cfg.EmailJS.PublicKey)
	a := newApp(cfg, zap.NewNop(), visitor.NewMemoryMarker(time.Hour), geo.NewIPAPI(geoServer.URL, nil), mailer)

	return &testEnv{app: a, router: setupRouter(a), mail: mail}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func cookieNamed(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIndexRendersProjects(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	for _, p := range Projects {
		assert.Contains(t, body, p.Image)
	}
	assert.Equal(t, theme.ClientHintHeader, rr.Header().Get("Accept-CH"))
	assert.NotContains(t, body, `class="dark"`)
}

func TestIndexStoredDarkBeatsLightAmbient(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: theme.CookieName, Value: "dark"})
	req.Header.Set(theme.ClientHintHeader, "light")

	rr := env.do(req)
	assert.Contains(t, rr.Body.String(), `class="dark"`)
}

func TestIndexFollowsAmbientWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(theme.ClientHintHeader, "dark")

	rr := env.do(req)
	assert.Contains(t, rr.Body.String(), `class="dark"`)
}

func TestThemeTogglePersists(t *testing.T) {
	env := newTestEnv(t)

	req := postForm("/theme", nil)
	req.Header.Set(theme.ClientHintHeader, "light")
	rr := env.do(req)
	require.Equal(t, http.StatusOK, rr.Code)

	cookie := cookieNamed(rr, theme.CookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "dark", cookie.Value)
	assert.JSONEq(t, `{"themeChanged":{"theme":"dark"}}`, rr.Header().Get("HX-Trigger"))

	// A fresh load with the stored cookie renders dark.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	next.Header.Set(theme.ClientHintHeader, "light")
	assert.Contains(t, env.do(next).Body.String(), `class="dark"`)
}

func TestThemeSetExplicitValue(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(postForm("/theme", url.Values{"theme": {"light"}}))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp themeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, themeResponse{Theme: "light", Explicit: true}, resp)
	// Light was already applied, so nothing changed on the page.
	assert.Empty(t, rr.Header().Get("HX-Trigger"))

	rr = env.do(postForm("/theme", url.Values{"theme": {"sepia"}}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestThemeToggleWithoutHintFollowsPage(t *testing.T) {
	env := newTestEnv(t)

	// No cookie and no client hint: the page is dark only through matchMedia.
	rr := env.do(postForm("/theme", url.Values{"theme": {"light"}, "current": {"dark"}}))
	require.Equal(t, http.StatusOK, rr.Code)

	cookie := cookieNamed(rr, theme.CookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "light", cookie.Value)
	assert.JSONEq(t, `{"themeChanged":{"theme":"light"}}`, rr.Header().Get("HX-Trigger"))
	assert.JSONEq(t, `{"theme":"light","explicit":true}`, rr.Body.String())

	// A bare toggle flips what the page shows too.
	rr = env.do(postForm("/theme", url.Values{"current": {"dark"}}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "light", cookieNamed(rr, theme.CookieName).Value)
	assert.JSONEq(t, `{"themeChanged":{"theme":"light"}}`, rr.Header().Get("HX-Trigger"))
}

func TestAmbientChangeWithoutHintFollowsPage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(postForm("/theme/ambient", url.Values{"scheme": {"light"}, "current": {"dark"}}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"themeChanged":{"theme":"light"}}`, rr.Header().Get("HX-Trigger"))
	assert.Nil(t, cookieNamed(rr, theme.CookieName))
}

func TestAmbientChangeWithoutStoredPreference(t *testing.T) {
	env := newTestEnv(t)

	req := postForm("/theme/ambient", url.Values{"scheme": {"light"}})
	req.Header.Set(theme.ClientHintHeader, "dark")
	rr := env.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"themeChanged":{"theme":"light"}}`, rr.Header().Get("HX-Trigger"))
	assert.Nil(t, cookieNamed(rr, theme.CookieName))
}

func TestAmbientChangeIgnoredWithStoredPreference(t *testing.T) {
	env := newTestEnv(t)

	req := postForm("/theme/ambient", url.Values{"scheme": {"light"}})
	req.AddCookie(&http.Cookie{Name: theme.CookieName, Value: "dark"})
	rr := env.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("HX-Trigger"))
	assert.JSONEq(t, `{"theme":"dark","explicit":true}`, rr.Body.String())
}

func TestVisitNotifiesOncePerSession(t *testing.T) {
	env := newTestEnv(t)

	visit := url.Values{"screen": {"1920x1080"}, "path": {"/"}, "platform": {"Linux x86_64"}}
	req := postForm("/visit", visit)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	rr := env.do(req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	sid := cookieNamed(rr, sessionCookie)
	require.NotNil(t, sid)
	assert.Zero(t, sid.MaxAge)

	again := postForm("/visit", visit)
	again.AddCookie(sid)
	assert.Equal(t, http.StatusNoContent, env.do(again).Code)

	env.app.notifier.Wait()

	sends := env.mail.byTemplate("template_visitor_alert")
	require.Len(t, sends, 1)
	params := sends[0]["template_params"].(map[string]any)
	assert.Equal(t, "India", params["country"])
	assert.Equal(t, "Desktop", params["device"])
	assert.Equal(t, "1920x1080", params["screen"])
	assert.Equal(t, "Direct", params["referrer"])
}

func TestIndexIssuesSessionBeforeVisit(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	sid := cookieNamed(rr, sessionCookie)
	require.NotNil(t, sid)

	// A reload and its /visit both reuse the session from the first load.
	reload := httptest.NewRequest(http.MethodGet, "/", nil)
	reload.AddCookie(sid)
	assert.Nil(t, cookieNamed(env.do(reload), sessionCookie))

	for i := 0; i < 2; i++ {
		req := postForm("/visit", url.Values{"path": {"/"}})
		req.AddCookie(sid)
		assert.Equal(t, http.StatusNoContent, env.do(req).Code)
	}
	env.app.notifier.Wait()
	assert.Len(t, env.mail.byTemplate("template_visitor_alert"), 1)
}

func TestVisitMalformedReportStillAccepted(t *testing.T) {
	env := newTestEnv(t)
	core, logs := observer.New(zap.DebugLevel)
	env.app.logger = zap.New(core)

	req := httptest.NewRequest(http.MethodPost, "/visit", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusNoContent, env.do(req).Code)
	assert.Equal(t, 1, logs.FilterMessage("malformed visit report").Len())
}

func TestVisitRespectsDoNotTrack(t *testing.T) {
	env := newTestEnv(t)

	req := postForm("/visit", nil)
	req.Header.Set("DNT", "1")
	assert.Equal(t, http.StatusNoContent, env.do(req).Code)

	env.app.notifier.Wait()
	assert.Empty(t, env.mail.byTemplate("template_visitor_alert"))
}

func TestVisitDeliveryFailureIsInvisible(t *testing.T) {
	env := newTestEnv(t)
	env.mail.status = http.StatusInternalServerError
	env.mail.body = "boom"

	assert.Equal(t, http.StatusNoContent, env.do(postForm("/visit", nil)).Code)
	env.app.notifier.Wait()

	assert.Equal(t, int64(1), env.app.notifier.Stats().Failed)
	assert.Equal(t, int64(1), env.app.sink.Total())
}

func TestContactSuccessClearsForm(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(postForm("/contact", url.Values{
		"name": {"Jane"}, "email": {"jane@x.com"}, "message": {"hi"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "Thank you for your message!")
	assert.NotContains(t, body, `value="Jane"`)

	sends := env.mail.byTemplate("template_contact")
	require.Len(t, sends, 1)
	params := sends[0]["template_params"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "Jane", "email": "jane@x.com", "message": "hi"}, params)
}

func TestContactFailureKeepsFields(t *testing.T) {
	env := newTestEnv(t)
	env.mail.status = http.StatusBadRequest
	env.mail.body = "The Public Key is invalid"

	rr := env.do(postForm("/contact", url.Values{
		"name": {"Jane"}, "email": {"jane@x.com"}, "message": {"hi"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "The Public Key is invalid")
	assert.Contains(t, body, `value="Jane"`)
	assert.Contains(t, body, `value="jane@x.com"`)
}

func TestContactValidation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(postForm("/contact", url.Values{
		"name": {"Jane"}, "email": {"not-an-email"}, "message": {"hi"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please enter a valid email address.")
	assert.Empty(t, env.mail.byTemplate("template_contact"))

	rr = env.do(postForm("/contact", url.Values{"email": {"jane@x.com"}}))
	assert.Contains(t, rr.Body.String(), "Please fill in your name.")
}

func TestContactFormFragment(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/contact-form", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `name="name"`)
	assert.Contains(t, body, `name="email"`)
	assert.Contains(t, body, `name="message"`)
}

func TestStaticContent(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/work-content", nil))
	assert.Contains(t, rr.Body.String(), "Saiket Systems")

	rr = env.do(httptest.NewRequest(http.MethodGet, "/education-content", nil))
	assert.Contains(t, rr.Body.String(), "Makaut University")

	rr = env.do(httptest.NewRequest(http.MethodGet, ResumePath, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))

	for _, p := range Projects {
		rr = env.do(httptest.NewRequest(http.MethodGet, p.Image, nil))
		assert.Equal(t, http.StatusOK, rr.Code, p.Image)
	}
}
