package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/theme"
	"github.com/Zachkp/portfolio/internal/visitor"
)

// sessionCookie identifies a browsing session. It has no expiry, so the
// browser drops it when the session ends.
const sessionCookie = "sid"

func sessionID(c *gin.Context) string {
	if sid, err := c.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(sid); err == nil {
			return sid
		}
	}
	sid := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sid, 0, "/", "", false, true)
	return sid
}

func (a *app) themeStore(c *gin.Context) *theme.Store {
	return theme.NewStore(
		theme.CookieStorage{Request: c.Request, Writer: c.Writer},
		pageAmbient(c),
		a.logger,
	)
}

// pageAmbient prefers the scheme the page reports it is showing ("current").
// Without a stored cookie that is the page's matchMedia result, which browsers
// without the client hint never send in a header.
func pageAmbient(c *gin.Context) theme.Ambient {
	hint := theme.HeaderAmbient{Header: c.Request.Header}
	if c.Request.Method != http.MethodPost {
		return hint
	}
	current := c.PostForm("current")
	return theme.AmbientFunc(func() (theme.Preference, bool) {
		if p, ok := theme.ParsePreference(current); ok {
			return p, true
		}
		return hint.Ambient()
	})
}

// Home page route
func (a *app) handleIndex(c *gin.Context) {
	store := a.themeStore(c)
	pref := store.Init()

	// Issued before the page's load-time /visit request so a quick reload
	// keeps the same session.
	sessionID(c)

	c.Header("Accept-CH", theme.ClientHintHeader)
	c.Header("Critical-CH", theme.ClientHintHeader)
	c.Header("Vary", theme.ClientHintHeader+", Cookie")

	c.HTML(http.StatusOK, "index.html", gin.H{
		"dark":           store.Dark(),
		"theme":          pref.String(),
		"explicitTheme":  store.Explicit(),
		"ownerName":      OwnerName,
		"ownerRole":      OwnerRole,
		"intro":          Intro,
		"aboutMe":        AboutMe,
		"focusAreas":     FocusAreas,
		"strengths":      Strengths,
		"frontendSkills": FrontendSkills,
		"backendSkills":  BackendSkills,
		"projects":       Projects,
		"githubURL":      GithubURL,
		"linkedinURL":    LinkedinURL,
		"resumePath":     ResumePath,
	})
}

type themeResponse struct {
	Theme    string `json:"theme"`
	Explicit bool   `json:"explicit"`
}

// themeChanged reports applied-theme changes to the page through HX-Trigger.
func themeChanged(c *gin.Context, store *theme.Store) (unsubscribe func()) {
	return store.Subscribe(func(p theme.Preference) {
		trigger, _ := json.Marshal(map[string]any{
			"themeChanged": map[string]string{"theme": p.String()},
		})
		c.Header("HX-Trigger", string(trigger))
	})
}

// POST /theme sets the posted "theme" value. The page posts the opposite of
// what it shows, since the server cannot see a matchMedia result without the
// client hint. A bare POST flips the server-side theme.
func (a *app) handleThemeToggle(c *gin.Context) {
	store := a.themeStore(c)
	store.Init()

	unsubscribe := themeChanged(c, store)
	defer unsubscribe()

	var err error
	if raw := c.PostForm("theme"); raw != "" {
		p, ok := theme.ParsePreference(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "theme must be light or dark"})
			return
		}
		err = store.Set(p)
	} else {
		_, err = store.Toggle()
	}
	if err != nil {
		// The page still switches; only persistence is lost.
		a.logger.Warn("theme not persisted", zap.Error(err))
	}

	c.JSON(http.StatusOK, themeResponse{Theme: store.Get().String(), Explicit: store.Explicit()})
}

// POST /theme/ambient is called by the page's prefers-color-scheme listener.
func (a *app) handleAmbientChange(c *gin.Context) {
	p, ok := theme.ParsePreference(c.PostForm("scheme"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheme must be light or dark"})
		return
	}

	store := a.themeStore(c)
	store.Init()

	unsubscribe := themeChanged(c, store)
	defer unsubscribe()

	store.OnAmbientChange(p)
	c.JSON(http.StatusOK, themeResponse{Theme: store.Get().String(), Explicit: store.Explicit()})
}

type visitForm struct {
	Screen   string `form:"screen"`
	Referrer string `form:"referrer"`
	Platform string `form:"platform"`
	Path     string `form:"path"`
}

// POST /visit is fired once by the page on load. It always answers 204;
// whether anything is sent is not the visitor's concern.
func (a *app) handleVisit(c *gin.Context) {
	// Respect Do Not Track header
	if c.GetHeader("DNT") == "1" {
		c.Status(http.StatusNoContent)
		return
	}

	var form visitForm
	if err := c.ShouldBind(&form); err != nil {
		a.logger.Debug("malformed visit report", zap.Error(err))
	}

	platform := form.Platform
	if platform == "" {
		platform = c.GetHeader("Sec-CH-UA-Platform")
	}

	a.notifier.Notify(c.Request.Context(), sessionID(c), visitor.Visit{
		ClientIP:  c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Platform:  platform,
		Screen:    form.Screen,
		Referrer:  form.Referrer,
		Path:      form.Path,
	})
	c.Status(http.StatusNoContent)
}

// Handle contact form submission with HTMX
func (a *app) handleContact(c *gin.Context) {
	var msg contact.Message
	if err := c.ShouldBind(&msg); err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error":   validationReason(err),
			"message": msg,
		})
		return
	}

	form, release, err := a.desk.Acquire(sessionID(c), msg)
	if errors.Is(err, contact.ErrPending) {
		c.HTML(http.StatusConflict, "contact-error.html", gin.H{
			"error":   "Your previous message is still sending.",
			"message": msg,
		})
		return
	}
	defer release()

	outcome, err := a.submitter.Submit(c.Request.Context(), form)
	if err != nil {
		c.HTML(http.StatusConflict, "contact-error.html", gin.H{
			"error":   "Your previous message is still sending.",
			"message": msg,
		})
		return
	}

	if outcome.State == contact.Succeeded {
		c.HTML(http.StatusOK, "contact-success.html", gin.H{
			"success": "Thank you for your message! I'll get back to you soon.",
			"message": form.Message(),
		})
		return
	}

	c.HTML(http.StatusOK, "contact-error.html", gin.H{
		"error":   outcome.Reason,
		"message": form.Message(),
	})
}

func validationReason(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again."
	}
	switch fe := verrs[0]; {
	case fe.Field() == "Email" && fe.Tag() == "email":
		return "Please enter a valid email address."
	default:
		return "Please fill in your " + strings.ToLower(fe.Field()) + "."
	}
}
