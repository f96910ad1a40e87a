package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"reviewdesk/internal/auth"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/repository/memory"
	"reviewdesk/internal/service"
)

type testApp struct {
	srv      *httptest.Server
	accounts *service.Accounts
	reviews  *service.Reviews
	feedback *memory.FeedbackStore
	users    *memory.UserStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := memory.New()
	users := memory.NewUserStore(db)
	feedback := memory.NewFeedbackStore(db)
	app := &testApp{
		accounts: service.NewAccounts(users),
		reviews:  service.NewReviews(feedback, users),
		feedback: feedback,
		users:    users,
	}
	if _, err := app.accounts.SeedAdmin(context.Background(), "admin", "admin@example.com", "admin123"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	h, err := NewHandler(Deps{
		Reviews:  app.reviews,
		Accounts: app.accounts,
		Tokens:   auth.NewTokens("test-secret", time.Hour),
		FlashKey: "test-flash-key",
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	app.srv = httptest.NewServer(h.Router())
	t.Cleanup(app.srv.Close)
	return app
}

// newClient keeps cookies but never follows redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(a.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(a.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}

func (a *testApp) register(t *testing.T, c *http.Client, username, email, password string) {
	t.Helper()
	resp, _ := a.post(t, c, "/register", url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	expectRedirect(t, resp, "/login")
}

func (a *testApp) login(t *testing.T, c *http.Client, email, password, landing string) {
	t.Helper()
	resp, _ := a.post(t, c, "/login", url.Values{"email": {email}, "password": {password}})
	expectRedirect(t, resp, landing)
}

func (a *testApp) memberClient(t *testing.T) *http.Client {
	t.Helper()
	c := newClient(t)
	a.register(t, c, "bob", "bob@example.com", "hunter22")
	a.login(t, c, "bob@example.com", "hunter22", "/submit-review")
	return c
}

func (a *testApp) adminClient(t *testing.T) *http.Client {
	t.Helper()
	c := newClient(t)
	a.login(t, c, "admin@example.com", "admin123", "/admin/")
	return c
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	resp, body := app.get(t, newClient(t), "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"ok"`) {
		t.Fatalf("body = %s", body)
	}
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t)

	for _, path := range []string{"/submit-review", "/logout", "/admin/", "/admin/reviews", "/admin/edit_review/1"} {
		resp, _ := app.get(t, c, path)
		expectRedirect(t, resp, "/login")
	}

	_, body := app.get(t, c, "/login")
	if !strings.Contains(body, "Please log in to access this page.") {
		t.Fatalf("login page is missing the flash message")
	}
}

func TestMemberCannotModerate(t *testing.T) {
	app := newTestApp(t)
	c := app.memberClient(t)

	member, err := app.users.GetByEmail(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatal(err)
	}
	fb, err := app.reviews.Submit(context.Background(), auth.UserIdentity(member), 2, "meh")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/"},
		{http.MethodGet, "/admin/reviews"},
		{http.MethodPost, "/admin/approve_review/1"},
		{http.MethodPost, "/admin/delete_review/1"},
		{http.MethodPost, "/admin/edit_review/1"},
	}
	for _, tc := range cases {
		var resp *http.Response
		if tc.method == http.MethodPost {
			resp, _ = app.post(t, c, tc.path, url.Values{"rating": {"5"}, "comment": {"hacked"}})
		} else {
			resp, _ = app.get(t, c, tc.path)
		}
		expectRedirect(t, resp, "/")
	}

	stored, err := app.feedback.Get(context.Background(), fb.ID)
	if err != nil {
		t.Fatalf("review should still exist: %v", err)
	}
	if stored.IsApproved || stored.Rating != 2 || stored.Comment != "meh" {
		t.Fatalf("review changed by a member: %+v", stored)
	}

	_, body := app.get(t, c, "/")
	if !strings.Contains(body, "Access denied. Admin only area.") {
		t.Fatalf("home page is missing the access denied flash")
	}
}

func TestReviewLifecycle(t *testing.T) {
	app := newTestApp(t)
	member := app.memberClient(t)

	_, body := app.get(t, member, "/submit-review")
	if !strings.Contains(body, "Login successful! You can now submit feedback.") {
		t.Fatalf("login flash not shown")
	}

	resp, _ := app.post(t, member, "/submit-review", url.Values{"rating": {"4"}, "comment": {"great service"}})
	expectRedirect(t, resp, "/")

	_, body = app.get(t, member, "/")
	if !strings.Contains(body, "Thank you for your review! It will be visible after approval.") {
		t.Fatalf("submit flash not shown")
	}
	if strings.Contains(body, "great service") {
		t.Fatalf("pending review visible on the public page")
	}
	if !strings.Contains(body, "0.00") {
		t.Fatalf("empty average should render as 0.00")
	}

	admin := app.adminClient(t)
	_, body = app.get(t, admin, "/admin/")
	if !strings.Contains(body, "great service") {
		t.Fatalf("pending review missing from the dashboard")
	}

	list, err := app.feedback.List(context.Background(), domain.FilterPending)
	if err != nil || len(list) != 1 {
		t.Fatalf("pending = %v, %v", list, err)
	}
	id := list[0].ID

	resp, _ = app.post(t, admin, "/admin/approve_review/"+strconv.Itoa(id), nil)
	expectRedirect(t, resp, "/admin/")

	_, body = app.get(t, newClient(t), "/")
	if !strings.Contains(body, "great service") || !strings.Contains(body, "4.00") {
		t.Fatalf("approved review not published:\n%s", body)
	}

	resp, _ = app.post(t, admin, "/admin/edit_review/"+strconv.Itoa(id), url.Values{"rating": {"2"}, "comment": {"changed my mind"}})
	expectRedirect(t, resp, "/admin/")
	stored, err := app.feedback.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Rating != 2 || stored.Comment != "changed my mind" || !stored.IsApproved {
		t.Fatalf("after edit: %+v", stored)
	}

	resp, _ = app.post(t, admin, "/admin/delete_review/"+strconv.Itoa(id), nil)
	expectRedirect(t, resp, "/admin/")
	if _, err := app.feedback.Get(context.Background(), id); err == nil {
		t.Fatalf("review still stored after delete")
	}

	_, body = app.get(t, newClient(t), "/")
	if strings.Contains(body, "changed my mind") {
		t.Fatalf("deleted review still public")
	}
}

func TestSubmitRejectsBadRating(t *testing.T) {
	app := newTestApp(t)
	c := app.memberClient(t)

	for _, rating := range []string{"0", "6", "abc", ""} {
		resp, _ := app.post(t, c, "/submit-review", url.Values{"rating": {rating}, "comment": {"x"}})
		expectRedirect(t, resp, "/submit-review")
	}
	all, err := app.feedback.List(context.Background(), domain.FilterAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("stored %d reviews with invalid ratings", len(all))
	}
}

func TestAdminCannotSubmit(t *testing.T) {
	app := newTestApp(t)
	c := app.adminClient(t)

	resp, _ := app.post(t, c, "/submit-review", url.Values{"rating": {"5"}, "comment": {"self praise"}})
	expectRedirect(t, resp, "/admin/")
	resp, _ = app.get(t, c, "/")
	expectRedirect(t, resp, "/admin/")
}

func TestLoginInvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	c := newClient(t)

	resp, body := app.post(t, c, "/login", url.Values{"email": {"admin@example.com"}, "password": {"wrong"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid email or password. Please try again.") {
		t.Fatalf("inline error missing")
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.CookieName && ck.Value != "" {
			t.Fatalf("session cookie issued on failed login")
		}
	}
}

func TestRegisterDuplicates(t *testing.T) {
	app := newTestApp(t)
	app.register(t, newClient(t), "bob", "bob@example.com", "hunter22")

	c := newClient(t)
	resp, body := app.post(t, c, "/register", url.Values{
		"username": {"bob"}, "email": {"other@example.com"},
		"password": {"hunter22"}, "confirm_password": {"hunter22"},
	})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Username already exists. Please choose a different one.") {
		t.Fatalf("duplicate username: status %d", resp.StatusCode)
	}

	resp, _ = app.post(t, c, "/register", url.Values{
		"username": {"robert"}, "email": {"bob@example.com"},
		"password": {"hunter22"}, "confirm_password": {"hunter22"},
	})
	expectRedirect(t, resp, "/login")
	_, body = app.get(t, c, "/login")
	if !strings.Contains(body, "Email already exists. Please login instead.") {
		t.Fatalf("duplicate email flash missing")
	}

	if n := app.users.Len(); n != 2 {
		t.Fatalf("users = %d, want 2", n)
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	app := newTestApp(t)
	resp, body := app.post(t, newClient(t), "/register", url.Values{
		"username": {"carol"}, "email": {"carol@example.com"},
		"password": {"secret1"}, "confirm_password": {"secret2"},
	})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Passwords do not match.") {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if n := app.users.Len(); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
}

func TestRegisterMultibytePasswordTooLong(t *testing.T) {
	app := newTestApp(t)
	password := strings.Repeat("пароль", 7)

	resp, body := app.post(t, newClient(t), "/register", url.Values{
		"username": {"ivan"}, "email": {"ivan@example.com"},
		"password": {password}, "confirm_password": {password},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "Password must be at most 72 bytes.") {
		t.Fatalf("byte limit warning missing")
	}
	if n := app.users.Len(); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	c := app.memberClient(t)

	resp, _ := app.get(t, c, "/logout")
	expectRedirect(t, resp, "/login")

	resp, _ = app.get(t, c, "/submit-review")
	expectRedirect(t, resp, "/login")
}

func TestEditMissingReview(t *testing.T) {
	app := newTestApp(t)
	c := app.adminClient(t)

	resp, _ := app.get(t, c, "/admin/edit_review/999")
	expectRedirect(t, resp, "/admin/")
	_, body := app.get(t, c, "/admin/")
	if !strings.Contains(body, "Review not found.") {
		t.Fatalf("not found flash missing")
	}
}

func TestForgedTokenIsAnonymous(t *testing.T) {
	app := newTestApp(t)
	forged, err := auth.NewTokens("other-secret", time.Hour).Generate(1, "admin", true)
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodGet, app.srv.URL+"/admin/", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: forged})
	resp, err := newClient(t).Do(req)
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	expectRedirect(t, resp, "/login")
}
