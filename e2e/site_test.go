//go:build e2e

// Package e2e drives a running site in headless Chrome. Start the server
// (`burgerhelsinki server`) and run `go test -tags e2e ./e2e/...`.
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseURL() string {
	if u := os.Getenv("E2E_WEB_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return "http://localhost:3000"
}

// browser opens a fresh headless tab, skipping when the site is not up.
func browser(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, baseURL()+"/healthz", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Skipf("site at %s not reachable: %v", baseURL(), err)
	}
	resp.Body.Close()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", os.Getenv("E2E_HEADLESS") != "false"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 800),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(t.Logf))
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, time.Minute)
	t.Cleanup(func() {
		timeoutCancel()
		tabCancel()
		allocCancel()
	})
	return tabCtx
}

func run(t *testing.T, ctx context.Context, actions ...chromedp.Action) {
	t.Helper()
	require.NoError(t, chromedp.Run(ctx, actions...))
}

func TestIndexPage(t *testing.T) {
	ctx := browser(t)
	run(t, ctx, chromedp.Navigate(baseURL()+"/"), chromedp.WaitVisible("nav", chromedp.ByQuery))

	t.Run("navbar links", func(t *testing.T) {
		var labels []string
		run(t, ctx, chromedp.Evaluate(`[...document.querySelectorAll('.navbar-link a')].map(a => a.textContent.trim())`, &labels))
		assert.Equal(t, []string{"Home", "Menu", "About Us", "Reservation", "Announcements"}, labels)
	})

	t.Run("shopping cart opens and closes", func(t *testing.T) {
		run(t, ctx,
			chromedp.Click(".navbar-shopping-cart", chromedp.ByQuery),
			chromedp.WaitVisible("#shopping-cart", chromedp.ByID),
			chromedp.Click("#x-close-cart", chromedp.ByID),
			chromedp.WaitNotVisible("#shopping-cart", chromedp.ByID),
		)
	})

	t.Run("welcome header", func(t *testing.T) {
		var text string
		run(t, ctx, chromedp.Text(".content-section-header h1", &text, chromedp.ByQuery))
		assert.Contains(t, text, "Welcome!")
	})

	t.Run("start ordering shows menu", func(t *testing.T) {
		run(t, ctx,
			chromedp.Click(".content-section-button", chromedp.ByQuery),
			chromedp.WaitVisible("#menu", chromedp.ByID),
		)
	})

	t.Run("login form", func(t *testing.T) {
		run(t, ctx,
			chromedp.Click("#navbar-login", chromedp.ByID),
			chromedp.WaitVisible("#login-form", chromedp.ByID),
		)
	})

	t.Run("footer", func(t *testing.T) {
		var text string
		run(t, ctx, chromedp.Text("footer", &text, chromedp.ByQuery))
		assert.Contains(t, text, "Burgerhelsinki@gmail.com")
		assert.Contains(t, text, "Myllypurontie 1, 00920 Helsinki")
	})

	t.Run("images have alt", func(t *testing.T) {
		var missing int
		run(t, ctx, chromedp.Evaluate(`[...document.querySelectorAll('img')].filter(i => i.getAttribute('alt') === null).length`, &missing))
		assert.Zero(t, missing)
	})
}

func TestMobileMenu(t *testing.T) {
	ctx := browser(t)
	run(t, ctx,
		chromedp.EmulateViewport(375, 667),
		chromedp.Navigate(baseURL()+"/"),
		chromedp.WaitVisible("nav", chromedp.ByQuery),
		chromedp.WaitVisible(".mobile-menu-button", chromedp.ByQuery),
	)
}

func TestNavbarLinksRoundTrip(t *testing.T) {
	ctx := browser(t)
	run(t, ctx, chromedp.Navigate(baseURL()+"/"), chromedp.WaitVisible("nav", chromedp.ByQuery))

	var hrefs []string
	run(t, ctx, chromedp.Evaluate(`[...document.querySelectorAll('.navbar-link a')].map(a => a.getAttribute('href'))`, &hrefs))
	require.Len(t, hrefs, 5)
	for i, href := range hrefs {
		var loc string
		run(t, ctx,
			chromedp.Click(fmt.Sprintf(".navbar-link:nth-child(%d) a", i+1), chromedp.ByQuery),
			chromedp.Sleep(200*time.Millisecond),
			chromedp.Location(&loc),
		)
		assert.Equal(t, baseURL()+href, loc)
		run(t, ctx, chromedp.NavigateBack(), chromedp.WaitVisible("nav", chromedp.ByQuery))
	}
}

func TestNotFound(t *testing.T) {
	ctx := browser(t)
	var text string
	run(t, ctx,
		chromedp.Navigate(baseURL()+"/non-existent-page"),
		chromedp.Text(".error-message", &text, chromedp.ByQuery),
	)
	assert.Contains(t, text, "404")
}

func selectGuests(n string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`(() => {
		const s = document.querySelector('#guest');
		s.value = %q;
		s.dispatchEvent(new Event('change', {bubbles: true}));
	})()`, n), nil)
}

func TestReservationFlow(t *testing.T) {
	ctx := browser(t)
	var title, heading string
	run(t, ctx,
		chromedp.Navigate(baseURL()+"/reservation/index.html"),
		chromedp.Title(&title),
		chromedp.Text("h1", &heading, chromedp.ByQuery),
	)
	assert.Contains(t, title, "Reservation Calendar")
	assert.Equal(t, "Reservation Calendar", heading)

	run(t, ctx,
		chromedp.WaitVisible("#guest", chromedp.ByID),
		selectGuests("2"),
		chromedp.Click(".days li:not(.prev-date):not(.next-date)", chromedp.ByQuery),
		chromedp.WaitVisible("#time-input", chromedp.ByID),
	)

	run(t, ctx,
		chromedp.SendKeys("#time", "18:30", chromedp.ByID),
		chromedp.WaitVisible("#process-btn", chromedp.ByID),
		chromedp.Click("#process-btn", chromedp.ByID),
		chromedp.WaitVisible("#reservation-form", chromedp.ByID),
		chromedp.SendKeys("#name", "John Doe", chromedp.ByID),
		chromedp.SendKeys("#phone", "1234567890", chromedp.ByID),
		chromedp.SendKeys("#email", "john@example.com", chromedp.ByID),
		chromedp.SendKeys("#notes", "Window seat, please.", chromedp.ByID),
		chromedp.WaitVisible("#submit-btn", chromedp.ByID),
		chromedp.Click("#submit-btn", chromedp.ByID),
		chromedp.WaitVisible("#form-message", chromedp.ByID),
	)
	var message string
	var blanks int
	run(t, ctx,
		chromedp.Text("#form-message", &message, chromedp.ByID),
		chromedp.Evaluate(`document.querySelectorAll("#guest option[value='']").length`, &blanks),
	)
	assert.Contains(t, message, "Confirmation")
	assert.Zero(t, blanks, "guest count cannot be cleared once chosen")

	// The booked page ignores further calendar clicks.
	var after string
	run(t, ctx,
		chromedp.Click(".days li:not(.prev-date):not(.next-date)", chromedp.ByQuery),
		chromedp.Sleep(200*time.Millisecond),
		chromedp.Text("#form-message", &after, chromedp.ByID),
	)
	assert.Equal(t, message, after)
}

// The browser suite clicks the sixth calendar cell. With Sunday-first weeks
// that cell is a previous-month filler whenever the month starts on a
// Saturday, and fillers are not selectable.
func TestSixthCalendarCell(t *testing.T) {
	ctx := browser(t)
	var class string
	run(t, ctx,
		chromedp.Navigate(baseURL()+"/reservation/index.html"),
		chromedp.WaitVisible("#guest", chromedp.ByID),
		chromedp.Evaluate(`document.querySelector('.days li:nth-child(6)').className`, &class),
	)
	if strings.Contains(class, "prev-date") || strings.Contains(class, "next-date") {
		t.Skipf("sixth cell is a filler this month (class %q)", class)
	}
	run(t, ctx,
		selectGuests("2"),
		chromedp.Click(".days li:nth-child(6)", chromedp.ByQuery),
		chromedp.WaitVisible("#time-input", chromedp.ByID),
	)
}

func TestAnnouncements(t *testing.T) {
	ctx := browser(t)
	for _, path := range []string{"/announcement/index.html", "/annoucement/index.html"} {
		var header, placeholder, loading string
		var ok bool
		run(t, ctx,
			chromedp.Navigate(baseURL()+path),
			chromedp.Text("#header-h1", &header, chromedp.ByID),
			chromedp.AttributeValue("#search-bar", "placeholder", &placeholder, &ok, chromedp.ByID),
			chromedp.Text(".loading-text", &loading, chromedp.ByQuery),
		)
		assert.Equal(t, "Latest Announcements", header)
		assert.Equal(t, "Search announcements...", placeholder)
		assert.Equal(t, "Loading Announcements...", loading)
	}

	var first string
	run(t, ctx,
		chromedp.WaitVisible(".announcements-container .search-results-item", chromedp.ByQuery),
		chromedp.Text(".announcements-container .search-results-item", &first, chromedp.ByQuery),
	)
	assert.Regexp(t, regexp.MustCompile(`(?i)announcement`), first)

	var texts []string
	run(t, ctx,
		chromedp.SendKeys("#search-bar", "Test Announcement", chromedp.ByID),
		chromedp.Sleep(100*time.Millisecond),
		chromedp.Evaluate(`[...document.querySelectorAll('.announcements-container .search-results-item')].map(e => e.textContent)`, &texts),
	)
	require.NotEmpty(t, texts)
	for _, text := range texts {
		assert.Regexp(t, regexp.MustCompile(`(?i)test announcement`), text)
	}
}
