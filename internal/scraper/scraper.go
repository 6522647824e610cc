package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/pfrederiksen/termin-watch/internal/slot"
)

const (
	SchedulerURL = "https://appointment.bmeia.gv.at/HomeWeb/Scheduler"
	UserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
	Timeout      = 60 * time.Second
	Language     = "ru"
)

// ErrUnexpectedStatus is returned when the scheduler answers with a non-2xx status
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Options configures a Scraper. Zero values fall back to the package defaults.
type Options struct {
	URL      string
	Language string
	Timeout  time.Duration
}

// Scraper fetches open appointment dates from the scheduler site.
// It keeps one cookie session for all requests.
type Scraper struct {
	client   *http.Client
	url      string
	origin   string
	language string
}

// New creates a new Scraper instance
func New(opts Options) (*Scraper, error) {
	if opts.URL == "" {
		opts.URL = SchedulerURL
	}
	if opts.Language == "" {
		opts.Language = Language
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}

	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing scheduler URL: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Scraper{
		client: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
		},
		url:      opts.URL,
		origin:   u.Scheme + "://" + u.Host,
		language: opts.Language,
	}, nil
}

// Init opens the session. The scheduler hands out the cookies that the
// form posts rely on, so this must succeed before the first FetchSlots.
func (s *Scraper) Init(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("opening session: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

// FetchSlots posts the calendar form for one target and returns the
// dates listed on the result page, in page order.
func (s *Scraper) FetchSlots(ctx context.Context, target slot.Target) ([]slot.Slot, error) {
	form := url.Values{
		"Language":    {s.language},
		"Office":      {target.Office},
		"CalendarId":  {target.CalendarID},
		"PersonCount": {"1"},
		"Monday":      {""},
		"Command":     {""},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar for %s: %w", target.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching calendar for %s: %w: %d", target.Name, ErrUnexpectedStatus, resp.StatusCode)
	}

	return parseSlots(resp.Body, target.Name)
}

func (s *Scraper) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")
	req.Header.Set("Origin", s.origin)
	req.Header.Set("Referer", s.url)
}

// parseSlots extracts dates from the table headers of a result page.
// Headers that hold no date (column labels, empty cells) are skipped.
func parseSlots(r io.Reader, target string) ([]slot.Slot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	slots := make([]slot.Slot, 0)
	seen := make(map[slot.Key]bool)

	doc.Find("th").Each(func(i int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}

		s, ok := slot.New(target, text)
		if !ok {
			return
		}

		if seen[s.Key()] {
			return
		}
		seen[s.Key()] = true
		slots = append(slots, s)
	})

	return slots, nil
}
