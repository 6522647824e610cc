package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/termin-watch/internal/slot"
)

const calendarPage = `
<html>
  <body>
    <form>
      <table>
        <tr>
          <th>Uhrzeit</th>
          <th>Mo, 15.08.2025</th>
          <th> Di, 16.08.2025 </th>
          <th></th>
          <th>Mo, 15.08.2025</th>
          <th>Mi, 31.02.2025</th>
          <th>Do, 04.09.2025</th>
        </tr>
        <tr><td>09:00</td><td><input type="radio"></td></tr>
      </table>
    </form>
  </body>
</html>`

var astana = slot.Target{Name: "Astana", Office: "ASTANA", CalendarID: "20213868"}

func TestParseSlots(t *testing.T) {
	slots, err := parseSlots(strings.NewReader(calendarPage), "Astana")
	if err != nil {
		t.Fatalf("parseSlots failed: %v", err)
	}

	var got []string
	for _, s := range slots {
		got = append(got, s.Text)
		if s.Target != "Astana" {
			t.Errorf("expected target Astana, got %q", s.Target)
		}
	}

	want := []string{"Mo, 15.08.2025", "Di, 16.08.2025", "Do, 04.09.2025"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parsed slots mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSlots_NoTable(t *testing.T) {
	slots, err := parseSlots(strings.NewReader("<html><body><p>Keine Termine</p></body></html>"), "Moscow")
	if err != nil {
		t.Fatalf("parseSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %d", len(slots))
	}
}

func newTestScraper(t *testing.T, url string) *Scraper {
	t.Helper()
	s, err := New(Options{URL: url, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestFetchSlots(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantErr    bool
		wantSlots  int
	}{
		{
			name:       "calendar with dates",
			body:       calendarPage,
			statusCode: http.StatusOK,
			wantSlots:  3,
		},
		{
			name:       "empty calendar",
			body:       "<html><body><table></table></body></html>",
			statusCode: http.StatusOK,
			wantSlots:  0,
		},
		{
			name:       "server error",
			body:       "maintenance",
			statusCode: http.StatusServiceUnavailable,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if err := r.ParseForm(); err != nil {
					t.Errorf("parsing form: %v", err)
				}
				if got := r.PostForm.Get("Office"); got != "ASTANA" {
					t.Errorf("Office = %q, want ASTANA", got)
				}
				if got := r.PostForm.Get("CalendarId"); got != "20213868" {
					t.Errorf("CalendarId = %q, want 20213868", got)
				}
				if got := r.PostForm.Get("PersonCount"); got != "1" {
					t.Errorf("PersonCount = %q, want 1", got)
				}
				if got := r.PostForm.Get("Language"); got != Language {
					t.Errorf("Language = %q, want %q", got, Language)
				}
				if _, ok := r.PostForm["Command"]; !ok {
					t.Error("expected empty Command field to be sent")
				}
				if r.Header.Get("User-Agent") != UserAgent {
					t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := newTestScraper(t, server.URL)
			slots, err := s.FetchSlots(context.Background(), astana)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrUnexpectedStatus) {
					t.Errorf("expected ErrUnexpectedStatus, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(slots) != tt.wantSlots {
				t.Errorf("expected %d slots, got %d", tt.wantSlots, len(slots))
			}
		})
	}
}

func TestInit_KeepsSessionCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "abc123", Path: "/"})
			w.Write([]byte("<html></html>"))
		case http.MethodPost:
			c, err := r.Cookie("ASP.NET_SessionId")
			if err != nil || c.Value != "abc123" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Write([]byte(calendarPage))
		}
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL+"/HomeWeb/Scheduler")

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	slots, err := s.FetchSlots(context.Background(), astana)
	if err != nil {
		t.Fatalf("FetchSlots() after Init error = %v", err)
	}
	if len(slots) != 3 {
		t.Errorf("expected 3 slots, got %d", len(slots))
	}
}

func TestInit_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL)
	if err := s.Init(context.Background()); !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestFetchSlots_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(calendarPage))
	}))
	defer server.Close()

	s, err := New(Options{URL: server.URL, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.FetchSlots(context.Background(), astana); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.url != SchedulerURL {
		t.Errorf("url = %q, want %q", s.url, SchedulerURL)
	}
	if s.origin != "https://appointment.bmeia.gv.at" {
		t.Errorf("origin = %q", s.origin)
	}
	if s.client.Timeout != Timeout {
		t.Errorf("timeout = %v, want %v", s.client.Timeout, Timeout)
	}
}
