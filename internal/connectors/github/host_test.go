package github

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "https url",
			input:     "https://github.com/octocat/hello-world",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:      "https url with .git",
			input:     "https://github.com/octocat/hello-world.git",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:      "https url with trailing slash",
			input:     "https://github.com/octocat/hello-world/",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:      "ssh url",
			input:     "git@github.com:octocat/hello-world.git",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:      "owner/repo shorthand",
			input:     "octocat/hello-world",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:    "missing repo",
			input:   "https://github.com/octocat",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "too many segments",
			input:   "octocat/hello/world",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				if !errors.Is(err, ErrInvalidRepoURL) {
					t.Errorf("expected ErrInvalidRepoURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestHost_RequiresConnection(t *testing.T) {
	host, err := NewHost(context.Background(), HostConfig{Token: "test-token"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if host.Connected() {
		t.Error("expected not connected before Connect")
	}

	_, err = host.Info(context.Background())
	if !errors.Is(err, domain.ErrRepoNotConnected) {
		t.Errorf("expected ErrRepoNotConnected, got %v", err)
	}

	_, err = host.PullRequests(context.Background(), "open", 10)
	if !errors.Is(err, domain.ErrRepoNotConnected) {
		t.Errorf("expected ErrRepoNotConnected, got %v", err)
	}
}

func TestNewHost_RequiresToken(t *testing.T) {
	_, err := NewHost(context.Background(), HostConfig{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestAPIError_MapsToDomainSentinels(t *testing.T) {
	notFound := &APIError{StatusCode: 404, Message: "Not Found"}
	if !errors.Is(notFound, domain.ErrNotFound) {
		t.Error("404 should match domain.ErrNotFound")
	}

	unauthorized := &APIError{StatusCode: 401, Message: "Bad credentials"}
	if !errors.Is(unauthorized, domain.ErrAuthInvalid) {
		t.Error("401 should match domain.ErrAuthInvalid")
	}

	rateLimited := &RateLimitError{}
	if !errors.Is(rateLimited, domain.ErrRateLimited) {
		t.Error("RateLimitError should match domain.ErrRateLimited")
	}
}

// newTestHost builds a connected host pointed at a fake API server,
// with the proactive throttle disabled so tests do not sleep.
func newTestHost(t *testing.T, srv *httptest.Server) *Host {
	t.Helper()

	gc := gh.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	gc.BaseURL = base

	return &Host{
		client: &Client{
			gh: gc,
			rateLimiter: &RateLimiter{
				bucket:    rate.NewLimiter(rate.Inf, 1),
				remaining: fullQuota,
				limit:     fullQuota,
			},
		},
		httpClient: srv.Client(),
		owner:      "octocat",
		repo:       "hello-world",
	}
}

func TestFetchArtifact_DownloadsReport(t *testing.T) {
	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	f, err := zw.Create("analysis_report.docx")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte("report body")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octocat/hello-world/actions/runs/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 42, "status": "completed", "conclusion": "success"}`)
	})
	mux.HandleFunc("GET /repos/octocat/hello-world/actions/runs/42/artifacts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": 2, "artifacts": [
			{"id": 6, "name": "coverage"},
			{"id": 7, "name": "process-analysis-report"}
		]}`)
	})
	mux.HandleFunc("GET /repos/octocat/hello-world/actions/artifacts/7/zip", func(w http.ResponseWriter, r *http.Request) {
		// The API answers artifact downloads with a redirect to blob storage.
		http.Redirect(w, r, srv.URL+"/blob/7", http.StatusFound)
	})
	mux.HandleFunc("GET /blob/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(zipBuf.Bytes())
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	host := newTestHost(t, srv)
	destDir := t.TempDir()

	result, err := host.FetchArtifact(context.Background(), 42, "process-analysis-report", destDir)
	if err != nil {
		t.Fatalf("fetch artifact: %v", err)
	}
	if !result.Ready {
		t.Fatal("expected artifact to be ready")
	}
	if result.Status != domain.RunStatusCompleted || result.Conclusion != domain.RunConclusionOK {
		t.Errorf("unexpected run state %s/%s", result.Status, result.Conclusion)
	}
	if result.Filename != "analysis_report.docx" {
		t.Errorf("expected analysis_report.docx, got %s", result.Filename)
	}

	content, err := os.ReadFile(filepath.Join(destDir, result.Filename))
	if err != nil {
		t.Fatalf("read extracted report: %v", err)
	}
	if string(content) != "report body" {
		t.Errorf("unexpected report content %q", content)
	}
}

func TestFetchArtifact_RunStillRunning(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octocat/hello-world/actions/runs/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 42, "status": "in_progress"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	host := newTestHost(t, srv)

	result, err := host.FetchArtifact(context.Background(), 42, "process-analysis-report", t.TempDir())
	if err != nil {
		t.Fatalf("fetch artifact: %v", err)
	}
	if result.Ready {
		t.Error("expected artifact not ready while run is in progress")
	}
	if result.Status != "in_progress" {
		t.Errorf("expected status in_progress, got %s", result.Status)
	}
}

func TestFetchArtifact_MissingArtifact(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octocat/hello-world/actions/runs/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 42, "status": "completed", "conclusion": "success"}`)
	})
	mux.HandleFunc("GET /repos/octocat/hello-world/actions/runs/42/artifacts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": 0, "artifacts": []}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	host := newTestHost(t, srv)

	_, err := host.FetchArtifact(context.Background(), 42, "process-analysis-report", t.TempDir())
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestExtractFirstFile(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("nested/dir/report.docx")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte("report body")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	destDir := t.TempDir()
	name, err := extractFirstFile(buf.Bytes(), destDir)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if name != "report.docx" {
		t.Errorf("expected flattened name report.docx, got %s", name)
	}

	content, err := os.ReadFile(filepath.Join(destDir, name))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(content) != "report body" {
		t.Errorf("unexpected content %q", content)
	}
}

func TestExtractFirstFile_EmptyZip(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := extractFirstFile(buf.Bytes(), t.TempDir()); err == nil {
		t.Error("expected error for empty zip")
	}
}
