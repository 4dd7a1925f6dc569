// Copyright 2024 The University of Queensland
// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pypi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/corvidlabs/pyresolve/provider/pypi"
)

func TestClientGetPackage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/requests/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"info": {"name": "requests", "version": "2.31.0", "requires_dist": ["urllib3>=1.21.1"]},
			"releases": {"2.31.0": []}
		}`))
	}))
	defer srv.Close()

	client := pypi.NewClient(pypi.WithBaseURL(srv.URL))
	info, err := client.GetPackage(context.Background(), "requests")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Info.Name != "requests" {
		t.Fatalf("expected name %q, got %q", "requests", info.Info.Name)
	}
	if len(info.Info.RequiresDist) != 1 {
		t.Fatalf("expected 1 requires_dist entry, got %d", len(info.Info.RequiresDist))
	}
}

func TestClientGetPackageVersion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/requests/2.31.0/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"info": {"name": "requests", "version": "2.31.0"}}`))
	}))
	defer srv.Close()

	client := pypi.NewClient(pypi.WithBaseURL(srv.URL))
	info, err := client.GetPackageVersion(context.Background(), "requests", "2.31.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Info.Version != "2.31.0" {
		t.Fatalf("expected version %q, got %q", "2.31.0", info.Info.Version)
	}
}

func TestClientNotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := pypi.NewClient(pypi.WithBaseURL(srv.URL))
	_, err := client.GetPackage(context.Background(), "doesnotexist")
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 request for a permanent 404 failure, got %d", got)
	}
}

func TestClientServerErrorIsRetriedThenFails(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := pypi.NewClient(pypi.WithBaseURL(srv.URL))
	_, err := client.GetPackage(context.Background(), "flaky")
	if err == nil {
		t.Fatal("expected an error once every retry attempt is exhausted")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected exactly 3 attempts (maxRetries), got %d", got)
	}
}

func TestClientServerErrorRecoversWithinRetries(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"info": {"name": "flaky", "version": "1.0.0"}}`))
	}))
	defer srv.Close()

	client := pypi.NewClient(pypi.WithBaseURL(srv.URL))
	info, err := client.GetPackage(context.Background(), "flaky")
	if err != nil {
		t.Fatalf("expected the second attempt to succeed, got error: %v", err)
	}
	if info.Info.Name != "flaky" {
		t.Fatalf("expected name %q, got %q", "flaky", info.Info.Name)
	}
}

func TestClientContextCancellationDuringBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := pypi.NewClient(pypi.WithBaseURL(srv.URL))
	if _, err := client.GetPackage(ctx, "flaky"); err == nil {
		t.Fatal("expected an error from a server error with no retry possible once cancelled")
	}
}
