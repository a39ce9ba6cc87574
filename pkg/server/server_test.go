// Copyright 2024-2026 Aiku AI

package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aiku/slack-to-matrix/pkg/translator"
)

func testConfig() *Config {
	return &Config{
		ListenAddr:          ":0",
		MaxBodyBytes:        1 << 20,
		RelayTimeoutSeconds: 5,
	}
}

func newTestServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()
	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func encodeTarget(target string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(target))
}

func TestHookRelaysTranslatedPayload(t *testing.T) {
	t.Parallel()
	var gotBody []byte
	dest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer dest.Close()

	ts := newTestServer(t, testConfig())
	payload := `{"text":"deploy *done*","username":"ci"}`
	resp, err := http.Post(ts.URL+"/hook/"+encodeTarget(dest.URL), "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	ack, _ := io.ReadAll(resp.Body)
	if string(ack) != "ok" {
		t.Errorf("ack body: got %q", ack)
	}

	var msg translator.Message
	if err := json.Unmarshal(gotBody, &msg); err != nil {
		t.Fatalf("destination received invalid JSON: %v", err)
	}
	if msg.Text != "deploy *done*" {
		t.Errorf("Text: got %q", msg.Text)
	}
	if msg.HTML != "deploy <b>done</b>" {
		t.Errorf("HTML: got %q", msg.HTML)
	}
	if msg.Username != "ci" {
		t.Errorf("Username: got %q", msg.Username)
	}
}

func TestHookRejectsInvalidTarget(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, testConfig())
	for _, target := range []string{
		"not+base64",
		encodeTarget("ftp://example.com"),
		encodeTarget("just text"),
	} {
		resp, err := http.Post(ts.URL+"/hook/"+target, "application/json", strings.NewReader("{}"))
		if err != nil {
			t.Fatalf("Post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("target %q: status got %d, want 400", target, resp.StatusCode)
		}
	}
}

func TestHookRejectsMalformedJSON(t *testing.T) {
	t.Parallel()
	var destHit bool
	dest := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		destHit = true
	}))
	defer dest.Close()

	ts := newTestServer(t, testConfig())
	resp, err := http.Post(ts.URL+"/hook/"+encodeTarget(dest.URL), "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
	if destHit {
		t.Error("destination must not be called for a malformed payload")
	}
}

// TestHookEmptyBody verifies an empty request still relays the empty
// payload sentinel instead of erroring out.
func TestHookEmptyBody(t *testing.T) {
	t.Parallel()
	var gotBody []byte
	dest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer dest.Close()

	ts := newTestServer(t, testConfig())
	resp, err := http.Post(ts.URL+"/hook/"+encodeTarget(dest.URL), "application/json", nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var msg translator.Message
	if err := json.Unmarshal(gotBody, &msg); err != nil {
		t.Fatalf("destination received invalid JSON: %v", err)
	}
	if msg.Text != translator.EmptyPayloadText {
		t.Errorf("Text: got %q, want sentinel", msg.Text)
	}
}

// TestHookStatusPassthrough verifies the destination's own verdict is
// handed back to the original caller unchanged.
func TestHookStatusPassthrough(t *testing.T) {
	t.Parallel()
	dest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "no coffee here")
	}))
	defer dest.Close()

	ts := newTestServer(t, testConfig())
	resp, err := http.Post(ts.URL+"/hook/"+encodeTarget(dest.URL), "application/json", strings.NewReader(`{"text":"x"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status: got %d, want 418", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "no coffee here" {
		t.Errorf("body: got %q", body)
	}
}

func TestHookUnreachableDestination(t *testing.T) {
	t.Parallel()
	dest := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dest.Close() // immediately

	ts := newTestServer(t, testConfig())
	resp, err := http.Post(ts.URL+"/hook/"+encodeTarget(dest.URL), "application/json", strings.NewReader(`{"text":"x"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", resp.StatusCode)
	}
}

// TestHookBodyLimit verifies an oversized body gets a 413, not the
// generic bad-payload verdict, and never reaches the destination.
func TestHookBodyLimit(t *testing.T) {
	t.Parallel()
	var destHit bool
	dest := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		destHit = true
	}))
	defer dest.Close()

	cfg := testConfig()
	cfg.MaxBodyBytes = 64
	ts := newTestServer(t, cfg)

	big := `{"text":"` + strings.Repeat("a", 200) + `"}`
	resp, err := http.Post(ts.URL+"/hook/"+encodeTarget(dest.URL), "application/json", strings.NewReader(big))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "payload too large") {
		t.Errorf("body: got %q", body)
	}
	if destHit {
		t.Error("destination must not be called for an oversized payload")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q", body["status"])
	}
}

func TestEncoderForm(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/hook/") {
		t.Error("form page should mention the /hook/ path shape")
	}
}

func TestRoomNotConfigured(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, testConfig())
	resp, err := http.Post(ts.URL+"/room/!abc:example.org", "application/json", strings.NewReader(`{"text":"x"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status: got %d, want 501", resp.StatusCode)
	}
}

func TestRoomDelivery(t *testing.T) {
	t.Parallel()
	var hsPath string
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hsPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"event_id":"$x"}`)
	}))
	defer hs.Close()

	cfg := testConfig()
	cfg.Matrix = MatrixConfig{HomeserverURL: hs.URL, AccessToken: "token"}
	ts := newTestServer(t, cfg)

	resp, err := http.Post(ts.URL+"/room/!abc:example.org", "application/json", strings.NewReader(`{"text":"hi"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	ack, _ := io.ReadAll(resp.Body)
	if string(ack) != "ok" {
		t.Errorf("ack body: got %q", ack)
	}
	if !strings.Contains(hsPath, "!abc:example.org") {
		t.Errorf("homeserver path should carry the room ID, got %q", hsPath)
	}
}

func TestRoomRejectsBadRoomID(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	// Point at a dead address so a bug here fails fast instead of
	// sending anything.
	cfg.Matrix = MatrixConfig{HomeserverURL: "http://127.0.0.1:1", AccessToken: "token"}
	ts := newTestServer(t, cfg)

	resp, err := http.Post(ts.URL+"/room/abc", "application/json", strings.NewReader(`{"text":"x"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
