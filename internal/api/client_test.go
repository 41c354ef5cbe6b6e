package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lachlan2k/shiptrack/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := newTestServer(t, handler)

	client, err := New(server.URL + "/api")
	require.NoError(t, err)
	return client
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, LoginRequest{Email: "a@b.c", Password: "demo", Role: "viewer"}, req)

		writeJSON(w, http.StatusOK, `{"user":{"email":"a@b.c","role":"viewer","roleLabel":"Viewer","permissions":["track"]}}`)
	})

	sess, err := client.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "demo", Role: "viewer"})
	require.NoError(t, err)

	assert.Equal(t, "a@b.c", sess.Email())
	assert.Equal(t, "Viewer", sess.RoleLabel())
	assert.True(t, sess.Has("track"))
	assert.False(t, sess.Has("notifications"))
}

func TestLoginRejected(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":"Invalid password"}`)
	})

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "nope", Role: "viewer"})

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, OpLogin, svcErr.Op)
	assert.Equal(t, http.StatusUnauthorized, svcErr.Status)
	assert.Equal(t, "Invalid password", UserMessage(err, "Login failed."))
}

func TestLoginWithoutUserIsMalformed(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := client.Login(context.Background(), LoginRequest{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestErrorWithoutBodyUsesFallback(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SearchShipments(context.Background(), models.SearchContainer, "X")

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
	assert.Empty(t, svcErr.Message)
	assert.Equal(t, "Search failed.", UserMessage(err, "Search failed."))
}

func TestErrorStatusWinsOverBody(t *testing.T) {
	// A 4xx with a success-looking body is still a failure
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"found":true,"shipment":{"containerNumber":"X"}}`)
	})

	shipment, err := client.SearchShipments(context.Background(), models.SearchContainer, "X")
	assert.Nil(t, shipment)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusForbidden, svcErr.Status)
}

func TestMalformedBody(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>definitely not json`)
	})

	_, err := client.GetNotifications(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, OpGetNotifications, malformed.Op)
	assert.Equal(t, "Saving preferences failed.", UserMessage(err, "Saving preferences failed."))
}

func TestTransportFailure(t *testing.T) {
	server := newTestServer(t, http.NotFoundHandler())
	client, err := New(server.URL + "/api")
	require.NoError(t, err)
	server.Close()

	_, err = client.Me(context.Background())

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Zero(t, svcErr.Status)
	assert.Error(t, svcErr.Unwrap())
}

func TestMeNotAuthenticated(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/me", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"authenticated":false}`)
	})

	sess, err := client.Me(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestMeAuthenticated(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"authenticated":true,"user":{"email":"a@b.c","role":"shipper","roleLabel":"Shipper","permissions":["track","notifications"]}}`)
	})

	sess, err := client.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "a@b.c (Shipper)", sess.String())
}

func TestSearchShipments(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shipments/search", r.URL.Path)
		assert.Equal(t, "bl", r.URL.Query().Get("type"))
		assert.Equal(t, "BL 775533&x", r.URL.Query().Get("value"))

		writeJSON(w, http.StatusOK, `{"found":true,"shipment":{
			"containerNumber":"MSCU1234567","blNumber":"BL-775533","bookingNumber":"BK-2026-1001",
			"vesselName":"MSC Aurora","voyage":"VOY-AX12","currentPort":"Antwerp",
			"eta":"2026-02-24T09:30:00Z","status":"In Transit",
			"events":[{"name":"Gate In Full","timestamp":"2026-02-12 14:40","location":"Antwerp"}]}}`)
	})

	shipment, err := client.SearchShipments(context.Background(), models.SearchBL, "BL 775533&x")
	require.NoError(t, err)
	require.NotNil(t, shipment)

	assert.Equal(t, "MSCU1234567", shipment.ContainerNumber)
	assert.Equal(t, 2026, shipment.ETA.Time.Year())
	require.Len(t, shipment.Events, 1)
	assert.Equal(t, "Antwerp", shipment.Events[0].Location)
}

func TestSearchWithUnusualETA(t *testing.T) {
	tests := []struct {
		name string
		eta  string
		raw  string
		year int
	}{
		{"no zone", `"2026-02-24T09:30:00"`, "2026-02-24T09:30:00", 2026},
		{"free text", `"Late February"`, "Late February", 1},
		{"not a string", `20260224`, "20260224", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"found":true,"shipment":{"containerNumber":"MSCU1234567","eta":`+tt.eta+`,"status":"In Transit"}}`)
			})

			shipment, err := client.SearchShipments(context.Background(), models.SearchContainer, "MSCU1234567")
			require.NoError(t, err)
			require.NotNil(t, shipment)

			assert.Equal(t, "In Transit", shipment.Status)
			assert.Equal(t, tt.raw, shipment.ETA.Raw)
			assert.Equal(t, tt.year, shipment.ETA.Time.Year())
		})
	}
}

func TestSearchNotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"found":false}`)
	})

	shipment, err := client.SearchShipments(context.Background(), models.SearchContainer, "ZZZU0000000")
	assert.NoError(t, err)
	assert.Nil(t, shipment)
}

func TestSearchFoundWithoutShipmentIsMalformed(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"found":true}`)
	})

	_, err := client.SearchShipments(context.Background(), models.SearchContainer, "X")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPutNotificationsKeepsEcho(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)

		var prefs models.Preferences
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&prefs))
		assert.Equal(t, models.Preferences{Email: true, Push: true}, prefs)

		// The service may normalise; the client keeps what comes back
		writeJSON(w, http.StatusOK, `{"ok":true,"preferences":{"email":true,"push":false}}`)
	})

	stored, err := client.PutNotifications(context.Background(), models.Preferences{Email: true, Push: true})
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{Email: true, Push: false}, stored)
}

func TestPreferencesMissingIsMalformed(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})

	_, err := client.PutNotifications(context.Background(), models.Preferences{Email: true})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestLogoutIgnoresBody(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/logout", r.URL.Path)
		writeJSON(w, http.StatusOK, `not even json`)
	})

	assert.NoError(t, client.Logout(context.Background()))
}

// cookieServer hands out a session cookie on login and reports it on /me.
func cookieServer(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/login":
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "tok-123", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, `{"user":{"email":"a@b.c","role":"viewer","roleLabel":"Viewer","permissions":["track"]}}`)
	case "/api/me":
		c, err := r.Cookie("session_id")
		if err != nil || c.Value != "tok-123" {
			writeJSON(w, http.StatusOK, `{"authenticated":false}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"authenticated":true,"user":{"email":"a@b.c","role":"viewer","roleLabel":"Viewer","permissions":["track"]}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestClientCarriesCookie(t *testing.T) {
	client := newClient(t, cookieServer)
	ctx := context.Background()

	sess, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = client.Login(ctx, LoginRequest{Email: "a@b.c", Password: "demo", Role: "viewer"})
	require.NoError(t, err)

	sess, err = client.Me(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "a@b.c", sess.Email())
}

func TestFileJarSurvivesRestart(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(cookieServer))
	baseURL := server.URL + "/api"
	jarPath := filepath.Join(t.TempDir(), "state", "cookies.json")
	ctx := context.Background()

	jar, err := NewFileJar(jarPath, baseURL)
	require.NoError(t, err)

	client, err := New(baseURL, WithJar(jar))
	require.NoError(t, err)

	_, err = client.Login(ctx, LoginRequest{Email: "a@b.c", Password: "demo", Role: "viewer"})
	require.NoError(t, err)
	require.NoError(t, jar.Save())

	// Next run: fresh jar loaded from disk
	restored, err := NewFileJar(jarPath, baseURL)
	require.NoError(t, err)

	client, err = New(baseURL, WithJar(restored))
	require.NoError(t, err)

	sess, err := client.Me(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "a@b.c", sess.Email())
}

func TestFileJarMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()

	jar, err := NewFileJar(filepath.Join(dir, "missing.json"), "http://127.0.0.1:8000/api")
	require.NoError(t, err)
	assert.Empty(t, jar.Cookies(jar.base))

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{{{"), 0o600))

	jar, err = NewFileJar(corrupt, "http://127.0.0.1:8000/api")
	require.NoError(t, err)
	assert.Empty(t, jar.Cookies(jar.base))
}
