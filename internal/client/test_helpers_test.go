package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus/internal/auth"
	"github.com/fivetwenty-io/directus/pkg/directus"
	"github.com/fivetwenty-io/directus/pkg/store"
)

const testPrefix = "app_"

// RecordedRequest is one request seen by a RecordingServer.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	Body          []byte
}

// RecordingServer records requests and answers them from a route table keyed
// by "METHOD /escaped/path". Unknown routes answer 404.
type RecordingServer struct {
	*httptest.Server

	mutex    sync.Mutex
	requests []RecordedRequest
	routes   map[string]Route
}

// Route is a canned response.
type Route struct {
	Status int
	Body   string
}

// NewRecordingServer starts a server for the test.
func NewRecordingServer(t *testing.T, routes map[string]Route) *RecordingServer {
	t.Helper()

	server := &RecordingServer{routes: routes}
	server.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		assert.NoError(t, err)

		server.mutex.Lock()
		server.requests = append(server.requests, RecordedRequest{
			Method:        request.Method,
			Path:          request.URL.EscapedPath(),
			RawQuery:      request.URL.RawQuery,
			Authorization: request.Header.Get("Authorization"),
			ContentType:   request.Header.Get("Content-Type"),
			Body:          body,
		})
		route, ok := server.routes[request.Method+" "+request.URL.EscapedPath()]
		server.mutex.Unlock()

		if !ok {
			route = Route{
				Status: http.StatusNotFound,
				Body:   `{"errors":[{"message":"Route doesn't exist.","extensions":{"code":"ROUTE_NOT_FOUND"}}]}`,
			}
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(route.Status)
		_, _ = io.WriteString(writer, route.Body)
	}))
	t.Cleanup(server.Close)

	return server
}

// Requests returns the recorded requests.
func (s *RecordingServer) Requests() []RecordedRequest {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// Count returns how many requests hit "METHOD /path".
func (s *RecordingServer) Count(route string) int {
	count := 0

	for _, request := range s.Requests() {
		if request.Method+" "+request.Path == route {
			count++
		}
	}

	return count
}

// NewTestClient creates a client against baseURL with the app_ prefix, an
// in-process session store and header stripping disabled.
func NewTestClient(t *testing.T, baseURL string) (*Client, *store.SessionStore) {
	t.Helper()

	sessionStore := store.NewSessionStore()

	config := directus.DefaultConfig(baseURL, testPrefix)
	config.KeepHeaders = true

	client, err := New(config, sessionStore)
	require.NoError(t, err)

	return client, sessionStore
}

// StoreTestSession puts a session expiring at expiresAt into the client's store.
func StoreTestSession(t *testing.T, client *Client, accessToken, refreshToken string, expiresAt time.Time) {
	t.Helper()

	err := client.GetTokenManager().StoreToken(context.Background(), &auth.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
	require.NoError(t, err)
}

// EnvelopeOperation is one data operation exercised against a RecordingServer.
type EnvelopeOperation struct {
	Name       string
	Call       func(context.Context, *Client) (*directus.Envelope, error)
	WantMethod string
	WantPath   string
	WantQuery  string
	WantBody   string
}

// RunEnvelopeOperations runs each operation against a server that answers
// every expected route with 200 and checks the request that was sent.
func RunEnvelopeOperations(t *testing.T, tests []EnvelopeOperation) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := NewRecordingServer(t, map[string]Route{
				testCase.WantMethod + " " + testCase.WantPath: {Status: http.StatusOK, Body: `{"data":{"id":1}}`},
			})
			client, _ := NewTestClient(t, server.URL)

			envelope, err := testCase.Call(context.Background(), client)
			require.NoError(t, err)
			require.NoError(t, envelope.Err())
			assert.JSONEq(t, `{"id":1}`, string(envelope.Data))

			requests := server.Requests()
			require.Len(t, requests, 1)
			assert.Equal(t, testCase.WantMethod, requests[0].Method)
			assert.Equal(t, testCase.WantPath, requests[0].Path)
			assert.Equal(t, testCase.WantQuery, requests[0].RawQuery)

			if testCase.WantBody == "" {
				assert.Empty(t, requests[0].Body)
			} else {
				assert.JSONEq(t, testCase.WantBody, string(requests[0].Body))
			}
		})
	}
}
