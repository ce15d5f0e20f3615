package payload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientNormalizesURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000", NewClient("localhost:3000", "").BaseURL())
	assert.Equal(t, "https://cms.example.com", NewClient("https://cms.example.com/", "").BaseURL())
}

func TestClientTestConnection(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/payload-info", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"version": "2.11.0"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	info, err := client.TestConnection(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "2.11.0", info.PayloadVersion)
	assert.Equal(t, srv.URL, info.ServerURL)
	assert.Equal(t, srv.URL+"/admin", info.AdminURL)
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").TestConnection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestClientGetCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/posts", r.URL.Path)
		json.NewEncoder(w).Encode(CollectionInfo{
			Slug: "posts",
			Fields: []FieldInfo{
				{Name: "title", Type: "text", Required: true},
			},
			Timestamps: true,
		})
	}))
	defer srv.Close()

	info, err := NewClient(srv.URL, "").GetCollection(context.Background(), "posts")
	require.NoError(t, err)

	assert.Equal(t, "posts", info.Slug)
	require.Len(t, info.Fields, 1)
	assert.Equal(t, "title", info.Fields[0].Name)
	assert.True(t, info.Timestamps)
}

func TestClientListCollections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]string{
			"collections": {"users", "posts"},
		})
	}))
	defer srv.Close()

	slugs, err := NewClient(srv.URL, "").ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "posts"}, slugs)
}

func TestClientListCollectionsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"pages"})
	}))
	defer srv.Close()

	slugs, err := NewClient(srv.URL, "").ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pages"}, slugs)
}

func TestClientGetGlobal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/globals/settings", r.URL.Path)
		json.NewEncoder(w).Encode(GlobalInfo{Slug: "settings", Label: "Settings"})
	}))
	defer srv.Close()

	info, err := NewClient(srv.URL, "").GetGlobal(context.Background(), "settings")
	require.NoError(t, err)
	assert.Equal(t, "Settings", info.Label)
}

func TestClientValidateCollectionConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CollectionInfo{
			Slug: "posts",
			Fields: []FieldInfo{
				{Name: "title", Type: "text"},
			},
		})
	}))
	defer srv.Close()

	issues, err := NewClient(srv.URL, "").ValidateCollectionConfig(context.Background(), "posts",
		map[string]interface{}{
			"slug": "posts",
			"fields": []interface{}{
				map[string]interface{}{"name": "title", "type": "richText"},
				map[string]interface{}{"name": "extra", "type": "text"},
			},
		})
	require.NoError(t, err)

	require.Len(t, issues, 2)
	assert.Contains(t, issues[0], "type mismatch")
	assert.Contains(t, issues[1], "not present in the live schema")
}
