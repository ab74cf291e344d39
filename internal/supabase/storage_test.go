package supabase_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-reel-backend/internal/supabase"
)

func TestStoragePathFormat(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()

	expectedPath := "users/" + userID.String() + "/projects/" + projectID.String() + "/render.json"

	assert.Equal(t, expectedPath, supabase.ObjectPath(userID, projectID, "render.json"))
	assert.Equal(t, "users/"+userID.String()+"/projects/"+projectID.String()+"/", supabase.ProjectPrefix(userID, projectID))
}

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://abc.supabase.co/", "key", "listing-reels")
	require.NoError(t, err)

	assert.Equal(t,
		"https://abc.supabase.co/storage/v1/object/public/listing-reels/users/u/projects/p/render.json",
		client.GetPublicURL("users/u/projects/p/render.json"))
}

func TestNewStorageClient_RequiresURL(t *testing.T) {
	_, err := supabase.NewStorageClient("", "key", "bucket")
	assert.Error(t, err)
}

func TestStorageClient_UploadFile(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()
	path := supabase.ObjectPath(userID, projectID, "render.json")

	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"Key":"listing-reels/`+path+`"}`)
	}))
	defer srv.Close()

	client, err := supabase.NewStorageClient(srv.URL, "key", "listing-reels")
	require.NoError(t, err)

	storagePath, publicURL, err := client.UploadFile(userID, projectID, "render.json", "application/json", []byte(`{"ok":true}`))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/storage/v1/object/listing-reels/"+path, gotPath)
	assert.Equal(t, path, storagePath)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/listing-reels/"+path, publicURL)
}
