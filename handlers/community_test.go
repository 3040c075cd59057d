package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mindnest-server/models"
)

func TestGetPostsWithoutAuth(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	h := NewCommunityHandler(s, NewHub(s))

	post, err := s.CreatePost(alice.ID, "public feed entry", false, nil)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if _, err := s.ToggleLike(post.ID, alice.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	// No identity on the request at all.
	req := httptest.NewRequest("GET", "/api/community/posts", nil)
	rec := httptest.NewRecorder()
	h.GetPosts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Posts []models.PostResponse `json:"posts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(resp.Posts))
	}
	if resp.Posts[0].IsLiked {
		t.Error("anonymous viewer must never see isLiked true")
	}
	if resp.Posts[0].Author != "alice" {
		t.Errorf("author = %q, want alice", resp.Posts[0].Author)
	}
}

func TestGetPostsMyPostsRequiresAuth(t *testing.T) {
	s := newTestStore(t)
	h := NewCommunityHandler(s, NewHub(s))

	req := httptest.NewRequest("GET", "/api/community/posts?filter=my-posts", nil)
	rec := httptest.NewRecorder()
	h.GetPosts(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAnonymousPostHidesAuthor(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	h := NewCommunityHandler(s, NewHub(s))

	body := `{"content":"feeling better today","isAnonymous":true}`
	req := asUser(httptest.NewRequest("POST", "/api/community/posts", strings.NewReader(body)), alice.ID)
	rec := httptest.NewRecorder()
	h.CreatePost(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Post models.PostResponse `json:"post"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Post.Author != models.AnonymousAuthor {
		t.Errorf("author = %q, want %q", resp.Post.Author, models.AnonymousAuthor)
	}
}

func TestCreatePostContentLimits(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	h := NewCommunityHandler(s, NewHub(s))

	for name, body := range map[string]string{
		"empty":    `{"content":""}`,
		"too long": `{"content":"` + strings.Repeat("a", maxPostLength+1) + `"}`,
	} {
		req := asUser(httptest.NewRequest("POST", "/api/community/posts", strings.NewReader(body)), alice.ID)
		rec := httptest.NewRecorder()
		h.CreatePost(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestLikeBroadcastsGlobally(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	hub := NewHub(s)
	h := NewCommunityHandler(s, hub)

	bobClient := addClient(hub, bob.ID)

	post, err := s.CreatePost(alice.ID, "like me", false, nil)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	req := asUser(httptest.NewRequest("POST", "/api/community/posts/"+post.ID+"/like", nil), bob.ID)
	req.SetPathValue("id", post.ID)
	rec := httptest.NewRecorder()
	h.Like(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	msg := received(t, bobClient)
	if msg == nil {
		t.Fatal("like update was not broadcast")
	}
	if msg.Type != models.EventPostLikeUpdated {
		t.Errorf("type = %q, want %q", msg.Type, models.EventPostLikeUpdated)
	}
}
