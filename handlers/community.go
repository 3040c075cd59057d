package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"mindnest-server/middleware"
	"mindnest-server/models"
	"mindnest-server/store"
)

const (
	maxPostLength    = 1000
	maxCommentLength = 500
)

type CommunityHandler struct {
	store *store.Store
	hub   *Hub
}

func NewCommunityHandler(s *store.Store, h *Hub) *CommunityHandler {
	return &CommunityHandler{store: s, hub: h}
}

// authorName resolves the display name for a post or comment, hiding the
// username behind models.AnonymousAuthor when the entry is anonymous.
func (h *CommunityHandler) authorName(userID string, isAnonymous bool, cache map[string]string) string {
	if isAnonymous {
		return models.AnonymousAuthor
	}
	if name, ok := cache[userID]; ok {
		return name
	}
	name := models.AnonymousAuthor
	if user, err := h.store.GetUserByID(userID); err == nil {
		name = user.Username
	}
	cache[userID] = name
	return name
}

func (h *CommunityHandler) toResponse(p *models.Post, viewerID string, cache map[string]string) models.PostResponse {
	resp := models.PostResponse{
		Post:   *p,
		Author: h.authorName(p.UserID, p.IsAnonymous, cache),
	}
	for i := range resp.Comments {
		resp.Comments[i].Author = h.authorName(resp.Comments[i].UserID, resp.Comments[i].IsAnonymous, cache)
	}
	if viewerID != "" {
		for _, uid := range p.Likes {
			if uid == viewerID {
				resp.IsLiked = true
				break
			}
		}
	}
	return resp
}

func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Content == "" {
		http.Error(w, "Post content is required", http.StatusBadRequest)
		return
	}
	if len(req.Content) > maxPostLength {
		http.Error(w, "Post content must be 1000 characters or less", http.StatusBadRequest)
		return
	}

	isAnonymous := false
	if req.IsAnonymous != nil {
		isAnonymous = *req.IsAnonymous
	}

	post, err := h.store.CreatePost(userID, req.Content, isAnonymous, req.Tags)
	if err != nil {
		http.Error(w, "Failed to create post", http.StatusInternalServerError)
		return
	}

	cache := map[string]string{}
	resp := h.toResponse(post, userID, cache)

	// The broadcast payload carries no viewer state; isLiked is always
	// false for a brand-new post anyway.
	h.hub.Publish(models.Event{
		Type:     models.EventPostNew,
		Audience: models.Global(),
		Payload:  map[string]models.PostResponse{"post": resp},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]models.PostResponse{"post": resp})
}

// GetPosts serves the community feed. Anonymous viewers get the public
// feed; filter=my-posts requires authentication.
func (h *CommunityHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r)

	q := store.PostQuery{Limit: 20}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			q.Limit = n
		}
	}

	filter := r.URL.Query().Get("filter")
	if filter == "my-posts" {
		if viewerID == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		q.UserID = viewerID
	}

	posts, err := h.store.GetPosts(q)
	if err != nil {
		http.Error(w, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("sort") == "popular" {
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].LikesCount > posts[j].LikesCount
		})
	}

	cache := map[string]string{}
	responses := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, h.toResponse(&posts[i], viewerID, cache))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.PostResponse{"posts": responses})
}

func (h *CommunityHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r)

	post, err := h.store.GetPostByID(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	cache := map[string]string{}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]models.PostResponse{"post": h.toResponse(post, viewerID, cache)})
}

func (h *CommunityHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	postID := r.PathValue("id")

	if _, err := h.store.GetPostByID(postID); err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	liked, err := h.store.ToggleLike(postID, userID)
	if err != nil {
		http.Error(w, "Failed to update like", http.StatusInternalServerError)
		return
	}

	post, err := h.store.GetPostByID(postID)
	if err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	h.hub.Publish(models.Event{
		Type:     models.EventPostLikeUpdated,
		Audience: models.Global(),
		Payload: map[string]any{
			"postId":     postID,
			"likesCount": post.LikesCount,
			"liked":      liked,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"liked":      liked,
		"likesCount": post.LikesCount,
	})
}

func (h *CommunityHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	postID := r.PathValue("id")

	var req models.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Content == "" {
		http.Error(w, "Comment content is required", http.StatusBadRequest)
		return
	}
	if len(req.Content) > maxCommentLength {
		http.Error(w, "Comment must be 500 characters or less", http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetPostByID(postID); err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	isAnonymous := false
	if req.IsAnonymous != nil {
		isAnonymous = *req.IsAnonymous
	}

	comment, err := h.store.AddComment(postID, userID, req.Content, isAnonymous)
	if err != nil {
		http.Error(w, "Failed to add comment", http.StatusInternalServerError)
		return
	}

	cache := map[string]string{}
	comment.Author = h.authorName(comment.UserID, comment.IsAnonymous, cache)

	h.hub.Publish(models.Event{
		Type:     models.EventCommentNew,
		Audience: models.Global(),
		Payload: map[string]any{
			"postId":  postID,
			"comment": comment,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]*models.Comment{"comment": comment})
}

func (h *CommunityHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	postID := r.PathValue("id")

	deleted, err := h.store.DeletePost(postID, userID)
	if err != nil {
		http.Error(w, "Failed to delete post", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	h.hub.Publish(models.Event{
		Type:     models.EventPostDeleted,
		Audience: models.Global(),
		Payload:  map[string]string{"postId": postID},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Post deleted successfully"})
}
