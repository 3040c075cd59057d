package models

import "time"

type Post struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"isAnonymous"`
	Tags        []string  `json:"tags"`
	Likes       []string  `json:"likes"`
	LikesCount  int       `json:"likesCount"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Comment struct {
	ID          string    `json:"id"`
	PostID      string    `json:"post_id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"isAnonymous"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostResponse is a Post annotated for a particular viewer. Author hides
// the username when the post is anonymous, and IsLiked is always false for
// unauthenticated viewers.
type PostResponse struct {
	Post
	Author  string `json:"author"`
	IsLiked bool   `json:"isLiked"`
}

type CreatePostRequest struct {
	Content     string   `json:"content"`
	IsAnonymous *bool    `json:"isAnonymous,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type AddCommentRequest struct {
	Content     string `json:"content"`
	IsAnonymous *bool  `json:"isAnonymous,omitempty"`
}

const AnonymousAuthor = "Anonymous User"
