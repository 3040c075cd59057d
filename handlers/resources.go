package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Resource is a curated self-help entry. The catalog is static; there is
// no editorial backend yet.
type Resource struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Type     string   `json:"type"`
	Excerpt  string   `json:"excerpt"`
	ReadTime int      `json:"readTime"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
}

var resourceCatalog = []Resource{
	{
		ID:       1,
		Title:    "Understanding Depression: A Comprehensive Guide",
		Category: "understanding",
		Type:     "article",
		Excerpt:  "Learn about the symptoms, causes, and evidence-based treatments for depression.",
		ReadTime: 5,
		Content:  "Depression is a common mental health condition...",
		Tags:     []string{"depression", "mental-health", "education"},
	},
	{
		ID:       2,
		Title:    "Cognitive Behavioral Therapy (CBT) Explained",
		Category: "treatment",
		Type:     "article",
		Excerpt:  "Discover how CBT can help manage depression symptoms.",
		ReadTime: 7,
		Content:  "CBT is a form of psychotherapy...",
		Tags:     []string{"cbt", "therapy", "treatment"},
	},
	{
		ID:       3,
		Title:    "Mindfulness Meditation for Depression",
		Category: "coping",
		Type:     "video",
		Excerpt:  "A guided meditation session to help manage depressive symptoms.",
		ReadTime: 10,
		Content:  "https://example.com/video/mindfulness",
		Tags:     []string{"mindfulness", "meditation", "coping"},
	},
	{
		ID:       4,
		Title:    "Medication Options for Depression",
		Category: "treatment",
		Type:     "article",
		Excerpt:  "Understanding antidepressant medications and their effects.",
		ReadTime: 8,
		Content:  "Antidepressants are commonly prescribed...",
		Tags:     []string{"medication", "treatment", "pharmaceuticals"},
	},
	{
		ID:       5,
		Title:    "Building a Support Network",
		Category: "coping",
		Type:     "article",
		Excerpt:  "Tips for creating and maintaining supportive relationships.",
		ReadTime: 6,
		Content:  "Having a strong support network...",
		Tags:     []string{"support", "relationships", "coping"},
	},
}

var resourceCategories = []string{"all", "understanding", "treatment", "coping", "medication", "support"}

type ResourceHandler struct{}

func NewResourceHandler() *ResourceHandler {
	return &ResourceHandler{}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := strings.ToLower(r.URL.Query().Get("search"))

	filtered := make([]Resource, 0, len(resourceCatalog))
	for _, res := range resourceCatalog {
		if category != "" && category != "all" && res.Category != category {
			continue
		}
		if search != "" && !matchesResource(res, search) {
			continue
		}
		filtered = append(filtered, res)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]Resource{"resources": filtered})
}

func matchesResource(res Resource, search string) bool {
	if strings.Contains(strings.ToLower(res.Title), search) ||
		strings.Contains(strings.ToLower(res.Excerpt), search) {
		return true
	}
	for _, tag := range res.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Resource not found", http.StatusNotFound)
		return
	}
	for _, res := range resourceCatalog {
		if res.ID == id {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]Resource{"resource": res})
			return
		}
	}
	http.Error(w, "Resource not found", http.StatusNotFound)
}

func (h *ResourceHandler) Categories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"categories": resourceCategories})
}
