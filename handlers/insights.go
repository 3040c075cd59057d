package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mindnest-server/middleware"
	"mindnest-server/models"
	"mindnest-server/store"
)

type InsightsHandler struct {
	store *store.Store
}

func NewInsightsHandler(s *store.Store) *InsightsHandler {
	return &InsightsHandler{store: s}
}

type insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
}

func average(moods []models.Mood) float64 {
	if len(moods) == 0 {
		return 0
	}
	sum := 0
	for _, m := range moods {
		sum += m.MoodLevel
	}
	return float64(sum) / float64(len(moods))
}

// MoodInsights analyses the recent mood history for trends, weekday
// patterns, and emotion frequency, and suggests next steps.
func (h *InsightsHandler) MoodInsights(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	moods, err := h.store.GetMoodsForUser(userID, store.MoodQuery{StartDate: &start, EndDate: &end})
	if err != nil {
		http.Error(w, "Failed to fetch moods", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if len(moods) == 0 {
		json.NewEncoder(w).Encode(map[string]any{
			"insights": []insight{},
			"patterns": []insight{},
			"recommendations": []string{
				"Start tracking your mood daily to get personalized insights!",
			},
		})
		return
	}

	insights := []insight{}
	patterns := []insight{}

	avgMood := average(moods)

	// Trend compares the first half of the window against the second.
	mid := len(moods) / 2
	trend := 0.0
	if mid > 0 {
		trend = average(moods[mid:]) - average(moods[:mid])
	}

	if trend > 0.5 {
		insights = append(insights, insight{
			Type:    "positive",
			Message: fmt.Sprintf("Your mood has improved by %.1f points over the last %d days!", trend, days),
			Icon:    "📈",
		})
	} else if trend < -0.5 {
		insights = append(insights, insight{
			Type:    "warning",
			Message: fmt.Sprintf("Your mood has decreased by %.1f points. Consider reaching out for support.", math.Abs(trend)),
			Icon:    "📉",
		})
	}

	// Weekday pattern: flag a spread of more than one point between the
	// best and worst days.
	var daySums, dayCounts [7]int
	for _, m := range moods {
		d := int(m.Date.Weekday())
		daySums[d] += m.MoodLevel
		dayCounts[d]++
	}
	bestDay, worstDay := -1, -1
	bestAvg, worstAvg := 0.0, 0.0
	for d := 0; d < 7; d++ {
		if dayCounts[d] == 0 {
			continue
		}
		avg := float64(daySums[d]) / float64(dayCounts[d])
		if bestDay == -1 || avg > bestAvg {
			bestDay, bestAvg = d, avg
		}
		if worstDay == -1 || avg < worstAvg {
			worstDay, worstAvg = d, avg
		}
	}
	if bestDay != -1 && bestAvg-worstAvg > 1 {
		patterns = append(patterns, insight{
			Type: "day-pattern",
			Message: fmt.Sprintf("You tend to feel better on %ss (avg %.1f/10) and lower on %ss (avg %.1f/10)",
				time.Weekday(bestDay), bestAvg, time.Weekday(worstDay), worstAvg),
			Icon: "📅",
		})
	}

	emotionCounts := map[string]int{}
	for _, m := range moods {
		if m.Emotion != "" {
			emotionCounts[m.Emotion]++
		}
	}
	topEmotion, topCount := "", 0
	for emotion, count := range emotionCounts {
		if count > topCount {
			topEmotion, topCount = emotion, count
		}
	}
	if topEmotion != "" && float64(topCount) > float64(len(moods))*0.3 {
		patterns = append(patterns, insight{
			Type: "emotion-pattern",
			Message: fmt.Sprintf("%s is your most common emotion (%d%% of the time)",
				topEmotion, int(math.Round(float64(topCount)/float64(len(moods))*100))),
			Icon: "😊",
		})
	}

	journals, err := h.store.GetJournalsForUser(userID, store.JournalQuery{Limit: 100, Page: 1})
	if err != nil {
		http.Error(w, "Failed to fetch journals", http.StatusInternalServerError)
		return
	}

	// Correlate mood with journaling days.
	if len(journals) > 0 {
		journalDates := map[string]bool{}
		for _, j := range journals {
			journalDates[j.CreatedAt.Format("2006-01-02")] = true
		}
		var withJournal, withoutJournal []models.Mood
		for _, m := range moods {
			if journalDates[m.Date.Format("2006-01-02")] {
				withJournal = append(withJournal, m)
			} else {
				withoutJournal = append(withoutJournal, m)
			}
		}
		if len(withJournal) > 0 {
			diff := average(withJournal) - average(withoutJournal)
			if diff > 0.5 {
				insights = append(insights, insight{
					Type:    "correlation",
					Message: fmt.Sprintf("Your mood is %.1f points higher on days you journal!", diff),
					Icon:    "📝",
				})
			}
		}
	}

	recommendations := []string{}
	if avgMood < 5 {
		recommendations = append(recommendations, "Consider trying some coping strategies or reaching out for support")
	}
	if float64(len(moods)) < float64(days)*0.7 {
		recommendations = append(recommendations, "Try to track your mood more consistently for better insights")
	}
	if len(journals) == 0 {
		recommendations = append(recommendations, "Start journaling to track your thoughts and feelings")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Keep up the great work tracking your mental health!")
	}

	json.NewEncoder(w).Encode(map[string]any{
		"insights":        insights,
		"patterns":        patterns,
		"recommendations": recommendations,
		"stats": map[string]any{
			"averageMood":  fmt.Sprintf("%.2f", avgMood),
			"totalEntries": len(moods),
			"trend":        fmt.Sprintf("%.2f", trend),
			"daysTracked":  days,
		},
	})
}

// WeeklyReport summarises the last seven days of moods, journals, and
// goal progress.
func (h *InsightsHandler) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	end := time.Now()
	start := end.AddDate(0, 0, -7)

	moods, err := h.store.GetMoodsForUser(userID, store.MoodQuery{StartDate: &start, EndDate: &end})
	if err != nil {
		http.Error(w, "Failed to fetch moods", http.StatusInternalServerError)
		return
	}
	journals, err := h.store.GetJournalsForUser(userID, store.JournalQuery{Limit: 10, Page: 1})
	if err != nil {
		http.Error(w, "Failed to fetch journals", http.StatusInternalServerError)
		return
	}
	goals, err := h.store.GetGoalsForUser(userID, "")
	if err != nil {
		http.Error(w, "Failed to fetch goals", http.StatusInternalServerError)
		return
	}

	var avgMood, moodTrend any
	var bestDay, worstDay any
	improving := false
	if len(moods) > 0 {
		avgMood = fmt.Sprintf("%.2f", average(moods))
		best, worst := moods[0].MoodLevel, moods[0].MoodLevel
		for _, m := range moods {
			if m.MoodLevel > best {
				best = m.MoodLevel
			}
			if m.MoodLevel < worst {
				worst = m.MoodLevel
			}
		}
		bestDay, worstDay = best, worst
	}
	if len(moods) >= 2 {
		// Moods come back newest first.
		diff := moods[0].MoodLevel - moods[len(moods)-1].MoodLevel
		moodTrend = fmt.Sprintf("%.1f", float64(diff))
		improving = diff > 0
	}

	journalCount := 0
	for _, j := range journals {
		if !j.CreatedAt.Before(start) && !j.CreatedAt.After(end) {
			journalCount++
		}
	}

	activeGoals, completedGoals, progressSum := 0, 0, 0
	for _, g := range goals {
		switch g.Status {
		case "in-progress", "pending":
			activeGoals++
			progressSum += g.Progress
		case "completed":
			completedGoals++
		}
	}
	goalProgress := "0"
	if activeGoals > 0 {
		goalProgress = strconv.Itoa(int(math.Round(float64(progressSum) / float64(activeGoals))))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"week": map[string]string{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		},
		"mood": map[string]any{
			"average": avgMood,
			"trend":   moodTrend,
			"entries": len(moods),
			"bestDay": bestDay,
			"worstDay": worstDay,
		},
		"journal": map[string]int{
			"entries": journalCount,
			"total":   len(journals),
		},
		"goals": map[string]any{
			"active":          activeGoals,
			"completed":       completedGoals,
			"averageProgress": goalProgress,
		},
		"summary": weeklySummary(moods, improving, journalCount, activeGoals),
	})
}

func weeklySummary(moods []models.Mood, improving bool, journalCount, activeGoals int) string {
	var parts []string

	if len(moods) > 0 {
		avg := average(moods)
		switch {
		case avg >= 7:
			parts = append(parts, "You had a great week! Your average mood was high.")
		case avg >= 5:
			parts = append(parts, "You had a decent week with moderate mood levels.")
		default:
			parts = append(parts, "This week was challenging. Remember, it's okay to not be okay.")
		}
	}

	if len(moods) >= 2 && improving {
		parts = append(parts, "Your mood improved over the week - that's progress!")
	}

	if journalCount >= 5 {
		parts = append(parts, "Great job journaling regularly this week!")
	} else if journalCount > 0 {
		parts = append(parts, "You journaled a few times this week. Keep it up!")
	}

	if activeGoals == 1 {
		parts = append(parts, "You're working on 1 goal. Keep going!")
	} else if activeGoals > 1 {
		parts = append(parts, fmt.Sprintf("You're working on %d goals. Keep going!", activeGoals))
	}

	if len(parts) == 0 {
		return "Keep tracking to see your progress!"
	}
	return strings.Join(parts, " ")
}
