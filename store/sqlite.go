package store

import (
	"database/sql"
	"mindnest-server/models"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		profile_picture TEXT DEFAULT '',
		theme TEXT DEFAULT 'light',
		high_contrast BOOLEAN DEFAULT FALSE,
		text_to_speech BOOLEAN DEFAULT FALSE,
		notifications BOOLEAN DEFAULT TRUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_login DATETIME
	);

	CREATE TABLE IF NOT EXISTS moods (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		mood_level INTEGER NOT NULL CHECK (mood_level >= 1 AND mood_level <= 10),
		emotion TEXT DEFAULT 'neutral',
		note TEXT,
		date DATETIME DEFAULT CURRENT_TIMESTAMP,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_moods_user_date ON moods(user_id, date);

	CREATE TABLE IF NOT EXISTS mood_tags (
		mood_id TEXT NOT NULL REFERENCES moods(id) ON DELETE CASCADE,
		tag TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mood_tags_mood ON mood_tags(mood_id);

	CREATE TABLE IF NOT EXISTS journals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT,
		content TEXT NOT NULL,
		mood TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_journals_user_created ON journals(user_id, created_at);

	CREATE TABLE IF NOT EXISTS journal_tags (
		journal_id TEXT NOT NULL REFERENCES journals(id) ON DELETE CASCADE,
		tag TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_tags_journal ON journal_tags(journal_id);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		type TEXT DEFAULT 'daily',
		status TEXT DEFAULT 'pending',
		progress INTEGER DEFAULT 0 CHECK (progress >= 0 AND progress <= 100),
		target_date DATETIME,
		completed_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_goals_user_status ON goals(user_id, status);

	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		is_anonymous BOOLEAN DEFAULT TRUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);

	CREATE TABLE IF NOT EXISTS post_likes (
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (post_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS post_comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		is_anonymous BOOLEAN DEFAULT TRUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_post_comments_post ON post_comments(post_id);

	CREATE TABLE IF NOT EXISTS post_tags (
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		tag TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		time TEXT NOT NULL,
		is_active BOOLEAN DEFAULT TRUE,
		last_triggered DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reminders_user_active ON reminders(user_id, is_active);
	CREATE INDEX IF NOT EXISTS idx_reminders_time ON reminders(time);

	CREATE TABLE IF NOT EXISTS reminder_days (
		reminder_id TEXT NOT NULL REFERENCES reminders(id) ON DELETE CASCADE,
		day INTEGER NOT NULL CHECK (day >= 0 AND day <= 6),
		PRIMARY KEY (reminder_id, day)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// User operations

func (s *Store) CreateUser(username, email, password, firstName, lastName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:            uuid.New().String(),
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		FirstName:     firstName,
		LastName:      lastName,
		Theme:         "light",
		Notifications: true,
		CreatedAt:     time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, theme, notifications, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Theme, user.Notifications, user.CreatedAt)

	if err != nil {
		return nil, err
	}
	return user, nil
}

const userColumns = `id, username, email, password_hash, COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(profile_picture, ''), theme, high_contrast, text_to_speech, notifications, created_at, last_login`

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.ProfilePicture, &user.Theme,
		&user.HighContrast, &user.TextToSpeech, &user.Notifications,
		&user.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return user, nil
}

func (s *Store) GetUserByID(id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (s *Store) UpdateLastLogin(userID string) error {
	_, err := s.db.Exec("UPDATE users SET last_login = ? WHERE id = ?", time.Now(), userID)
	return err
}

func (s *Store) UpdateUserProfile(userID string, req models.UpdateProfileRequest) (*models.User, error) {
	if req.FirstName != nil {
		if _, err := s.db.Exec("UPDATE users SET first_name = ? WHERE id = ?", *req.FirstName, userID); err != nil {
			return nil, err
		}
	}
	if req.LastName != nil {
		if _, err := s.db.Exec("UPDATE users SET last_name = ? WHERE id = ?", *req.LastName, userID); err != nil {
			return nil, err
		}
	}
	if req.ProfilePicture != nil {
		if _, err := s.db.Exec("UPDATE users SET profile_picture = ? WHERE id = ?", *req.ProfilePicture, userID); err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(userID)
}

func (s *Store) UpdateUserPreferences(userID string, req models.UpdatePreferencesRequest) (*models.User, error) {
	if req.Theme != nil {
		if _, err := s.db.Exec("UPDATE users SET theme = ? WHERE id = ?", *req.Theme, userID); err != nil {
			return nil, err
		}
	}
	if req.HighContrast != nil {
		if _, err := s.db.Exec("UPDATE users SET high_contrast = ? WHERE id = ?", *req.HighContrast, userID); err != nil {
			return nil, err
		}
	}
	if req.TextToSpeech != nil {
		if _, err := s.db.Exec("UPDATE users SET text_to_speech = ? WHERE id = ?", *req.TextToSpeech, userID); err != nil {
			return nil, err
		}
	}
	if req.Notifications != nil {
		if _, err := s.db.Exec("UPDATE users SET notifications = ? WHERE id = ?", *req.Notifications, userID); err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(userID)
}

func (s *Store) ValidatePassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// Mood operations

func (s *Store) CreateMood(userID string, req models.CreateMoodRequest, date time.Time) (*models.Mood, error) {
	id := uuid.New().String()
	emotion := req.Emotion
	if emotion == "" {
		emotion = "neutral"
	}

	_, err := s.db.Exec(`
		INSERT INTO moods (id, user_id, mood_level, emotion, note, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, userID, req.MoodLevel, emotion, req.Note, date, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.replaceTags("mood_tags", "mood_id", id, req.Tags); err != nil {
		return nil, err
	}
	return s.GetMoodByID(id)
}

func (s *Store) GetMoodByID(id string) (*models.Mood, error) {
	mood := &models.Mood{}
	err := s.db.QueryRow(`
		SELECT id, user_id, mood_level, emotion, COALESCE(note, ''), date, created_at
		FROM moods WHERE id = ?
	`, id).Scan(&mood.ID, &mood.UserID, &mood.MoodLevel, &mood.Emotion, &mood.Note, &mood.Date, &mood.CreatedAt)
	if err != nil {
		return nil, err
	}

	mood.Tags, err = s.getTags("mood_tags", "mood_id", id)
	return mood, err
}

type MoodQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

func (s *Store) GetMoodsForUser(userID string, q MoodQuery) ([]models.Mood, error) {
	query := `
		SELECT id, user_id, mood_level, emotion, COALESCE(note, ''), date, created_at
		FROM moods WHERE user_id = ?`
	args := []any{userID}

	if q.StartDate != nil && q.EndDate != nil {
		query += " AND date BETWEEN ? AND ?"
		args = append(args, *q.StartDate, *q.EndDate)
	}
	query += " ORDER BY date DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moods []models.Mood
	for rows.Next() {
		var m models.Mood
		if err := rows.Scan(&m.ID, &m.UserID, &m.MoodLevel, &m.Emotion, &m.Note, &m.Date, &m.CreatedAt); err != nil {
			return nil, err
		}
		moods = append(moods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range moods {
		moods[i].Tags, err = s.getTags("mood_tags", "mood_id", moods[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return moods, nil
}

func (s *Store) UpdateMood(id, userID string, req models.UpdateMoodRequest) (*models.Mood, error) {
	owned, err := s.owns("moods", id, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, sql.ErrNoRows
	}

	if req.MoodLevel != nil {
		if _, err := s.db.Exec("UPDATE moods SET mood_level = ? WHERE id = ?", *req.MoodLevel, id); err != nil {
			return nil, err
		}
	}
	if req.Emotion != nil {
		if _, err := s.db.Exec("UPDATE moods SET emotion = ? WHERE id = ?", *req.Emotion, id); err != nil {
			return nil, err
		}
	}
	if req.Note != nil {
		if _, err := s.db.Exec("UPDATE moods SET note = ? WHERE id = ?", *req.Note, id); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		if err := s.replaceTags("mood_tags", "mood_id", id, *req.Tags); err != nil {
			return nil, err
		}
	}
	return s.GetMoodByID(id)
}

func (s *Store) DeleteMood(id, userID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM moods WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		if _, err := s.db.Exec("DELETE FROM mood_tags WHERE mood_id = ?", id); err != nil {
			return false, err
		}
	}
	return n > 0, nil
}

func (s *Store) GetMoodStats(userID string, start, end *time.Time) (*models.MoodStats, error) {
	moods, err := s.GetMoodsForUser(userID, MoodQuery{StartDate: start, EndDate: end})
	if err != nil {
		return nil, err
	}

	stats := &models.MoodStats{
		Total:    len(moods),
		Emotions: make(map[string]int),
	}
	sum := 0
	for _, m := range moods {
		sum += m.MoodLevel
		stats.Emotions[m.Emotion]++
	}
	if stats.Total > 0 {
		stats.Average = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}

// Journal operations

func (s *Store) CreateJournal(userID string, req models.CreateJournalRequest) (*models.Journal, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(`
		INSERT INTO journals (id, user_id, title, content, mood, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, userID, req.Title, req.Content, req.Mood, now, now)
	if err != nil {
		return nil, err
	}

	if err := s.replaceTags("journal_tags", "journal_id", id, req.Tags); err != nil {
		return nil, err
	}
	return s.GetJournalByID(id)
}

func (s *Store) GetJournalByID(id string) (*models.Journal, error) {
	j := &models.Journal{}
	err := s.db.QueryRow(`
		SELECT id, user_id, COALESCE(title, ''), content, COALESCE(mood, ''), created_at, updated_at
		FROM journals WHERE id = ?
	`, id).Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.Mood, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}

	j.Tags, err = s.getTags("journal_tags", "journal_id", id)
	return j, err
}

type JournalQuery struct {
	Search string
	Limit  int
	Page   int
}

func (s *Store) GetJournalsForUser(userID string, q JournalQuery) ([]models.Journal, error) {
	query := `
		SELECT id, user_id, COALESCE(title, ''), content, COALESCE(mood, ''), created_at, updated_at
		FROM journals WHERE user_id = ?`
	args := []any{userID}

	if q.Search != "" {
		query += " AND (title LIKE ? OR content LIKE ?)"
		term := "%" + q.Search + "%"
		args = append(args, term, term)
	}
	query += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
		if q.Page > 1 {
			query += " OFFSET ?"
			args = append(args, (q.Page-1)*q.Limit)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var journals []models.Journal
	for rows.Next() {
		var j models.Journal
		if err := rows.Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.Mood, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		journals = append(journals, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range journals {
		journals[i].Tags, err = s.getTags("journal_tags", "journal_id", journals[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return journals, nil
}

func (s *Store) CountJournals(userID, search string) (int, error) {
	query := "SELECT COUNT(*) FROM journals WHERE user_id = ?"
	args := []any{userID}
	if search != "" {
		query += " AND (title LIKE ? OR content LIKE ?)"
		term := "%" + search + "%"
		args = append(args, term, term)
	}

	var total int
	err := s.db.QueryRow(query, args...).Scan(&total)
	return total, err
}

func (s *Store) UpdateJournal(id, userID string, req models.UpdateJournalRequest) (*models.Journal, error) {
	owned, err := s.owns("journals", id, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, sql.ErrNoRows
	}

	if req.Title != nil {
		if _, err := s.db.Exec("UPDATE journals SET title = ? WHERE id = ?", *req.Title, id); err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		if _, err := s.db.Exec("UPDATE journals SET content = ? WHERE id = ?", *req.Content, id); err != nil {
			return nil, err
		}
	}
	if req.Mood != nil {
		if _, err := s.db.Exec("UPDATE journals SET mood = ? WHERE id = ?", *req.Mood, id); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		if err := s.replaceTags("journal_tags", "journal_id", id, *req.Tags); err != nil {
			return nil, err
		}
	}
	if _, err := s.db.Exec("UPDATE journals SET updated_at = ? WHERE id = ?", time.Now(), id); err != nil {
		return nil, err
	}
	return s.GetJournalByID(id)
}

func (s *Store) DeleteJournal(id, userID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM journals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		if _, err := s.db.Exec("DELETE FROM journal_tags WHERE journal_id = ?", id); err != nil {
			return false, err
		}
	}
	return n > 0, nil
}

// Goal operations

func (s *Store) CreateGoal(userID string, req models.CreateGoalRequest) (*models.Goal, error) {
	id := uuid.New().String()
	goalType := req.Type
	if goalType == "" {
		goalType = "daily"
	}

	_, err := s.db.Exec(`
		INSERT INTO goals (id, user_id, title, description, type, status, progress, target_date, created_at)
		VALUES (?, ?, ?, ?, ?, 'pending', 0, ?, ?)
	`, id, userID, req.Title, req.Description, goalType, req.TargetDate, time.Now())
	if err != nil {
		return nil, err
	}
	return s.GetGoalByID(id)
}

func (s *Store) GetGoalByID(id string) (*models.Goal, error) {
	g := &models.Goal{}
	var targetDate, completedAt sql.NullTime
	err := s.db.QueryRow(`
		SELECT id, user_id, title, COALESCE(description, ''), type, status, progress, target_date, completed_at, created_at
		FROM goals WHERE id = ?
	`, id).Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Type, &g.Status, &g.Progress, &targetDate, &completedAt, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	if targetDate.Valid {
		g.TargetDate = &targetDate.Time
	}
	if completedAt.Valid {
		g.CompletedAt = &completedAt.Time
	}
	return g, nil
}

func (s *Store) GetGoalsForUser(userID, status string) ([]models.Goal, error) {
	query := `
		SELECT id, user_id, title, COALESCE(description, ''), type, status, progress, target_date, completed_at, created_at
		FROM goals WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		var targetDate, completedAt sql.NullTime
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Type, &g.Status, &g.Progress, &targetDate, &completedAt, &g.CreatedAt); err != nil {
			return nil, err
		}
		if targetDate.Valid {
			g.TargetDate = &targetDate.Time
		}
		if completedAt.Valid {
			g.CompletedAt = &completedAt.Time
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) UpdateGoal(id, userID string, req models.UpdateGoalRequest) (*models.Goal, error) {
	owned, err := s.owns("goals", id, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, sql.ErrNoRows
	}

	if req.Title != nil {
		if _, err := s.db.Exec("UPDATE goals SET title = ? WHERE id = ?", *req.Title, id); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if _, err := s.db.Exec("UPDATE goals SET description = ? WHERE id = ?", *req.Description, id); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if _, err := s.db.Exec("UPDATE goals SET type = ? WHERE id = ?", *req.Type, id); err != nil {
			return nil, err
		}
	}
	if req.Progress != nil {
		if _, err := s.db.Exec("UPDATE goals SET progress = ? WHERE id = ?", *req.Progress, id); err != nil {
			return nil, err
		}
	}
	if req.TargetDate != nil {
		if _, err := s.db.Exec("UPDATE goals SET target_date = ? WHERE id = ?", *req.TargetDate, id); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if _, err := s.db.Exec("UPDATE goals SET status = ? WHERE id = ?", *req.Status, id); err != nil {
			return nil, err
		}
		if *req.Status == "completed" {
			if _, err := s.db.Exec("UPDATE goals SET completed_at = ?, progress = 100 WHERE id = ?", time.Now(), id); err != nil {
				return nil, err
			}
		} else {
			if _, err := s.db.Exec("UPDATE goals SET completed_at = NULL WHERE id = ?", id); err != nil {
				return nil, err
			}
		}
	}
	return s.GetGoalByID(id)
}

func (s *Store) DeleteGoal(id, userID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM goals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Post operations

func (s *Store) CreatePost(userID string, content string, isAnonymous bool, tags []string) (*models.Post, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(`
		INSERT INTO posts (id, user_id, content, is_anonymous, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, userID, content, isAnonymous, now, now)
	if err != nil {
		return nil, err
	}

	if err := s.replaceTags("post_tags", "post_id", id, tags); err != nil {
		return nil, err
	}
	return s.GetPostByID(id)
}

func (s *Store) GetPostByID(id string) (*models.Post, error) {
	p := &models.Post{}
	err := s.db.QueryRow(`
		SELECT id, user_id, content, is_anonymous, created_at, updated_at
		FROM posts WHERE id = ?
	`, id).Scan(&p.ID, &p.UserID, &p.Content, &p.IsAnonymous, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, s.loadPostRelations(p)
}

func (s *Store) loadPostRelations(p *models.Post) error {
	rows, err := s.db.Query("SELECT user_id FROM post_likes WHERE post_id = ?", p.ID)
	if err != nil {
		return err
	}
	p.Likes = []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return err
		}
		p.Likes = append(p.Likes, userID)
	}
	rows.Close()
	p.LikesCount = len(p.Likes)

	rows, err = s.db.Query(`
		SELECT id, post_id, user_id, content, is_anonymous, created_at
		FROM post_comments WHERE post_id = ? ORDER BY created_at ASC
	`, p.ID)
	if err != nil {
		return err
	}
	p.Comments = []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.IsAnonymous, &c.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		p.Comments = append(p.Comments, c)
	}
	rows.Close()

	p.Tags, err = s.getTags("post_tags", "post_id", p.ID)
	return err
}

type PostQuery struct {
	UserID string
	Limit  int
}

func (s *Store) GetPosts(q PostQuery) ([]models.Post, error) {
	query := "SELECT id, user_id, content, is_anonymous, created_at, updated_at FROM posts"
	args := []any{}
	if q.UserID != "" {
		query += " WHERE user_id = ?"
		args = append(args, q.UserID)
	}
	query += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.IsAnonymous, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		if err := s.loadPostRelations(&posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// ToggleLike adds or removes the user's like and reports the new state.
func (s *Store) ToggleLike(postID, userID string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID).Scan(&count)
	if err != nil {
		return false, err
	}

	if count > 0 {
		_, err = s.db.Exec("DELETE FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID)
		return false, err
	}
	_, err = s.db.Exec("INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)", postID, userID, time.Now())
	return true, err
}

func (s *Store) HasLiked(postID, userID string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID).Scan(&count)
	return count > 0, err
}

func (s *Store) AddComment(postID, userID, content string, isAnonymous bool) (*models.Comment, error) {
	comment := &models.Comment{
		ID:          uuid.New().String(),
		PostID:      postID,
		UserID:      userID,
		Content:     content,
		IsAnonymous: isAnonymous,
		CreatedAt:   time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO post_comments (id, post_id, user_id, content, is_anonymous, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, comment.ID, comment.PostID, comment.UserID, comment.Content, comment.IsAnonymous, comment.CreatedAt)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Store) DeletePost(id, userID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM posts WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		for _, q := range []string{
			"DELETE FROM post_likes WHERE post_id = ?",
			"DELETE FROM post_comments WHERE post_id = ?",
			"DELETE FROM post_tags WHERE post_id = ?",
		} {
			if _, err := s.db.Exec(q, id); err != nil {
				return false, err
			}
		}
	}
	return n > 0, nil
}

// Reminder operations

func (s *Store) CreateReminder(userID string, req models.CreateReminderRequest) (*models.Reminder, error) {
	id := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO reminders (id, user_id, type, title, description, time, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, TRUE, ?)
	`, id, userID, req.Type, req.Title, req.Description, req.Time, time.Now())
	if err != nil {
		return nil, err
	}

	for _, day := range req.Days {
		if _, err := tx.Exec("INSERT OR IGNORE INTO reminder_days (reminder_id, day) VALUES (?, ?)", id, day); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetReminderByID(id)
}

func (s *Store) GetReminderByID(id string) (*models.Reminder, error) {
	r := &models.Reminder{}
	var lastTriggered sql.NullTime
	err := s.db.QueryRow(`
		SELECT id, user_id, type, title, COALESCE(description, ''), time, is_active, last_triggered, created_at
		FROM reminders WHERE id = ?
	`, id).Scan(&r.ID, &r.UserID, &r.Type, &r.Title, &r.Description, &r.Time, &r.IsActive, &lastTriggered, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastTriggered.Valid {
		r.LastTriggered = &lastTriggered.Time
	}

	r.Days, err = s.getReminderDays(id)
	return r, err
}

func (s *Store) getReminderDays(reminderID string) ([]int, error) {
	rows, err := s.db.Query("SELECT day FROM reminder_days WHERE reminder_id = ? ORDER BY day", reminderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []int{}
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (s *Store) GetRemindersForUser(userID string, isActive *bool) ([]models.Reminder, error) {
	query := `
		SELECT id, user_id, type, title, COALESCE(description, ''), time, is_active, last_triggered, created_at
		FROM reminders WHERE user_id = ?`
	args := []any{userID}
	if isActive != nil {
		query += " AND is_active = ?"
		args = append(args, *isActive)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		var r models.Reminder
		var lastTriggered sql.NullTime
		if err := rows.Scan(&r.ID, &r.UserID, &r.Type, &r.Title, &r.Description, &r.Time, &r.IsActive, &lastTriggered, &r.CreatedAt); err != nil {
			return nil, err
		}
		if lastTriggered.Valid {
			r.LastTriggered = &lastTriggered.Time
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range reminders {
		reminders[i].Days, err = s.getReminderDays(reminders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return reminders, nil
}

func (s *Store) UpdateReminder(id, userID string, req models.UpdateReminderRequest) (*models.Reminder, error) {
	owned, err := s.owns("reminders", id, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, sql.ErrNoRows
	}

	if req.Type != nil {
		if _, err := s.db.Exec("UPDATE reminders SET type = ? WHERE id = ?", *req.Type, id); err != nil {
			return nil, err
		}
	}
	if req.Title != nil {
		if _, err := s.db.Exec("UPDATE reminders SET title = ? WHERE id = ?", *req.Title, id); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if _, err := s.db.Exec("UPDATE reminders SET description = ? WHERE id = ?", *req.Description, id); err != nil {
			return nil, err
		}
	}
	if req.Time != nil {
		if _, err := s.db.Exec("UPDATE reminders SET time = ? WHERE id = ?", *req.Time, id); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if _, err := s.db.Exec("UPDATE reminders SET is_active = ? WHERE id = ?", *req.IsActive, id); err != nil {
			return nil, err
		}
	}
	if req.Days != nil {
		if _, err := s.db.Exec("DELETE FROM reminder_days WHERE reminder_id = ?", id); err != nil {
			return nil, err
		}
		for _, day := range *req.Days {
			if _, err := s.db.Exec("INSERT OR IGNORE INTO reminder_days (reminder_id, day) VALUES (?, ?)", id, day); err != nil {
				return nil, err
			}
		}
	}
	return s.GetReminderByID(id)
}

func (s *Store) DeleteReminder(id, userID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM reminders WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		if _, err := s.db.Exec("DELETE FROM reminder_days WHERE reminder_id = ?", id); err != nil {
			return false, err
		}
	}
	return n > 0, nil
}

// GetDueReminders returns the active reminders matching the given minute
// and weekday that have not already fired today. The owner's notifications
// flag rides along for the scheduler's out-of-band delivery decision.
func (s *Store) GetDueReminders(now time.Time) ([]models.DueReminder, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.user_id, r.type, r.title, COALESCE(r.description, ''), r.time,
			   r.is_active, r.last_triggered, r.created_at, u.notifications
		FROM reminders r
		JOIN users u ON u.id = r.user_id
		WHERE r.is_active = TRUE
		  AND r.time = ?
		  AND EXISTS (
			SELECT 1 FROM reminder_days rd
			WHERE rd.reminder_id = r.id AND rd.day = ?
		  )
		  AND (r.last_triggered IS NULL OR date(r.last_triggered) != ?)
	`, now.Format("15:04"), int(now.Weekday()), now.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []models.DueReminder
	for rows.Next() {
		var d models.DueReminder
		var lastTriggered sql.NullTime
		if err := rows.Scan(&d.ID, &d.UserID, &d.Type, &d.Title, &d.Description, &d.Time,
			&d.IsActive, &lastTriggered, &d.CreatedAt, &d.UserNotifications); err != nil {
			return nil, err
		}
		if lastTriggered.Valid {
			d.LastTriggered = &lastTriggered.Time
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// MarkReminderTriggered records the fire time. The scheduler is the only
// caller; the stored value is what makes the next same-day scan skip the
// reminder.
func (s *Store) MarkReminderTriggered(id string, now time.Time) error {
	_, err := s.db.Exec("UPDATE reminders SET last_triggered = ? WHERE id = ?",
		now.Format("2006-01-02 15:04:05"), id)
	return err
}

// helpers

func (s *Store) owns(table, id, userID string) (bool, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE id = ? AND user_id = ?", id, userID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) getTags(table, column, id string) ([]string, error) {
	rows, err := s.db.Query("SELECT tag FROM "+table+" WHERE "+column+" = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *Store) replaceTags(table, column, id string, tags []string) error {
	if _, err := s.db.Exec("DELETE FROM "+table+" WHERE "+column+" = ?", id); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := s.db.Exec("INSERT INTO "+table+" ("+column+", tag) VALUES (?, ?)", id, tag); err != nil {
			return err
		}
	}
	return nil
}
