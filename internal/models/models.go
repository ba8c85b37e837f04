package models

type User struct {
	ID           int    `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
}

type UserProfile struct {
	UserID      int     `db:"user_id" json:"-"`
	Name        *string `db:"name" json:"name"`
	Age         *int    `db:"age" json:"age"`
	Gender      *string `db:"gender" json:"gender"`
	Height      *string `db:"height" json:"height"`
	Weight      *string `db:"weight" json:"weight"`
	HealthGoals *string `db:"health_goals" json:"health_goals"` // Encrypted in DB
}

type Task struct {
	ID          int     `db:"id" json:"id"`
	UserID      int     `db:"user_id" json:"-"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	DueDate     *string `db:"due_date" json:"due_date"` // YYYY-MM-DD
	Priority    *string `db:"priority" json:"priority"`
	Status      string  `db:"status" json:"status"`
}

type Habit struct {
	ID          int             `db:"id" json:"id"`
	UserID      int             `db:"user_id" json:"-"`
	Title       string          `db:"title" json:"title"`
	Description *string         `db:"description" json:"description"`
	Frequency   string          `db:"frequency" json:"frequency"`
	Completions map[string]bool `db:"-" json:"completions"` // date -> completed
}

type HabitCompletion struct {
	ID        int    `db:"id" json:"-"`
	HabitID   int    `db:"habit_id" json:"habit_id"`
	UserID    int    `db:"user_id" json:"-"`
	Date      string `db:"date" json:"date"`
	Completed bool   `db:"completed" json:"completed"`
}

type DailyLog struct {
	ID        int     `db:"id" json:"id"`
	UserID    int     `db:"user_id" json:"-"`
	Date      string  `db:"date" json:"date"`
	WakeTime  *string `db:"wake_time" json:"wake_time"`
	SleepTime *string `db:"sleep_time" json:"sleep_time"`
	Mood      *string `db:"mood" json:"mood"`
	Notes     *string `db:"notes" json:"notes"` // Encrypted in DB
}
