package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"habitsync/internal/models"
)

func createTask(t *testing.T, c *testClient, title string) int {
	t.Helper()
	resp := c.do(http.MethodPost, "/api/tasks", map[string]any{
		"title":    title,
		"due_date": "2024-06-01",
		"priority": "high",
	})
	wantStatus(t, resp, http.StatusCreated)
	var out struct {
		ID int `json:"id"`
	}
	decodeJSON(t, resp, &out)
	if out.ID <= 0 {
		t.Fatalf("create task: got id %d, want positive", out.ID)
	}
	return out.ID
}

func TestTaskCRUD(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	id := createTask(t, alice, "write report")

	resp := alice.do(http.MethodGet, "/api/tasks", nil)
	wantStatus(t, resp, http.StatusOK)
	var tasks []models.Task
	decodeJSON(t, resp, &tasks)
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Status != "pending" {
		t.Errorf("got status %q, want default pending", tasks[0].Status)
	}

	resp = alice.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), map[string]any{
		"title":  "write report",
		"status": "done",
	})
	wantStatus(t, resp, http.StatusOK)

	resp = alice.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil)
	wantStatus(t, resp, http.StatusOK)
	var task models.Task
	decodeJSON(t, resp, &task)
	if task.Status != "done" {
		t.Errorf("got status %q after update, want done", task.Status)
	}

	resp = alice.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil)
	wantStatus(t, resp, http.StatusOK)

	resp = alice.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil)
	wantStatus(t, resp, http.StatusNotFound)
}

// Another user's task must be indistinguishable from a missing one.
func TestTaskOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")

	id := createTask(t, alice, "private task")

	resp := bob.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil)
	wantStatus(t, resp, http.StatusNotFound)

	resp = bob.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), map[string]any{
		"title":  "hijacked",
		"status": "done",
	})
	wantStatus(t, resp, http.StatusNotFound)

	resp = bob.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil)
	wantStatus(t, resp, http.StatusNotFound)

	resp = bob.do(http.MethodGet, "/api/tasks", nil)
	wantStatus(t, resp, http.StatusOK)
	var bobTasks []models.Task
	decodeJSON(t, resp, &bobTasks)
	if len(bobTasks) != 0 {
		t.Errorf("bob sees %d tasks, want 0", len(bobTasks))
	}

	resp = alice.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil)
	wantStatus(t, resp, http.StatusOK)
	var task models.Task
	decodeJSON(t, resp, &task)
	if task.Title != "private task" {
		t.Errorf("alice's task was modified: %+v", task)
	}
}
