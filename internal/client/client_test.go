package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gerfey/planit/internal/models"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:3000/")

	assert.Equal(t, "http://localhost:3000", c.BaseURL())
	assert.Empty(t, c.GetAuthToken())
}

func TestRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/auth/register", req.URL.Path)
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			assert.Empty(t, req.Header.Get("Authorization"))

			var body models.RegisterRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "alice", body.Username)
			assert.Equal(t, "Str0ng!Pass", body.Password)

			return jsonResponse(http.StatusCreated, `{
				"message": "User registered successfully",
				"user": {"id": 1, "username": "alice"},
				"token": "new_token"
			}`), nil
		})

	c := &Client{}
	c.SetHTTPClient(mockHTTP)

	user, err := c.Register(t.Context(), "alice", "Str0ng!Pass")

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "new_token", c.GetAuthToken())
	assert.Equal(t, "alice", c.Username())
}

func TestRegisterWeakPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// запрос не должен уйти на сервер
	mockHTTP := NewMockHTTPClient(ctrl)

	c := &Client{}
	c.SetHTTPClient(mockHTTP)

	_, err := c.Register(t.Context(), "alice", "weak")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Contains(t, err.Error(), "at least 8 characters")
	assert.Empty(t, c.GetAuthToken())
}

func TestRegisterUsernameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusBadRequest,
			`{"error":{"message":"Username already exists","status":400}}`), nil)

	c := &Client{}
	c.SetHTTPClient(mockHTTP)

	_, err := c.Register(t.Context(), "alice", "Str0ng!Pass")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Username already exists", apiErr.Message)
}

func TestLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/auth/login", req.URL.Path)

			var loginReq models.LoginRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&loginReq))
			assert.Equal(t, "testuser", loginReq.Username)
			assert.Equal(t, "password", loginReq.Password)

			return jsonResponse(http.StatusOK, `{
				"message": "Login successful",
				"user": {"id": 7, "username": "testuser"},
				"token": "test_token"
			}`), nil
		})

	c := &Client{}
	c.SetHTTPClient(mockHTTP)

	user, err := c.Login(t.Context(), "testuser", "password")

	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "test_token", c.GetAuthToken())
	assert.Equal(t, "testuser", c.Username())
}

func TestLoginError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		Return(nil, assert.AnError)

	c := &Client{}
	c.SetHTTPClient(mockHTTP)

	_, err := c.Login(t.Context(), "testuser", "password")

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLoginAuthFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusUnauthorized,
			`{"error":{"message":"Invalid credentials","status":401}}`), nil)

	c := &Client{}
	c.SetHTTPClient(mockHTTP)

	_, err := c.Login(t.Context(), "testuser", "wrongpassword")

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Empty(t, c.GetAuthToken())
}

func TestVerify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "/auth/verify", req.URL.Path)
			assert.Equal(t, "Bearer saved_token", req.Header.Get("Authorization"))
			assert.Empty(t, req.Header.Get("Content-Type"))

			return jsonResponse(http.StatusOK, `{"user":{"id":3,"username":"bob"}}`), nil
		})

	c := &Client{}
	c.SetHTTPClient(mockHTTP)
	c.SetAuthToken("saved_token")

	user, err := c.Verify(t.Context())

	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "bob", c.Username())
}

func TestVerifyNotAuthenticated(t *testing.T) {
	c := &Client{}

	_, err := c.Verify(t.Context())

	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestListTasks(t *testing.T) {
	tests := []struct {
		name      string
		status    models.TaskStatus
		wantQuery string
		body      string
		wantLen   int
	}{
		{
			name:      "все задачи",
			status:    "",
			wantQuery: "",
			body: `{"message":"Tasks retrieved successfully","tasks":[
				{"id":2,"title":"B","description":null,"due_date":"2025-01-16T00:00:00Z","status":"Completed","user_id":1},
				{"id":1,"title":"A","description":"d","due_date":"2025-01-15T00:00:00Z","status":"Pending","user_id":1}
			]}`,
			wantLen: 2,
		},
		{
			name:      "фильтр по статусу",
			status:    models.TaskPending,
			wantQuery: "status=Pending",
			body:      `{"message":"Tasks retrieved successfully","tasks":[]}`,
			wantLen:   0,
		},
		{
			name:      "null вместо списка",
			status:    models.TaskCompleted,
			wantQuery: "status=Completed",
			body:      `{"message":"Tasks retrieved successfully","tasks":null}`,
			wantLen:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockHTTP := NewMockHTTPClient(ctrl)

			mockHTTP.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					assert.Equal(t, http.MethodGet, req.Method)
					assert.Equal(t, "/tasks", req.URL.Path)
					assert.Equal(t, tt.wantQuery, req.URL.RawQuery)
					assert.Equal(t, "Bearer test_token", req.Header.Get("Authorization"))

					return jsonResponse(http.StatusOK, tt.body), nil
				})

			c := &Client{}
			c.SetHTTPClient(mockHTTP)
			c.SetAuthToken("test_token")

			tasks, err := c.ListTasks(t.Context(), tt.status)

			require.NoError(t, err)
			assert.NotNil(t, tasks)
			assert.Len(t, tasks, tt.wantLen)
		})
	}
}

func TestListTasksDecodesFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"message":"ok","tasks":[
			{"id":1,"title":"A","description":"d","due_date":"2025-01-15T00:00:00Z","status":"Pending","user_id":1}
		]}`), nil)

	c := &Client{}
	c.SetHTTPClient(mockHTTP)
	c.SetAuthToken("test_token")

	tasks, err := c.ListTasks(t.Context(), "")

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "A", tasks[0].Title)
	require.NotNil(t, tasks[0].Description)
	assert.Equal(t, "d", *tasks[0].Description)
	assert.Equal(t, "2025-01-15", formatDate(tasks[0].DueDate))
	assert.Equal(t, models.TaskPending, tasks[0].Status)
}

func TestCreateTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/tasks", req.URL.Path)
			assert.Equal(t, "Bearer test_token", req.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "Buy milk", body["title"])
			assert.Equal(t, "2025-01-15", body["due_date"])
			assert.Nil(t, body["description"])

			return jsonResponse(http.StatusCreated, `{"message":"Task created successfully","task":
				{"id":10,"title":"Buy milk","description":null,"due_date":"2025-01-15T00:00:00Z","status":"Pending","user_id":1}}`), nil
		})

	c := &Client{}
	c.SetHTTPClient(mockHTTP)
	c.SetAuthToken("test_token")

	task, err := c.CreateTask(t.Context(), models.CreateTaskRequest{Title: "Buy milk", DueDate: "2025-01-15"})

	require.NoError(t, err)
	assert.Equal(t, int64(10), task.ID)
	assert.Equal(t, models.TaskPending, task.Status)
	assert.Nil(t, task.Description)
}

func TestCreateTaskConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusConflict,
			`{"error":{"message":"Task with this title already exists","status":409}}`), nil)

	c := &Client{}
	c.SetHTTPClient(mockHTTP)
	c.SetAuthToken("test_token")

	_, err := c.CreateTask(t.Context(), models.CreateTaskRequest{Title: "Buy milk", DueDate: "2025-01-15"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.False(t, IsUnauthorized(err))
}

func TestUpdateTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPut, req.Method)
			assert.Equal(t, "/tasks/42", req.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, map[string]any{
				"title":       nil,
				"description": nil,
				"due_date":    nil,
				"status":      "Completed",
			}, body)

			return jsonResponse(http.StatusOK, `{"message":"Task updated successfully","task":
				{"id":42,"title":"A","due_date":"2025-01-15T00:00:00Z","status":"Completed","user_id":1}}`), nil
		})

	c := &Client{}
	c.SetHTTPClient(mockHTTP)
	c.SetAuthToken("test_token")

	status := models.TaskCompleted
	task, err := c.UpdateTask(t.Context(), 42, models.UpdateTaskRequest{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
}

func TestDeleteTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodDelete, req.Method)
			assert.Equal(t, "/tasks/123", req.URL.Path)
			assert.Equal(t, "Bearer test_token", req.Header.Get("Authorization"))
			assert.Nil(t, req.Body)

			return jsonResponse(http.StatusOK, `{"message":"Task deleted successfully","task":
				{"id":123,"title":"A","due_date":"2025-01-15T00:00:00Z","status":"Pending","user_id":1}}`), nil
		})

	c := &Client{}
	c.SetHTTPClient(mockHTTP)
	c.SetAuthToken("test_token")

	task, err := c.DeleteTask(t.Context(), 123)

	require.NoError(t, err)
	assert.Equal(t, int64(123), task.ID)
}

func TestDeleteTaskNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusNotFound, `{"error":{"message":"Task not found","status":404}}`), nil)

	c := &Client{}
	c.SetHTTPClient(mockHTTP)
	c.SetAuthToken("test_token")

	_, err := c.DeleteTask(t.Context(), 123)

	require.Error(t, err)
	assert.Equal(t, "Task not found", err.Error())
}

func TestTaskOperationsNotAuthenticated(t *testing.T) {
	c := &Client{}

	_, err := c.ListTasks(t.Context(), "")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.CreateTask(t.Context(), models.CreateTaskRequest{})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.UpdateTask(t.Context(), 1, models.UpdateTaskRequest{})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.DeleteTask(t.Context(), 1)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAPIErrorFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetails []string
	}{
		{
			name:        "детали нарушений",
			status:      http.StatusBadRequest,
			body:        `{"error":{"message":"Password does not meet requirements","status":400,"details":["a","b"]}}`,
			wantMessage: "Password does not meet requirements",
			wantDetails: []string{"a", "b"},
		},
		{
			name:        "тело не в формате API",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "Bad Gateway",
		},
		{
			name:        "пустое тело",
			status:      http.StatusTooManyRequests,
			body:        ``,
			wantMessage: "Too Many Requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeAPIError(jsonResponse(tt.status, tt.body))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantDetails, apiErr.Details)
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: 400, Message: "Password does not meet requirements", Details: []string{"x", "y"}}

	assert.Equal(t, "Password does not meet requirements: x; y", err.Error())
}

func TestInvalidResponseBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)

	mockHTTP.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `not json`), nil)

	c := &Client{}
	c.SetHTTPClient(mockHTTP)
	c.SetAuthToken("test_token")

	_, err := c.ListTasks(t.Context(), "")

	assert.ErrorIs(t, err, ErrInvalidResponse)
}
