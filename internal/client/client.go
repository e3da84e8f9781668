package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gerfey/planit/internal/models"
	"github.com/gerfey/planit/internal/validation"
)

var (
	ErrInvalidResponse  = errors.New("неверный ответ сервера")
	ErrNotAuthenticated = errors.New("не авторизован")
	ErrWeakPassword     = errors.New("пароль не соответствует требованиям")
)

const (
	httpErrorCodeStart   = 400
	clientTimeoutSeconds = 10
)

// APIError - ошибка, которую сервер вернул в теле {error:{message,status,details}}.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}

	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// IsUnauthorized сообщает, что сервер отверг токен или учетные данные.
func IsUnauthorized(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL    string
	httpClient HTTPClient
	token      string
	username   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: clientTimeoutSeconds * time.Second,
		},
	}
}

func (c *Client) SetAuthToken(token string) {
	c.token = token
}

func (c *Client) GetAuthToken() string {
	return c.token
}

func (c *Client) Username() string {
	return c.username
}

// Register проверяет сложность пароля локально и при успехе сразу авторизует клиента.
func (c *Client) Register(ctx context.Context, username, password string) (*models.PublicUser, error) {
	if result := validation.ValidatePassword(password); !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(result.Errors, "; "))
	}

	req := models.RegisterRequest{
		Username: username,
		Password: password,
	}

	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}

	c.setSession(resp)

	return &resp.User, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*models.PublicUser, error) {
	req := models.LoginRequest{
		Username: username,
		Password: password,
	}

	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	c.setSession(resp)

	return &resp.User, nil
}

func (c *Client) Verify(ctx context.Context) (*models.PublicUser, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}

	var resp models.VerifyResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/verify", nil, &resp); err != nil {
		return nil, err
	}

	c.username = resp.User.Username

	return &resp.User, nil
}

// ListTasks возвращает задачи пользователя; пустой status означает все задачи.
func (c *Client) ListTasks(ctx context.Context, status models.TaskStatus) ([]*models.Task, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}

	path := "/tasks"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}

	var resp models.TasksResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Tasks == nil {
		return []*models.Task{}, nil
	}

	return resp.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	return c.taskRequest(ctx, http.MethodPost, "/tasks", req)
}

func (c *Client) UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	return c.taskRequest(ctx, http.MethodPut, taskPath(id), req)
}

// DeleteTask возвращает удаленную задачу в том виде, в каком она была в базе.
func (c *Client) DeleteTask(ctx context.Context, id int64) (*models.Task, error) {
	return c.taskRequest(ctx, http.MethodDelete, taskPath(id), nil)
}

func (c *Client) taskRequest(ctx context.Context, method, path string, body any) (*models.Task, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}

	var resp models.TaskResponse
	if err := c.doJSON(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}

	if resp.Task == nil {
		return nil, ErrInvalidResponse
	}

	return resp.Task, nil
}

func (c *Client) setSession(resp models.AuthResponse) {
	c.token = resp.Token
	c.username = resp.User.Username
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	resp, err := c.sendRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= httpErrorCodeStart {
		return decodeAPIError(resp)
	}

	if respBody == nil {
		return nil
	}

	if errDecode := json.NewDecoder(resp.Body).Decode(respBody); errDecode != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, errDecode)
	}

	return nil
}

func (c *Client) sendRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

// decodeAPIError не теряет статус, даже если тело ответа не в формате API.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		apiErr.Details = errResp.Error.Details
	}

	return apiErr
}
