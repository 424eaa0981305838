package controllers_test

import (
	"edulearn/backend/models"
	"edulearn/backend/store/storetest"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionBody struct {
	Token string `json:"token"`
	User  struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func TestRegisterAndLogin(t *testing.T) {
	env := setup(t, nil)

	var reg sessionBody
	status := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "s3cret", "role": "student",
	}, &reg)
	require.Equal(t, http.StatusCreated, status, reg.Message)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.Equal(t, models.RoleStudent, reg.User.Role)

	var dup sessionBody
	status = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ada@example.com", "password": "other",
	}, &dup)
	assert.Equal(t, http.StatusConflict, status)

	var login sessionBody
	status = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "s3cret",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, reg.User.ID, login.User.ID)

	var bad sessionBody
	status = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	}, &bad)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "x",
	}, &bad)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterValidation(t *testing.T) {
	env := setup(t, nil)

	var out sessionBody
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "a@example.com"}, &out))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "a@example.com", "password": "x", "role": "admin"}, &out))

	var reg sessionBody
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "t@example.com", "password": "x"}, &reg))
	assert.Equal(t, models.RoleTeacher, reg.User.Role)
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Message string                 `json:"message"`
}

func TestProfileAndLastVisited(t *testing.T) {
	env := setup(t, nil)
	user := storetest.SeedUser(t, env.db, "s@example.com", models.RoleStudent)
	token := env.token(t, user.ID, user.Email)
	course := storetest.SeedCourse(t, env.db, "Go", true, false, time.Hour)
	lesson := storetest.SeedLesson(t, env.db, course.ID, 1, "Basics")
	other := storetest.SeedCourse(t, env.db, "Rust", true, false, time.Hour)
	foreign := storetest.SeedLesson(t, env.db, other.ID, 1, "Ownership")

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/user/profile", "", nil, nil))

	var profile envelope
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/user/profile", token, nil, &profile))
	assert.Equal(t, "s@example.com", profile.Data["email"])
	assert.Nil(t, profile.Data["lastVisitedCourse"])

	var out envelope
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/user/last-visited", token,
		map[string]interface{}{}, &out))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/user/last-visited", token,
		map[string]interface{}{"courseId": 999}, &out))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/user/last-visited", token,
		map[string]interface{}{"courseId": course.ID, "lessonId": foreign.ID}, &out))

	out = envelope{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/user/last-visited", token,
		map[string]interface{}{"courseId": course.ID, "lessonId": lesson.ID}, &out))
	assert.EqualValues(t, course.ID, out.Data["lastVisitedCourse"])
	assert.EqualValues(t, lesson.ID, out.Data["lastVisitedLesson"])

	profile = envelope{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/user/profile", token, nil, &profile))
	assert.EqualValues(t, course.ID, profile.Data["lastVisitedCourse"])
}

type page struct {
	Data     []map[string]interface{} `json:"data"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"pageSize"`
}

func TestListCourses(t *testing.T) {
	env := setup(t, nil)
	for i := 0; i < 10; i++ {
		storetest.SeedCourse(t, env.db, fmt.Sprintf("Go %02d", i), true, i%2 == 0, time.Duration(10-i)*time.Hour)
	}
	storetest.SeedCourse(t, env.db, "Rust Draft", false, false, time.Minute)

	var all page
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/courses", "", nil, &all))
	assert.Equal(t, int64(11), all.Total)
	assert.Len(t, all.Data, 8)
	assert.Equal(t, 8, all.PageSize)
	// default sort is newest first
	assert.Equal(t, "Rust Draft", all.Data[0]["title"])

	var second page
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/courses?page=2", "", nil, &second))
	assert.Len(t, second.Data, 3)
	assert.Equal(t, 2, second.Page)

	var filtered page
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet,
		"/api/courses?search=go&published=true&isPaid=true&sort=title,ASC", "", nil, &filtered))
	assert.Equal(t, int64(5), filtered.Total)
	assert.Equal(t, "Go 00", filtered.Data[0]["title"])
	assert.Equal(t, "Go 08", filtered.Data[4]["title"])

	var titles []string
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/courses?suggest=true&search=rust", "", nil, &titles))
	assert.Equal(t, []string{"Rust Draft"}, titles)

	titles = nil
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/courses?suggest=true&search=nothing", "", nil, &titles))
	assert.Empty(t, titles)
}

func TestCourseDetails(t *testing.T) {
	env := setup(t, nil)
	course := storetest.SeedCourse(t, env.db, "Go", true, false, time.Hour)
	storetest.SeedLesson(t, env.db, course.ID, 2, "Types", "What is a struct?")
	storetest.SeedLesson(t, env.db, course.ID, 1, "Basics")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/courses/abc", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/courses/999", "", nil, nil))

	var out envelope
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", course.ID), "", nil, &out))
	assert.Equal(t, "Go", out.Data["title"])
	lessons, ok := out.Data["lessons"].([]interface{})
	require.True(t, ok)
	require.Len(t, lessons, 2)
	first := lessons[0].(map[string]interface{})
	second := lessons[1].(map[string]interface{})
	assert.Equal(t, "Basics", first["title"])
	assert.Equal(t, "Types", second["title"])
	assert.Len(t, second["quizzes"], 1)
}

func TestEnroll(t *testing.T) {
	env := setup(t, nil)
	user := storetest.SeedUser(t, env.db, "s@example.com", models.RoleStudent)
	token := env.token(t, user.ID, user.Email)
	course := storetest.SeedCourse(t, env.db, "Go", true, false, time.Hour)
	draft := storetest.SeedCourse(t, env.db, "Draft", false, false, time.Hour)

	path := fmt.Sprintf("/api/courses/%d/enroll", course.ID)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, path, "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/enroll", draft.ID), token, nil, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path, token, nil, nil))

	var chat chatBody
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/chatbot", token,
		map[string]string{"message": "popular courses"}, &chat))
	assert.Equal(t, "Here are the 3 most popular courses:\n\n1. Go — 1 students", chat.Reply)
}
