package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pdv/internal/hash"
	"github.com/Skotchmaster/pdv/internal/models"
	"github.com/Skotchmaster/pdv/internal/service"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"name":     "Maria",
		"email":    "maria@example.com",
		"password": "password",
	}

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/register", payload)
	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp["id"])
	require.Equal(t, "Maria", resp["name"])
	require.Equal(t, "maria@example.com", resp["email"])
	require.NotContains(t, resp, "password")

	var stored models.User
	require.NoError(t, env.DB.First(&stored).Error)
	require.NotEqual(t, "password", stored.PasswordHash)
	require.True(t, hash.CheckPassword(stored.PasswordHash, "password"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"name":     "Maria",
		"email":    "maria@example.com",
		"password": "password",
	}
	_, c := env.doJSONRequest(http.MethodPost, "/auth/register", payload)
	require.NoError(t, env.A.Register(c))

	payload["name"] = "Impostor"
	_, c2 := env.doJSONRequest(http.MethodPost, "/auth/register", payload)
	err := env.A.Register(c2)
	require.Equal(t, http.StatusConflict, httpErrorCode(t, err))

	// first registration untouched
	var users []models.User
	require.NoError(t, env.DB.Find(&users).Error)
	require.Len(t, users, 1)
	require.Equal(t, "Maria", users[0].Name)
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	for _, payload := range []map[string]string{
		{"email": "a@b.c", "password": "x"},
		{"name": "a", "password": "x"},
		{"name": "a", "email": "a@b.c"},
	} {
		_, c := env.doJSONRequest(http.MethodPost, "/auth/register", payload)
		err := env.A.Register(c)
		require.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
	}

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	user := models.User{Name: "Maria", Email: "maria@example.com", PasswordHash: pwHash}
	require.NoError(t, env.DB.Create(&user).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "maria@example.com",
		"password": "password",
	})
	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, user.ID, resp.User.ID)
	require.Equal(t, "maria@example.com", resp.User.Email)

	claims, err := service.ParseAccessToken(resp.Token, env.A.JWTSecret)
	require.NoError(t, err)
	require.EqualValues(t, user.ID, claims["sub"])
	require.Equal(t, "Maria", claims["name"])
	require.Equal(t, "maria@example.com", claims["email"])
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, env.DB.Create(&models.User{
		Name: "Maria", Email: "maria@example.com", PasswordHash: pwHash,
	}).Error)

	_, c := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "maria@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, httpErrorCode(t, env.A.Login(c)))

	_, c2 := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusUnauthorized, httpErrorCode(t, env.A.Login(c2)))
}
