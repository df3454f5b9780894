package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pdv/internal/config"
	"github.com/Skotchmaster/pdv/internal/mykafka"
	"github.com/Skotchmaster/pdv/internal/service"
)

type testEnv struct {
	DB *gorm.DB
	A  *AuthHandler
	P  *ProductHandler
	S  *SaleHandler
	R  *ReportHandler

	e *echo.Echo
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := initTestDB(t)
	prod := &mykafka.Producer{}
	secret := []byte("test-jwt-secret")

	return &testEnv{
		DB: db,
		A:  &AuthHandler{DB: db, JWTSecret: secret, Producer: prod},
		P:  &ProductHandler{DB: db, Producer: prod},
		S:  &SaleHandler{DB: db, Svc: &service.SaleService{DB: db}, Producer: prod},
		R:  &ReportHandler{DB: db},
		e:  echo.New(),
	}
}

func (env *testEnv) doJSONRequest(method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	return rec, c
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()

	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}
