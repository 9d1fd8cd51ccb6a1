package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Expense{}, &models.Income{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	userService := services.NewUserService(db)
	budgetService := services.NewBudgetService(db)

	authHandler := handlers.NewAuthHandler(userService, budgetService)
	expenseHandler := handlers.NewExpenseHandler(budgetService)
	dashboardHandler := handlers.NewDashboardHandler(budgetService, userService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	api := router.Group("/api")

	users := api.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/logout", authHandler.Logout)

	requireSession := middleware.RequireSession(userService)

	usersAuth := api.Group("/users")
	usersAuth.Use(requireSession)
	usersAuth.GET("/profile", authHandler.Profile)
	usersAuth.POST("/updateProfile", authHandler.UpdateProfile)

	expenses := api.Group("/expenses")
	expenses.Use(requireSession)
	expenses.GET("/getExpenses", expenseHandler.GetExpenses)
	expenses.POST("/createExpenses", expenseHandler.CreateExpenses)
	expenses.PUT("/updateExpenses/:id", expenseHandler.UpdateExpenses)
	expenses.DELETE("/deleteExpenses/:id", expenseHandler.DeleteExpenses)
	expenses.POST("/addIncome", expenseHandler.AddIncome)
	expenses.GET("/getIncomes", expenseHandler.GetIncomes)
	expenses.POST("/addMoreMoney", expenseHandler.AddMoreMoney)

	dashboard := api.Group("/dashboard")
	dashboard.Use(requireSession)
	dashboard.GET("/summary", dashboardHandler.Summary)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router, attaching the session
// cookie when one is given, and returns the recorder.
func (app *testApp) request(method, path, body string, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// sessionFrom extracts the session cookie from a response.
func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response (headers: %v)", rec.Header())
	return nil
}

// registerUser registers a new user and returns the session cookie and user ID.
func (app *testApp) registerUser(t *testing.T, name, email, password string) (*http.Cookie, string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":%q}`, name, email, password)
	rec := app.request("POST", "/api/users/register", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return sessionFrom(t, rec), user["id"].(string)
}

// loginUser logs in and returns the session cookie.
func (app *testApp) loginUser(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/users/login", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return sessionFrom(t, rec)
}
