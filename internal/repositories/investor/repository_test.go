package investor_test

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/trellis/internal/repositories/company"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/pkg/database"
	"github.com/Ramsey-B/trellis/pkg/models"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	// Use environment variables or defaults for test DB
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "postgres"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "postgres"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "trellis"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

// newTestCompany creates a throwaway company to scope the test's rows
func newTestCompany(t *testing.T, db database.DB) *models.Company {
	t.Helper()
	repo := company.NewRepository(db, getTestLogger())
	created, err := repo.Create(context.Background(), models.CreateCompanyRequest{Name: "Investor Repo Test Co"})
	require.NoError(t, err)
	return created
}

// assertNotFound asserts that err is an HTTP 404 error
func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err), "expected 404, got: %d", httperror.GetStatusCode(err))
}

func TestInvestorRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := investor.NewRepository(db, logger)

	co := newTestCompany(t, db)
	ctx := context.Background()

	// Test Create
	created, err := repo.Create(ctx, co.ID, models.CreateInvestorRequest{
		FullName: "Jordan Blake",
		Email:    strPtr("jordan@blakecapital.com"),
		Firm:     strPtr("Blake Capital"),
		Industry: strPtr("fintech"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, co.ID, created.CompanyID)
	assert.False(t, created.CreatedAt.IsZero())

	// Test Get
	fetched, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Blake", fetched.FullName)
	require.NotNil(t, fetched.Firm)
	assert.Equal(t, "Blake Capital", *fetched.Firm)

	// Test GetForCompany
	scoped, err := repo.GetForCompany(ctx, co.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, scoped.ID)

	// Test ListByCompany
	investors, total, err := repo.ListByCompany(ctx, co.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, investors, 1)
	assert.Equal(t, created.ID, investors[0].ID)

	// Test Update
	updated, err := repo.Update(ctx, co.ID, created.ID, models.UpdateInvestorRequest{
		FullName: strPtr("Jordan A. Blake"),
		Notes:    strPtr("warm intro via Sam"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jordan A. Blake", updated.FullName)
	require.NotNil(t, updated.Notes)
	require.NotNil(t, updated.Firm)
	assert.Equal(t, "Blake Capital", *updated.Firm, "untouched fields survive partial update")

	// Test company isolation - another company must not see this investor
	otherCo := newTestCompany(t, db)
	_, err = repo.GetForCompany(ctx, otherCo.ID, created.ID)
	assertNotFound(t, err)

	// Test Delete (soft)
	err = repo.Delete(ctx, co.ID, created.ID)
	require.NoError(t, err)

	_, err = repo.Get(ctx, created.ID)
	assertNotFound(t, err)

	err = repo.Delete(ctx, co.ID, created.ID)
	assertNotFound(t, err)
}

func TestInvestorRepository_Tags(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := investor.NewRepository(db, logger)

	co := newTestCompany(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, co.ID, models.CreateInvestorRequest{FullName: "Tagged Investor"})
	require.NoError(t, err)

	// Blank tags dropped, duplicates collapse
	tags, err := repo.AddTags(ctx, co.ID, created.ID, []string{"lead", "  ", "fintech", "lead"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lead", "fintech"}, tags)

	tags, err = repo.AddTags(ctx, co.ID, created.ID, []string{"fintech", "priority"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lead", "fintech", "priority"}, tags)

	err = repo.RemoveTag(ctx, co.ID, created.ID, "lead")
	require.NoError(t, err)

	tags, err = repo.ListTags(ctx, co.ID, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fintech", "priority"}, tags)
}

func TestInvestorRepository_StatusHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := investor.NewRepository(db, logger)

	co := newTestCompany(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, co.ID, models.CreateInvestorRequest{FullName: "Status Investor"})
	require.NoError(t, err)
	entity := models.InvestorRef(created.ID)

	// No status recorded yet
	current, err := repo.CurrentStatus(ctx, co.ID, entity)
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = repo.AddStatus(ctx, co.ID, entity, models.InvestorStatusProspect, nil)
	require.NoError(t, err)

	change, err := repo.AddStatus(ctx, co.ID, entity, models.InvestorStatusMeeting, strPtr("user-7"))
	require.NoError(t, err)
	assert.NotZero(t, change.ID)
	require.NotNil(t, change.ByUser)
	assert.Equal(t, "user-7", *change.ByUser)

	current, err = repo.CurrentStatus(ctx, co.ID, entity)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, models.InvestorStatusMeeting, *current)

	// Newest first
	history, err := repo.StatusHistory(ctx, co.ID, entity, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.InvestorStatusMeeting, history[0].Status)
	assert.Equal(t, models.InvestorStatusProspect, history[1].Status)
}

func strPtr(s string) *string {
	return &s
}
