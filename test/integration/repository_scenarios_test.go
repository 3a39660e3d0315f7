package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/internal/repositories/company"
	"github.com/Ramsey-B/trellis/internal/repositories/connection"
	"github.com/Ramsey-B/trellis/internal/repositories/interaction"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/internal/repositories/networkmap"
	"github.com/Ramsey-B/trellis/internal/repositories/snapshot"
	"github.com/Ramsey-B/trellis/pkg/accessmap"
	"github.com/Ramsey-B/trellis/pkg/database"
	"github.com/Ramsey-B/trellis/pkg/models"
)

func silentTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// testContext holds shared test context
type testContext struct {
	db           database.DB
	companies    *company.Repository
	investors    *investor.Repository
	connections  *connection.Repository
	networkMaps  *networkmap.Repository
	interactions *interaction.Repository
	snapshots    *snapshot.Repository
	ctx          context.Context
	companyID    int64
}

// setupTestContext connects to the test database and scopes the test to a
// fresh company. tc.db stays nil when no database is reachable; each test
// gates on that.
func setupTestContext(t *testing.T) *testContext {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tc := &testContext{ctx: context.Background()}

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
	sqlxDB, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return tc
	}

	logger := silentTestLogger()
	tc.db = database.NewDatabaseInstance(sqlxDB, logger)
	tc.companies = company.NewRepository(tc.db, logger)
	tc.investors = investor.NewRepository(tc.db, logger)
	tc.connections = connection.NewRepository(tc.db, logger)
	tc.networkMaps = networkmap.NewRepository(tc.db, logger)
	tc.interactions = interaction.NewRepository(tc.db, logger)
	tc.snapshots = snapshot.NewRepository(tc.db, logger)

	created, err := tc.companies.Create(tc.ctx, models.CreateCompanyRequest{
		Name: "Scenario Test Co " + uuid.New().String()[:8],
	})
	require.NoError(t, err)
	tc.companyID = created.ID

	return tc
}

func (tc *testContext) createInvestor(t *testing.T, name, firm string) *models.Investor {
	t.Helper()
	created, err := tc.investors.Create(tc.ctx, tc.companyID, models.CreateInvestorRequest{
		FullName: name,
		Firm:     strPtr(firm),
	})
	require.NoError(t, err)
	return created
}

func connReq(fullName, comp, position string) models.CreateConnectionRequest {
	req := models.CreateConnectionRequest{FullName: strPtr(fullName)}
	if comp != "" {
		req.Company = strPtr(comp)
	}
	if position != "" {
		req.Position = strPtr(position)
	}
	return req
}

// TestConnectionImportRebuildScenario walks the import path end to end: two
// investors upload their networks, one re-imports, and the access map is
// rebuilt from whatever rows survived.
func TestConnectionImportRebuildScenario(t *testing.T) {
	tc := setupTestContext(t)
	if tc.db == nil {
		t.Skip("Database not configured")
	}

	alice := tc.createInvestor(t, "Alice Chen", "Summit Capital")
	bob := tc.createInvestor(t, "Bob Marsh", "Harbor Fund")

	// First import: Alice brings two contacts, Bob brings two, sharing Dana
	count, err := tc.connections.ReplaceForInvestor(tc.ctx, alice.ID, []models.CreateConnectionRequest{
		connReq("Dana White", "Sequoia Capital", "Partner"),
		connReq("Evan Stone", "Acme Bank", "VP Engineering"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = tc.connections.ReplaceForInvestor(tc.ctx, bob.ID, []models.CreateConnectionRequest{
		connReq("Dana White", "Sequoia Capital", "Partner"),
		connReq("Henry Park", "Vertex Fund", "Managing Director"),
	})
	require.NoError(t, err)

	total, err := tc.connections.CountByCompany(tc.ctx, tc.companyID)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	// Re-import: Alice uploads a corrected export with a single row. The old
	// rows must not survive alongside it.
	count, err = tc.connections.ReplaceForInvestor(tc.ctx, alice.ID, []models.CreateConnectionRequest{
		connReq("Dana White", "Sequoia Capital", "Partner"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	aliceConns, err := tc.connections.ListAllByInvestor(tc.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceConns, 1)
	assert.Equal(t, "Dana White", *aliceConns[0].FullName)

	// Rebuild the access map from the current rows
	viewers, err := tc.investors.ListAllByCompany(tc.ctx, tc.companyID)
	require.NoError(t, err)
	conns, err := tc.connections.ListByCompany(tc.ctx, tc.companyID)
	require.NoError(t, err)

	graph := accessmap.NewEngine().Build(tc.companyID, viewers, conns)
	stored, err := tc.networkMaps.Rebuild(tc.ctx, tc.companyID, graph)
	require.NoError(t, err)

	// 2 investors, Dana and Henry, Sequoia and Vertex
	assert.Equal(t, 6, stored.Metrics.NodeCount)
	assert.Equal(t, 6, stored.Metrics.EdgeCount)

	nodeIDs := map[int64]bool{}
	for _, node := range stored.Nodes {
		assert.Greater(t, node.ID, int64(0), "rebuild assigns durable node ids")
		nodeIDs[node.ID] = true
	}
	assert.Len(t, nodeIDs, len(stored.Nodes))
	for _, edge := range stored.Edges {
		assert.True(t, nodeIDs[edge.FromNodeID], "edge endpoints are remapped to stored ids")
		assert.True(t, nodeIDs[edge.ToNodeID])
	}

	loaded, err := tc.networkMaps.GetByCompany(tc.ctx, tc.companyID)
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 6)
	assert.Len(t, loaded.Edges, 6)

	investorNodes, err := tc.networkMaps.ListInvestorNodes(tc.ctx, tc.companyID)
	require.NoError(t, err)
	assert.Len(t, investorNodes, 2)

	// Dana is the shared contact: two direct edges in, one org edge out
	var danaNode *models.NetworkNode
	for i := range loaded.Nodes {
		if loaded.Nodes[i].NodeType == models.NetworkNodeTypePerson && loaded.Nodes[i].Label == "Dana White" {
			danaNode = &loaded.Nodes[i]
			break
		}
	}
	require.NotNil(t, danaNode)

	drill, err := tc.networkMaps.GetNodeConnections(tc.ctx, tc.companyID, danaNode.ID)
	require.NoError(t, err)
	assert.Len(t, drill.Edges, 3)
	labels := make([]string, 0, len(drill.Connected))
	for _, node := range drill.Connected {
		labels = append(labels, node.Label)
	}
	assert.ElementsMatch(t, []string{"Alice Chen", "Bob Marsh", "sequoia capital"}, labels)

	// Rebuilding again replaces rather than accumulates
	stored, err = tc.networkMaps.Rebuild(tc.ctx, tc.companyID, graph)
	require.NoError(t, err)
	loaded, err = tc.networkMaps.GetByCompany(tc.ctx, tc.companyID)
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 6)
	assert.Len(t, loaded.Edges, 6)
}

// TestInteractionTimelineScenario logs a short outreach sequence against one
// investor and reads it back through every query the engines lean on.
func TestInteractionTimelineScenario(t *testing.T) {
	tc := setupTestContext(t)
	if tc.db == nil {
		t.Skip("Database not configured")
	}

	inv := tc.createInvestor(t, "Carol Diaz", "Beacon Ventures")
	entity := models.InvestorRef(inv.ID)

	introTS := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	emailTS := time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC)
	meetingTS := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

	for _, ev := range []struct {
		eventType models.InteractionEventType
		ts        time.Time
	}{
		{models.EventIntroSent, introTS},
		{models.EventEmailSent, emailTS},
		{models.EventMeetingCompleted, meetingTS},
	} {
		created, err := tc.interactions.Create(tc.ctx, tc.companyID, models.CreateInteractionRequest{
			Entity:    entity,
			EventType: ev.eventType,
			EventTS:   &ev.ts,
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActorTypeUser, created.ActorType, "actor defaults to user when the request omits it")
	}

	// Full timeline reads oldest first
	all, err := tc.interactions.ListAllForEntity(tc.ctx, tc.companyID, entity)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.EventIntroSent, all[0].EventType)
	assert.Equal(t, models.EventMeetingCompleted, all[2].EventType)

	// The paged view reads newest first
	page, totalCount, err := tc.interactions.ListForEntity(tc.ctx, tc.companyID, entity, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, totalCount)
	require.Len(t, page, 2)
	assert.Equal(t, models.EventMeetingCompleted, page[0].EventType)

	last, err := tc.interactions.LastEventTS(tc.ctx, tc.companyID, entity)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(meetingTS))

	// Since-cutoff is inclusive
	since, err := tc.interactions.ListByCompanySince(tc.ctx, tc.companyID, emailTS)
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

// TestMonthlySnapshotScenario exercises the one-row-per-month contract:
// recomputing a month overwrites it, a new month appends.
func TestMonthlySnapshotScenario(t *testing.T) {
	tc := setupTestContext(t)
	if tc.db == nil {
		t.Skip("Database not configured")
	}

	june := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)

	first, err := tc.snapshots.Upsert(tc.ctx, tc.companyID, june, models.NLIMetrics{
		TotalNodes: 8, TotalEdges: 9, OverlapDensity: 20.0, IntroVelocity: 1, CapitalAdjacency: 2, NLIScore: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", first.SnapshotMonth, "mid-month timestamps land on the month start")

	// Recompute the same month with fresher inputs
	second, err := tc.snapshots.Upsert(tc.ctx, tc.companyID, june, models.NLIMetrics{
		TotalNodes: 10, TotalEdges: 12, OverlapDensity: 28.6, IntroVelocity: 2, CapitalAdjacency: 2, NLIScore: 55,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same month updates in place")

	_, err = tc.snapshots.Upsert(tc.ctx, tc.companyID, july, models.NLIMetrics{
		TotalNodes: 11, TotalEdges: 13, OverlapDensity: 30.0, IntroVelocity: 3, CapitalAdjacency: 3, NLIScore: 60,
	})
	require.NoError(t, err)

	history, err := tc.snapshots.History(tc.ctx, tc.companyID, 12)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2025-07-01", history[0].SnapshotMonth, "newest month first")
	assert.Equal(t, 60, history[0].Metrics.NLIScore)
	assert.Equal(t, "2025-06-01", history[1].SnapshotMonth)
	assert.Equal(t, 55, history[1].Metrics.NLIScore, "june carries the recomputed metrics")
}
