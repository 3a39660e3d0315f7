package interaction

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/trellis/pkg/database"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// interactionRow is the database row for one event-log entry. The entity
// reference is stored as its (type, id, key) columns.
type interactionRow struct {
	ID         int64                          `db:"id"`
	CompanyID  int64                          `db:"company_id"`
	ActorType  models.ActorType               `db:"actor_type"`
	EntityType models.EntityKind              `db:"entity_type"`
	EntityID   *int64                         `db:"entity_id"`
	EntityKey  *string                        `db:"entity_key"`
	EventType  models.InteractionEventType    `db:"event_type"`
	EventTS    time.Time                      `db:"event_ts"`
	Meta       database.JSONB[map[string]any] `db:"meta"`
	CreatedAt  time.Time                      `db:"created_at"`
}

func toInteraction(row interactionRow) models.Interaction {
	return models.Interaction{
		ID:        row.ID,
		CompanyID: row.CompanyID,
		ActorType: row.ActorType,
		Entity: models.EntityRef{
			Kind:       row.EntityType,
			InvestorID: row.EntityID,
			Key:        row.EntityKey,
		},
		EventType: row.EventType,
		EventTS:   row.EventTS,
		Meta:      row.Meta.Data,
		CreatedAt: row.CreatedAt,
	}
}

// Repository handles the append-only interaction event log
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new interaction repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create appends one interaction to the log. EventTS defaults to now when
// the caller does not supply one.
func (r *Repository) Create(ctx context.Context, companyID int64, req models.CreateInteractionRequest) (*models.Interaction, error) {
	ctx, span := tracing.StartSpan(ctx, "interaction.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Create",
		"company_id": companyID,
		"entity":     req.Entity.String(),
		"event_type": req.EventType,
	})

	actorType := req.ActorType
	if actorType == "" {
		actorType = models.ActorTypeUser
	}
	eventTS := time.Now().UTC()
	if req.EventTS != nil {
		eventTS = req.EventTS.UTC()
	}
	meta := req.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("interactions")
	sb.Cols("company_id", "actor_type", "entity_type", "entity_id", "entity_key", "event_type", "event_ts", "meta", "created_at")
	sb.Values(companyID, actorType, req.Entity.Kind, req.Entity.InvestorID, req.Entity.Key, req.EventType, eventTS, database.JSONB[map[string]any]{Data: meta}, now)
	sb.Returning("id")

	query, args := sb.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to record interaction")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to record interaction")
	}

	log.WithFields(map[string]any{"interaction_id": id}).Info("Recorded interaction")
	return &models.Interaction{
		ID:        id,
		CompanyID: companyID,
		ActorType: actorType,
		Entity:    req.Entity,
		EventType: req.EventType,
		EventTS:   eventTS,
		Meta:      meta,
		CreatedAt: now,
	}, nil
}

// ListForEntity returns an entity's interactions newest first with the total
// count for paging
func (r *Repository) ListForEntity(ctx context.Context, companyID int64, entity models.EntityRef, page, pageSize int) ([]models.Interaction, int, error) {
	ctx, span := tracing.StartSpan(ctx, "interaction.Repository.ListForEntity")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("interactions")
	countSb.Where(entityWhere(countSb, companyID, entity)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count interactions")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count interactions")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "actor_type", "entity_type", "entity_id", "entity_key", "event_type", "event_ts", "meta", "created_at")
	sb.From("interactions")
	sb.Where(entityWhere(sb, companyID, entity)...)
	sb.OrderBy("event_ts DESC", "id DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var rows []interactionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list interactions")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list interactions")
	}

	interactions := make([]models.Interaction, len(rows))
	for i, row := range rows {
		interactions[i] = toInteraction(row)
	}
	return interactions, totalCount, nil
}

// ListAllForEntity returns an entity's full interaction history oldest first.
// The strength and behavior engines consume this, so no paging.
func (r *Repository) ListAllForEntity(ctx context.Context, companyID int64, entity models.EntityRef) ([]models.Interaction, error) {
	ctx, span := tracing.StartSpan(ctx, "interaction.Repository.ListAllForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "actor_type", "entity_type", "entity_id", "entity_key", "event_type", "event_ts", "meta", "created_at")
	sb.From("interactions")
	sb.Where(entityWhere(sb, companyID, entity)...)
	sb.OrderBy("event_ts ASC", "id ASC")

	query, args := sb.Build()
	var rows []interactionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load interaction history")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load interaction history")
	}

	interactions := make([]models.Interaction, len(rows))
	for i, row := range rows {
		interactions[i] = toInteraction(row)
	}
	return interactions, nil
}

// ListByCompanySince returns every company interaction at or after the cutoff
// oldest first. Monthly index math uses this window.
func (r *Repository) ListByCompanySince(ctx context.Context, companyID int64, since time.Time) ([]models.Interaction, error) {
	ctx, span := tracing.StartSpan(ctx, "interaction.Repository.ListByCompanySince")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "actor_type", "entity_type", "entity_id", "entity_key", "event_type", "event_ts", "meta", "created_at")
	sb.From("interactions")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.GreaterEqualThan("event_ts", since),
	)
	sb.OrderBy("event_ts ASC", "id ASC")

	query, args := sb.Build()
	var rows []interactionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load interactions since cutoff")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load interactions")
	}

	interactions := make([]models.Interaction, len(rows))
	for i, row := range rows {
		interactions[i] = toInteraction(row)
	}
	return interactions, nil
}

// LastEventTS returns the most recent event timestamp for an entity, or nil
// when the entity has no interactions
func (r *Repository) LastEventTS(ctx context.Context, companyID int64, entity models.EntityRef) (*time.Time, error) {
	ctx, span := tracing.StartSpan(ctx, "interaction.Repository.LastEventTS")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("MAX(event_ts)")
	sb.From("interactions")
	sb.Where(entityWhere(sb, companyID, entity)...)

	query, args := sb.Build()
	var last *time.Time
	if err := r.db.GetContext(ctx, &last, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read last event timestamp")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read last event timestamp")
	}
	return last, nil
}

type eventCountRow struct {
	EventType models.InteractionEventType `db:"event_type"`
	Count     int                         `db:"count"`
	LastTS    *time.Time                  `db:"last_ts"`
}

// EventCountsForPair aggregates interactions touching either entity of a pair
// in one pass, returning counts by event type and the latest event timestamp.
// The strength engine treats the pair bidirectionally, so rows for both
// entities count.
func (r *Repository) EventCountsForPair(ctx context.Context, companyID int64, from, to models.EntityRef) (map[models.InteractionEventType]int, *time.Time, error) {
	ctx, span := tracing.StartSpan(ctx, "interaction.Repository.EventCountsForPair")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("event_type", "COUNT(*) AS count", "MAX(event_ts) AS last_ts")
	sb.From("interactions")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.Or(entityExpr(sb, from), entityExpr(sb, to)),
	)
	sb.GroupBy("event_type")

	query, args := sb.Build()
	var rows []eventCountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to aggregate pair interactions")
		return nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to aggregate interactions")
	}

	counts := make(map[models.InteractionEventType]int, len(rows))
	var last *time.Time
	for _, row := range rows {
		counts[row.EventType] = row.Count
		if row.LastTS != nil && (last == nil || row.LastTS.After(*last)) {
			last = row.LastTS
		}
	}
	return counts, last, nil
}

// entityExpr builds the condition addressing one entity's rows, without the
// company scope
func entityExpr(sb *sqlbuilder.SelectBuilder, entity models.EntityRef) string {
	conds := []string{sb.Equal("entity_type", entity.Kind)}
	if entity.InvestorID != nil {
		conds = append(conds, sb.Equal("entity_id", *entity.InvestorID))
	}
	if entity.Key != nil {
		conds = append(conds, sb.Equal("entity_key", *entity.Key))
	}
	return sb.And(conds...)
}

// entityWhere builds the scope conditions addressing one entity's rows
func entityWhere(sb *sqlbuilder.SelectBuilder, companyID int64, entity models.EntityRef) []string {
	return []string{
		sb.Equal("company_id", companyID),
		entityExpr(sb, entity),
	}
}
