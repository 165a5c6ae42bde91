package vector

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "transcript-rag/internal/app/errors"
)

func newMockStore(t *testing.T) (*PgVectorStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPgVectorStore(db), mock
}

func intPtr(v int) *int { return &v }

func TestPgVectorStore_CreateCollection(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta(`INSERT INTO vector_collections (name, dimension) VALUES ($1, $2)`)

	tests := []struct {
		name        string
		setupMock   func(mock sqlmock.Sqlmock)
		dimension   int
		expectedErr error
	}{
		{
			name: "created",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insert).WithArgs("podcasts", 3).WillReturnResult(sqlmock.NewResult(0, 1))
			},
			dimension: 3,
		},
		{
			name: "already exists is success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insert).WithArgs("podcasts", 3).WillReturnError(&pq.Error{Code: "23505"})
			},
			dimension: 3,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insert).WithArgs("podcasts", 3).WillReturnError(errors.New("connection refused"))
			},
			dimension:   3,
			expectedErr: apperrors.ErrStore,
		},
		{
			name:        "invalid dimension",
			setupMock:   func(mock sqlmock.Sqlmock) {},
			dimension:   0,
			expectedErr: apperrors.ErrStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setupMock(mock)

			err := store.CreateCollection(ctx, "podcasts", tt.dimension)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPgVectorStore_DeleteCollection(t *testing.T) {
	ctx := context.Background()
	del := regexp.QuoteMeta(`DELETE FROM vector_collections WHERE name = $1`)

	store, mock := newMockStore(t)
	mock.ExpectExec(del).WithArgs("podcasts").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.DeleteCollection(ctx, "podcasts"))

	mock.ExpectExec(del).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	err := store.DeleteCollection(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrCollectionNotFound)
	assert.ErrorIs(t, err, apperrors.ErrStore)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorStore_Upsert(t *testing.T) {
	ctx := context.Background()
	selectDim := regexp.QuoteMeta(`SELECT dimension FROM vector_collections WHERE name = $1`)
	insert := regexp.QuoteMeta(`INSERT INTO chunk_vectors (id, collection, embedding, metadata)`)

	records := []Record{
		{ID: "a", Vector: []float32{0.1, 0.2}, Metadata: map[string]interface{}{"episode_title": "Ep"}},
		{ID: "b", Vector: []float32{1, -0.5}},
	}

	t.Run("writes all records in one transaction", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectDim).WithArgs("podcasts").
			WillReturnRows(sqlmock.NewRows([]string{"dimension"}).AddRow(2))
		mock.ExpectExec(insert).WithArgs("a", "podcasts", "[0.1,0.2]", `{"episode_title":"Ep"}`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insert).WithArgs("b", "podcasts", "[1,-0.5]", `{}`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, store.Upsert(ctx, "podcasts", records))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing collection", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectDim).WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"dimension"}))
		mock.ExpectRollback()

		err := store.Upsert(ctx, "nope", records)
		assert.ErrorIs(t, err, apperrors.ErrCollectionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("dimension mismatch rolls back", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectDim).WithArgs("podcasts").
			WillReturnRows(sqlmock.NewRows([]string{"dimension"}).AddRow(3))
		mock.ExpectRollback()

		err := store.Upsert(ctx, "podcasts", records)
		assert.ErrorIs(t, err, apperrors.ErrStore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectDim).WithArgs("podcasts").
			WillReturnRows(sqlmock.NewRows([]string{"dimension"}).AddRow(2))
		mock.ExpectExec(insert).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := store.Upsert(ctx, "podcasts", records)
		assert.ErrorIs(t, err, apperrors.ErrStore)
		assert.Contains(t, err.Error(), "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		store, mock := newMockStore(t)
		require.NoError(t, store.Upsert(ctx, "podcasts", nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBuildQuery(t *testing.T) {
	query, args := buildQuery("podcasts", "[1,0]", 5, nil)
	assert.Contains(t, query, "WHERE collection = $2\nORDER BY embedding <=> $1::vector\nLIMIT $3")
	assert.Equal(t, []interface{}{"[1,0]", "podcasts", 5}, args)

	query, args = buildQuery("podcasts", "[1,0]", 20, &Filter{
		EpisodeTitle: "Ep",
		Speaker:      "Alice",
		StartSeconds: intPtr(60),
		EndSeconds:   intPtr(120),
	})
	assert.Contains(t, query, "metadata->>'episode_title' = $3")
	assert.Contains(t, query, "metadata->'speakers_in_chunk' @> jsonb_build_array($4::text)")
	assert.Contains(t, query, "(metadata->>'start_seconds')::int >= $5")
	assert.Contains(t, query, "(metadata->>'end_seconds')::int <= $6")
	assert.Contains(t, query, "LIMIT $7")
	assert.Equal(t, []interface{}{"[1,0]", "podcasts", "Ep", "Alice", 60, 120, 20}, args)
}

func TestPgVectorStore_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("scores are one minus distance", func(t *testing.T) {
		store, mock := newMockStore(t)
		rows := sqlmock.NewRows([]string{"id", "metadata", "distance"}).
			AddRow("a", []byte(`{"episode_title":"Ep","speakers_in_chunk":["A"]}`), 0.25).
			AddRow("b", []byte(`{}`), 0.5)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, metadata, embedding <=> $1::vector AS distance`)).
			WithArgs("[1,0]", "podcasts", "Alice", 2).
			WillReturnRows(rows)

		matches, err := store.Query(ctx, "podcasts", []float32{1, 0}, 2, &Filter{Speaker: "Alice"})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "a", matches[0].ID)
		assert.InDelta(t, 0.75, matches[0].Score, 0.0001)
		assert.Equal(t, "Ep", matches[0].Metadata["episode_title"])
		assert.InDelta(t, 0.5, matches[1].Score, 0.0001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store unreachable", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT id").WillReturnError(errors.New("connection refused"))

		_, err := store.Query(ctx, "podcasts", []float32{1, 0}, 2, nil)
		assert.ErrorIs(t, err, apperrors.ErrStore)
	})

	t.Run("empty vector", func(t *testing.T) {
		store, _ := newMockStore(t)
		_, err := store.Query(ctx, "podcasts", nil, 2, nil)
		assert.ErrorIs(t, err, apperrors.ErrStore)
	})
}

func TestEncodeVectorLiteral(t *testing.T) {
	literal, err := encodeVectorLiteral([]float32{0.5, -1, 3.25})
	require.NoError(t, err)
	assert.Equal(t, "[0.5,-1,3.25]", literal)

	_, err = encodeVectorLiteral(nil)
	assert.Error(t, err)
}
