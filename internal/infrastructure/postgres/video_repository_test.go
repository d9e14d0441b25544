package postgres

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
)

var videoRowColumns = []string{
	"id", "owner_id", "title", "description", "video_url", "thumbnail_url", "is_published", "created_at", "updated_at",
}

func newVideo() *model.Video {
	now := time.Now()
	return &model.Video{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Title:        "Test Video",
		Description:  "A test video",
		VideoURL:     "http://cdn/videos/a/clip.mp4",
		ThumbnailURL: "http://cdn/thumbnails/a/cover.jpg",
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestVideoRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		mockFn  func(mock pgxmock.PgxPoolIface, video *model.Video)
		wantErr error
	}{
		{
			name: "successful creation",
			mockFn: func(mock pgxmock.PgxPoolIface, video *model.Video) {
				mock.ExpectExec("INSERT INTO videos").
					WithArgs(
						video.ID,
						video.OwnerID,
						video.Title,
						video.Description,
						video.VideoURL,
						video.ThumbnailURL,
						true,
						pgxmock.AnyArg(),
						pgxmock.AnyArg(),
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate video error",
			mockFn: func(mock pgxmock.PgxPoolIface, video *model.Video) {
				mock.ExpectExec("INSERT INTO videos").
					WithArgs(
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
					).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: repository.ErrDuplicateVideo,
		},
		{
			name: "database error",
			mockFn: func(mock pgxmock.PgxPoolIface, video *model.Video) {
				mock.ExpectExec("INSERT INTO videos").
					WithArgs(
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
					).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("failed to create video"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer mock.Close()

			video := newVideo()
			tt.mockFn(mock, video)

			repo := NewVideoRepository(mock)
			err = repo.Create(context.Background(), video)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("Create() expected error, got nil")
					return
				}
				if !errors.Is(err, tt.wantErr) && !containsError(err, tt.wantErr) {
					t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Create() unexpected error = %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestVideoRepository_GetByID(t *testing.T) {
	want := newVideo()
	want.IsPublished = false

	tests := []struct {
		name    string
		mockFn  func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "unpublished video is returned",
			mockFn: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(videoRowColumns).AddRow(
					want.ID, want.OwnerID, want.Title, want.Description, want.VideoURL,
					want.ThumbnailURL, want.IsPublished, want.CreatedAt, want.UpdatedAt,
				)
				mock.ExpectQuery("SELECT .* FROM videos WHERE id").
					WithArgs(want.ID).
					WillReturnRows(rows)
			},
		},
		{
			name: "video not found",
			mockFn: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT .* FROM videos WHERE id").
					WithArgs(want.ID).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: repository.ErrVideoNotFound,
		},
		{
			name: "database error",
			mockFn: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT .* FROM videos WHERE id").
					WithArgs(want.ID).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("failed to get video by ID"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer mock.Close()

			tt.mockFn(mock)

			repo := NewVideoRepository(mock)
			got, err := repo.GetByID(context.Background(), want.ID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) && !containsError(err, tt.wantErr) {
					t.Errorf("GetByID() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("GetByID() unexpected error = %v", err)
			}
			if got.ID != want.ID || got.OwnerID != want.OwnerID || got.Title != want.Title {
				t.Errorf("GetByID() = %+v, want %+v", got, want)
			}
			if got.IsPublished {
				t.Error("IsPublished = true, want false")
			}
			if got.ThumbnailURL != want.ThumbnailURL || got.Description != want.Description {
				t.Errorf("GetByID() fields mismatch: %+v", got)
			}
		})
	}
}

func TestBuildListQuery(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name         string
		criteria     model.ListCriteria
		wantContains []string
		wantAbsent   []string
		wantArgs     []any
	}{
		{
			name:     "defaults",
			criteria: model.ListCriteria{Page: 1, Limit: 10, SortField: model.SortByCreatedAt, SortDirection: model.SortDesc},
			wantContains: []string{
				"WHERE is_published = TRUE",
				"ORDER BY created_at DESC, id ASC",
				"LIMIT $1 OFFSET $2",
			},
			wantAbsent: []string{"ILIKE", "owner_id ="},
			wantArgs:   []any{10, 0},
		},
		{
			name: "search and owner filter",
			criteria: model.ListCriteria{
				Page: 3, Limit: 5, Search: "50%_off", OwnerID: &ownerID,
				SortField: model.SortByTitle, SortDirection: model.SortAsc,
			},
			wantContains: []string{
				`title ILIKE $1 ESCAPE '\'`,
				"owner_id = $2",
				"ORDER BY title ASC, id ASC",
				"LIMIT $3 OFFSET $4",
			},
			wantArgs: []any{`%50\%\_off%`, ownerID, 5, 10},
		},
		{
			name:         "sort by updatedAt",
			criteria:     model.ListCriteria{Page: 2, Limit: 5, SortField: model.SortByUpdatedAt, SortDirection: model.SortDesc},
			wantContains: []string{"ORDER BY updated_at DESC, id ASC"},
			wantArgs:     []any{5, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildListQuery(tt.criteria)
			if err != nil {
				t.Fatalf("buildListQuery() unexpected error: %v", err)
			}
			for _, s := range tt.wantContains {
				if !strings.Contains(query, s) {
					t.Errorf("query %q missing %q", query, s)
				}
			}
			for _, s := range tt.wantAbsent {
				if strings.Contains(query, s) {
					t.Errorf("query %q should not contain %q", query, s)
				}
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestBuildListQuery_RejectsUnknownSort(t *testing.T) {
	_, _, err := buildListQuery(model.ListCriteria{Limit: 10, SortField: "views; DROP TABLE videos"})
	if !errors.Is(err, model.ErrInvalidSortField) {
		t.Errorf("buildListQuery() error = %v, want %v", err, model.ErrInvalidSortField)
	}
}

func TestVideoRepository_ListPublished(t *testing.T) {
	criteria := model.ListCriteria{Page: 1, Limit: 2, SortField: model.SortByCreatedAt, SortDirection: model.SortDesc}

	t.Run("returns rows in order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer mock.Close()

		a, b := newVideo(), newVideo()
		rows := pgxmock.NewRows(videoRowColumns).
			AddRow(a.ID, a.OwnerID, a.Title, a.Description, a.VideoURL, a.ThumbnailURL, a.IsPublished, a.CreatedAt, a.UpdatedAt).
			AddRow(b.ID, b.OwnerID, b.Title, b.Description, b.VideoURL, b.ThumbnailURL, b.IsPublished, b.CreatedAt, b.UpdatedAt)
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id ASC LIMIT $1 OFFSET $2")).
			WithArgs(2, 0).
			WillReturnRows(rows)

		repo := NewVideoRepository(mock)
		got, err := repo.ListPublished(context.Background(), criteria)
		if err != nil {
			t.Fatalf("ListPublished() unexpected error = %v", err)
		}
		if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
			t.Errorf("ListPublished() returned %d videos in wrong order", len(got))
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})

	t.Run("empty page", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer mock.Close()

		mock.ExpectQuery("SELECT .* FROM videos WHERE is_published").
			WithArgs(2, 0).
			WillReturnRows(pgxmock.NewRows(videoRowColumns))

		repo := NewVideoRepository(mock)
		got, err := repo.ListPublished(context.Background(), criteria)
		if err != nil {
			t.Fatalf("ListPublished() unexpected error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("ListPublished() = %v, want empty slice", got)
		}
	})

	t.Run("query error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer mock.Close()

		mock.ExpectQuery("SELECT .* FROM videos WHERE is_published").
			WithArgs(2, 0).
			WillReturnError(errors.New("connection refused"))

		repo := NewVideoRepository(mock)
		_, err = repo.ListPublished(context.Background(), criteria)
		if err == nil || !containsError(err, errors.New("failed to list videos")) {
			t.Errorf("ListPublished() error = %v", err)
		}
	})
}

func TestVideoRepository_Update(t *testing.T) {
	tests := []struct {
		name    string
		mockFn  func(mock pgxmock.PgxPoolIface, video *model.Video)
		wantErr error
	}{
		{
			name: "successful update",
			mockFn: func(mock pgxmock.PgxPoolIface, video *model.Video) {
				mock.ExpectExec("UPDATE videos SET").
					WithArgs(video.ID, video.Title, video.Description, video.ThumbnailURL, video.IsPublished, pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "video not found",
			mockFn: func(mock pgxmock.PgxPoolIface, video *model.Video) {
				mock.ExpectExec("UPDATE videos SET").
					WithArgs(video.ID, video.Title, video.Description, video.ThumbnailURL, video.IsPublished, pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: repository.ErrVideoNotFound,
		},
		{
			name: "database error",
			mockFn: func(mock pgxmock.PgxPoolIface, video *model.Video) {
				mock.ExpectExec("UPDATE videos SET").
					WithArgs(video.ID, video.Title, video.Description, video.ThumbnailURL, video.IsPublished, pgxmock.AnyArg()).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("failed to update video"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer mock.Close()

			video := newVideo()
			tt.mockFn(mock, video)

			repo := NewVideoRepository(mock)
			err = repo.Update(context.Background(), video)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) && !containsError(err, tt.wantErr) {
					t.Errorf("Update() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Update() unexpected error = %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestVideoRepository_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		result  pgconn.CommandTag
		execErr error
		wantErr error
	}{
		{name: "successful delete", result: pgxmock.NewResult("DELETE", 1)},
		{name: "already deleted", result: pgxmock.NewResult("DELETE", 0), wantErr: repository.ErrVideoNotFound},
		{name: "database error", execErr: errors.New("connection refused"), wantErr: errors.New("failed to delete video")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer mock.Close()

			exp := mock.ExpectExec("DELETE FROM videos WHERE id").WithArgs(id)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			repo := NewVideoRepository(mock)
			err = repo.Delete(context.Background(), id)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) && !containsError(err, tt.wantErr) {
					t.Errorf("Delete() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Delete() unexpected error = %v", err)
			}
		})
	}
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := Migrate(context.Background(), mock); err != nil {
		t.Fatalf("Migrate() unexpected error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// containsError checks if err's message starts with the expected error's message.
func containsError(err, expected error) bool {
	if err == nil || expected == nil {
		return false
	}
	return strings.HasPrefix(err.Error(), expected.Error())
}
