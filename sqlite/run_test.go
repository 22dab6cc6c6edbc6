package sqlite_test

import (
	"context"
	"math"
	"testing"

	"github.com/fwojciec/distill"
	"github.com/fwojciec/distill/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() distill.Result {
	user := distill.NewRecord(5)
	user.Set("email", distill.StringValue("abc@abc.com"))
	user.Set("age", distill.IntegerValue(42))
	user.Set("score", distill.FloatValue(178.55))
	user.Set("active", distill.BooleanValue(false))
	user.Set("phone", distill.Unavailable())

	second := distill.NewRecord(5)
	second.Set("email", distill.StringValue(""))
	second.Set("age", distill.IntegerValue(-7))
	second.Set("score", distill.FloatValue(1e-300))
	second.Set("active", distill.BooleanValue(true))
	second.Set("phone", distill.StringValue("555"))

	return distill.Result{
		{ObjectID: "user-info", Records: []*distill.Record{user, second}},
		{ObjectID: "empty", Records: []*distill.Record{}},
		{ObjectID: "bare", Records: []*distill.Record{distill.NewRecord(0)}},
	}
}

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and timestamp", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		run := &distill.Run{SourceURL: "https://example.com", DocumentHash: "abc", Result: sampleResult()}

		err := svc.CreateRun(context.Background(), run)

		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.False(t, run.CreatedAt.IsZero())
	})

	t.Run("rejects invalid runs", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		err := svc.CreateRun(context.Background(), &distill.Run{Result: distill.Result{nil}})

		require.Error(t, err)
		assert.Equal(t, distill.EINVALID, distill.ErrorCode(err))
	})
}

func TestRunService_FindRunByID(t *testing.T) {
	t.Parallel()

	t.Run("reconstructs the exact result", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		run := &distill.Run{SourceURL: "https://example.com", DocumentHash: "abc", Result: sampleResult()}
		require.NoError(t, svc.CreateRun(ctx, run))

		found, err := svc.FindRunByID(ctx, run.ID)

		require.NoError(t, err)
		assert.Equal(t, run.ID, found.ID)
		assert.Equal(t, "https://example.com", found.SourceURL)
		assert.Equal(t, "abc", found.DocumentHash)
		assert.True(t, run.CreatedAt.Equal(found.CreatedAt))
		assert.Equal(t, sampleResult(), found.Result)
		assert.Equal(t, []string{"email", "age", "score", "active", "phone"}, found.Result[0].Records[0].Keys())
	})

	t.Run("keeps non-finite floats", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		rec := distill.NewRecord(2)
		rec.Set("nan", distill.FloatValue(math.NaN()))
		rec.Set("inf", distill.FloatValue(math.Inf(-1)))
		run := &distill.Run{Result: distill.Result{{ObjectID: "o", Records: []*distill.Record{rec}}}}
		require.NoError(t, svc.CreateRun(ctx, run))

		found, err := svc.FindRunByID(ctx, run.ID)

		require.NoError(t, err)
		got := found.Result[0].Records[0]
		nan, _ := got.Get("nan")
		f, ok := nan.Float()
		require.True(t, ok)
		assert.True(t, math.IsNaN(f))
		inf, _ := got.Get("inf")
		f, ok = inf.Float()
		require.True(t, ok)
		assert.True(t, math.IsInf(f, -1))
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		_, err := svc.FindRunByID(context.Background(), "nonexistent-id")

		require.Error(t, err)
		assert.Equal(t, distill.ENOTFOUND, distill.ErrorCode(err))
	})
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	t.Run("returns runs newest first without results", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		var ids []string
		for _, u := range []string{"https://a", "https://b", "https://c"} {
			run := &distill.Run{SourceURL: u, Result: sampleResult()}
			require.NoError(t, svc.CreateRun(ctx, run))
			ids = append(ids, run.ID)
		}

		runs, err := svc.FindRuns(ctx, distill.RunFilter{})

		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, ids[2], runs[0].ID)
		assert.Equal(t, ids[0], runs[2].ID)
		for _, r := range runs {
			assert.Nil(t, r.Result)
		}
	})

	t.Run("filters by source URL", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, svc.CreateRun(ctx, &distill.Run{SourceURL: "https://a"}))
		require.NoError(t, svc.CreateRun(ctx, &distill.Run{SourceURL: "https://b"}))

		u := "https://b"
		runs, err := svc.FindRuns(ctx, distill.RunFilter{SourceURL: &u})

		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "https://b", runs[0].SourceURL)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		for range 5 {
			require.NoError(t, svc.CreateRun(ctx, &distill.Run{SourceURL: "https://a"}))
		}

		page, err := svc.FindRuns(ctx, distill.RunFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := svc.FindRuns(ctx, distill.RunFilter{Offset: 3})
		require.NoError(t, err)
		assert.Len(t, rest, 2)
	})
}

func TestRunService_DeleteRun(t *testing.T) {
	t.Parallel()

	t.Run("removes the run and its values", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()
		run := &distill.Run{Result: sampleResult()}
		require.NoError(t, svc.CreateRun(ctx, run))

		require.NoError(t, svc.DeleteRun(ctx, run.ID))

		_, err := svc.FindRunByID(ctx, run.ID)
		assert.Equal(t, distill.ENOTFOUND, distill.ErrorCode(err))
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM run_values").Scan(&n))
		assert.Zero(t, n)
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM run_objects").Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		err := svc.DeleteRun(context.Background(), "nonexistent-id")

		require.Error(t, err)
		assert.Equal(t, distill.ENOTFOUND, distill.ErrorCode(err))
	})
}
