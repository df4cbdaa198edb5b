package repos_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/repos"
	"github.com/inquiryos/inquiry-os/internal/repos/testutil"
)

func TestRunRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.NewLogger(t)
	tx := testutil.Tx(t, db)
	store := repos.NewStore(db, log)

	run := &research.Run{Query: "benefits of hydration", Status: research.RunPending}
	created, err := store.Runs.Create(context.Background(), tx, run)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	fetched, err := store.Runs.GetByID(context.Background(), tx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "benefits of hydration", fetched.Query)
}

func TestStepRepo_EnsureStepIsIdempotentPerType(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.NewLogger(t)
	tx := testutil.Tx(t, db)
	store := repos.NewStore(db, log)

	run := &research.Run{Query: "q", Status: research.RunPending}
	run, err := store.Runs.Create(context.Background(), tx, run)
	require.NoError(t, err)

	first, err := store.Steps.EnsureStep(context.Background(), tx, run.ID, research.StepSearcher, 1)
	require.NoError(t, err)

	second, err := store.Steps.EnsureStep(context.Background(), tx, run.ID, research.StepSearcher, 1)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID, "EnsureStep must return the existing row rather than creating a duplicate")
}

func TestAnswerRepo_UpsertReplacesExistingAnswer(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.NewLogger(t)
	tx := testutil.Tx(t, db)
	store := repos.NewStore(db, log)

	run := &research.Run{Query: "q", Status: research.RunPending}
	run, err := store.Runs.Create(context.Background(), tx, run)
	require.NoError(t, err)

	_, err = store.Answers.Upsert(context.Background(), tx, &research.Answer{RunID: run.ID, Content: "first draft"})
	require.NoError(t, err)

	_, err = store.Answers.Upsert(context.Background(), tx, &research.Answer{RunID: run.ID, Content: "revised answer"})
	require.NoError(t, err)

	answer, err := store.Answers.GetByRun(context.Background(), tx, run.ID)
	require.NoError(t, err)
	require.Equal(t, "revised answer", answer.Content)
}

func TestSourceRepo_ListByRunReturnsInsertionOrder(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.NewLogger(t)
	tx := testutil.Tx(t, db)
	store := repos.NewStore(db, log)

	run := &research.Run{Query: "q", Status: research.RunPending}
	run, err := store.Runs.Create(context.Background(), tx, run)
	require.NoError(t, err)

	sources := []*research.Source{
		{RunID: run.ID, URL: "https://example.com/a", Title: "A"},
		{RunID: run.ID, URL: "https://example.com/b", Title: "B"},
	}
	_, err = store.Sources.Create(context.Background(), tx, sources)
	require.NoError(t, err)

	listed, err := store.Sources.ListByRun(context.Background(), tx, run.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "A", listed[0].Title)
	require.Equal(t, "B", listed[1].Title)
}
