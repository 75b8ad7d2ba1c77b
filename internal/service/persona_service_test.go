package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-llm/internal/domain"
	"persona-llm/internal/llm"
	"persona-llm/internal/repository"
)

type failingSaveStore struct {
	*repository.MemoryPersonaStore
	err error
}

func (s *failingSaveStore) Save(ctx context.Context, personas []domain.Persona) error {
	return s.err
}

func newTestPersonaService(store repository.PersonaStore, mock *llm.MockClient) *PersonaService {
	return NewPersonaService(store, newTestSynthesizer(mock), newTestExportService(), nil)
}

func TestPersonaService_CreatePrependsWithMonotonicCreatedAt(t *testing.T) {
	svc := newTestPersonaService(repository.NewMemoryPersonaStore(), &llm.MockClient{})
	frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	ctx := context.Background()
	first, err := svc.Create(ctx, sampleProfile(), "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, sampleProfile(), domain.AuthorUser)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.After(first.CreatedAt), "createdAt must increase even with a frozen clock")
	assert.Equal(t, domain.AuthorUser, first.Author)
	assert.False(t, first.IsPublic)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest persona goes first")
}

func TestPersonaService_CreateRejectsInvalidProfile(t *testing.T) {
	store := repository.NewMemoryPersonaStore()
	svc := newTestPersonaService(store, &llm.MockClient{})

	_, err := svc.Create(context.Background(), domain.PersonaProfile{Name: "Nameless"}, domain.AuthorUser)
	assert.ErrorIs(t, err, domain.ErrInvalidPersonaFormat)

	list, _ := store.Load(context.Background())
	assert.Empty(t, list)
}

func TestPersonaService_GetAndDelete(t *testing.T) {
	svc := newTestPersonaService(repository.NewMemoryPersonaStore(), &llm.MockClient{})
	ctx := context.Background()

	p, err := svc.Create(ctx, sampleProfile(), domain.AuthorUser)
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Profile.Name, got.Profile.Name)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrPersonaNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), domain.ErrPersonaNotFound)
}

func TestPersonaService_ReplaceProfilePreservesIdentity(t *testing.T) {
	svc := newTestPersonaService(repository.NewMemoryPersonaStore(), &llm.MockClient{})
	ctx := context.Background()

	p, err := svc.Create(ctx, sampleProfile(), domain.AuthorImported)
	require.NoError(t, err)

	evolved := sampleProfile()
	evolved.Traits = append(evolved.Traits, "Blunt")
	updated, err := svc.ReplaceProfile(ctx, p.ID, evolved)
	require.NoError(t, err)

	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.Equal(t, domain.AuthorImported, updated.Author)
	assert.Contains(t, updated.Profile.Traits, "Blunt")

	_, err = svc.ReplaceProfile(ctx, "missing", evolved)
	assert.ErrorIs(t, err, domain.ErrPersonaNotFound)
}

func TestPersonaService_SaveFailureLeavesStoreUntouched(t *testing.T) {
	seed := domain.Persona{ID: "p1", Profile: sampleProfile(), Author: domain.AuthorUser}
	store := &failingSaveStore{MemoryPersonaStore: repository.NewMemoryPersonaStore(seed), err: errors.New("disk full")}
	svc := newTestPersonaService(store, &llm.MockClient{})

	_, err := svc.Create(context.Background(), sampleProfile(), domain.AuthorUser)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	list, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPersonaService_ExportImport(t *testing.T) {
	svc := newTestPersonaService(repository.NewMemoryPersonaStore(), &llm.MockClient{})
	ctx := context.Background()

	p, err := svc.Create(ctx, sampleProfile(), domain.AuthorUser)
	require.NoError(t, err)

	data, filename, err := svc.Export(ctx, p.ID, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "the_pragmatic_stoic_secure.json", filename)

	imported, err := svc.Import(ctx, data, StaticPassword("hunter2"))
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, imported.ID)
	assert.Equal(t, domain.AuthorImported, imported.Author)
	assert.Equal(t, p.Profile.Name, imported.Profile.Name)

	_, err = svc.Import(ctx, data, StaticPassword("wrong"))
	assert.ErrorIs(t, err, domain.ErrInvalidCredentialsOrCorruptData)

	list, _ := svc.List(ctx)
	assert.Len(t, list, 2, "failed import must not add a persona")

	_, _, err = svc.Export(ctx, "missing", "")
	assert.ErrorIs(t, err, domain.ErrPersonaNotFound)
}

func TestPersonaService_SynthesizeAndCreate(t *testing.T) {
	mock := &llm.MockClient{Response: mustJSON(t, sampleProfile())}
	svc := newTestPersonaService(repository.NewMemoryPersonaStore(), mock)
	ctx := context.Background()

	p, err := svc.SynthesizeAndCreate(ctx, []domain.Answer{
		{QuestionID: "q_solitude", Value: "Need"},
		{QuestionID: VoiceQuestionPrefix + "weekend", Value: "slept. needed it."},
	})
	require.NoError(t, err)
	assert.Equal(t, "The Pragmatic Stoic", p.Profile.Name)
	require.Len(t, mock.Calls(), 1)

	_, err = svc.SynthesizeAndCreate(ctx, []domain.Answer{{QuestionID: "q_unknown", Value: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, mock.Calls(), 1, "invalid answers never reach the model")
}

func TestPersonaService_SynthesizeRejectsIncompleteProfile(t *testing.T) {
	mock := &llm.MockClient{Response: `{"name":"Half","traits":[]}`}
	store := repository.NewMemoryPersonaStore()
	svc := newTestPersonaService(store, mock)

	_, err := svc.SynthesizeAndCreate(context.Background(), []domain.Answer{{QuestionID: "q_solitude", Value: "Need"}})
	assert.ErrorIs(t, err, domain.ErrMalformedGenerationResult)

	list, _ := store.Load(context.Background())
	assert.Empty(t, list)
}

func TestPersonaService_EvolveAndSave(t *testing.T) {
	evolved := sampleProfile()
	evolved.DecisionMakingRules = append(evolved.DecisionMakingRules, "Never gamble on rumors.")

	mock := &llm.MockClient{Script: func(call int, req llm.Request) (string, error) {
		if req.SchemaName == "persona_profile" {
			return mustJSON(t, evolved), nil
		}
		return replyJSON("Buy it.", "Impulse.", 7), nil
	}}
	store := repository.NewMemoryPersonaStore()
	svc := newTestPersonaService(store, mock)
	ctx := context.Background()

	p, err := svc.Create(ctx, sampleProfile(), domain.AuthorUser)
	require.NoError(t, err)

	session := newTestOrchestrator(mock, 10).NewSession(p.ID, p.Profile)
	reply, err := session.Send(ctx, "Should I buy this stock?")
	require.NoError(t, err)

	updated, err := svc.EvolveAndSave(ctx, session, reply.ID, "I would never buy on a tip.")
	require.NoError(t, err)
	assert.Contains(t, updated.Profile.DecisionMakingRules, "Never gamble on rumors.")

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Profile, stored.Profile)

	_, err = svc.EvolveAndSave(ctx, session, "no-such-message", "x")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestPersonaService_EvolveRejectsEmptiedProfile(t *testing.T) {
	mock := &llm.MockClient{Script: func(call int, req llm.Request) (string, error) {
		if req.SchemaName == "persona_profile" {
			return `{"name":"","traits":[],"decisionMakingRules":[]}`, nil
		}
		return replyJSON("Buy it.", "Impulse.", 7), nil
	}}
	store := repository.NewMemoryPersonaStore()
	svc := newTestPersonaService(store, mock)
	ctx := context.Background()

	p, err := svc.Create(ctx, sampleProfile(), domain.AuthorUser)
	require.NoError(t, err)

	session := newTestOrchestrator(mock, 10).NewSession(p.ID, p.Profile)
	reply, err := session.Send(ctx, "Should I buy this stock?")
	require.NoError(t, err)
	before := session.Transcript()

	_, err = svc.EvolveAndSave(ctx, session, reply.ID, "Forget everything.")
	require.ErrorIs(t, err, domain.ErrMalformedGenerationResult)
	assert.NotErrorIs(t, err, domain.ErrInvalidPersonaFormat)

	assert.Equal(t, before, session.Transcript())
	assert.Equal(t, p.Profile, session.Profile())

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Profile, stored.Profile)

	data, _, err := svc.Export(ctx, p.ID, "")
	require.NoError(t, err)
	_, err = svc.Import(ctx, data, nil)
	assert.NoError(t, err, "stored persona still round-trips through export")
}

func TestPersonaService_ConcurrentCreates(t *testing.T) {
	svc := newTestPersonaService(repository.NewMemoryPersonaStore(), &llm.MockClient{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, sampleProfile(), domain.AuthorUser)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 20, "no write may be lost")
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt))
	}
}
