package issues

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/application/contributors"
	"github.com/softdeskhq/softdesk/internal/domain"
	domerrors "github.com/softdeskhq/softdesk/internal/domain/errors"
	"github.com/softdeskhq/softdesk/internal/infrastructure/persistence/memory"
)

func TestCreateDefaultsAuthorAndStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := contributors.NewRegistry(store.Contributors(), nil, zerolog.Nop())
	uc := NewCreate(store.Issues(), registry)

	actor := &domain.User{ID: domain.NewUserID(uuid.New()), Username: "rosa"}
	project := &domain.Project{
		ID:          domain.NewProjectID(uuid.New()),
		AuthorID:    actor.ID,
		Title:       "tracker",
		Description: domain.ProjectBackend,
		CreatedAt:   time.Now(),
	}
	if err := store.Projects().Create(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}

	res, err := uc.Execute(ctx, CreateInput{
		Project:  project,
		Actor:    actor,
		Title:    "crash on start",
		Priority: domain.PriorityHigh,
		Type:     domain.TypeBug,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Issue.AuthorID != actor.ID {
		t.Errorf("author defaults to actor: got %v", res.Issue.AuthorID)
	}
	if res.Issue.Status != domain.StatusTodo {
		t.Errorf("status defaults to TODO: got %v", res.Issue.Status)
	}
	if res.Issue.ProjectID != project.ID {
		t.Errorf("project: got %v", res.Issue.ProjectID)
	}
}

func TestCreateRejectsNonContributorAuthor(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := contributors.NewRegistry(store.Contributors(), nil, zerolog.Nop())
	uc := NewCreate(store.Issues(), registry)

	actor := &domain.User{ID: domain.NewUserID(uuid.New())}
	project := &domain.Project{
		ID:          domain.NewProjectID(uuid.New()),
		AuthorID:    actor.ID,
		Title:       "tracker",
		Description: domain.ProjectBackend,
		CreatedAt:   time.Now(),
	}
	if err := store.Projects().Create(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}

	outsider := domain.NewUserID(uuid.New())
	_, err := uc.Execute(ctx, CreateInput{
		Project:  project,
		Actor:    actor,
		AuthorID: outsider,
		Title:    "crash on start",
		Priority: domain.PriorityLow,
		Type:     domain.TypeTask,
	})
	if !errors.Is(err, domerrors.ErrAuthorNotContributor) {
		t.Fatalf("got %v, want ErrAuthorNotContributor", err)
	}

	list, _ := store.Issues().ListByProject(ctx, project.ID, 10, 0)
	if len(list) != 0 {
		t.Errorf("nothing should be persisted, got %d issues", len(list))
	}
}

func TestCreateAcceptsContributorAuthor(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := contributors.NewRegistry(store.Contributors(), nil, zerolog.Nop())
	uc := NewCreate(store.Issues(), registry)

	actor := &domain.User{ID: domain.NewUserID(uuid.New())}
	project := &domain.Project{
		ID:          domain.NewProjectID(uuid.New()),
		AuthorID:    actor.ID,
		Title:       "tracker",
		Description: domain.ProjectBackend,
		CreatedAt:   time.Now(),
	}
	if err := store.Projects().Create(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	member := domain.NewUserID(uuid.New())
	if _, err := registry.Add(ctx, project, member); err != nil {
		t.Fatalf("add contributor: %v", err)
	}

	res, err := uc.Execute(ctx, CreateInput{
		Project:  project,
		Actor:    actor,
		AuthorID: member,
		Title:    "polish layout",
		Priority: domain.PriorityMedium,
		Type:     domain.TypeFeature,
		Status:   domain.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Issue.AuthorID != member {
		t.Errorf("author: got %v, want %v", res.Issue.AuthorID, member)
	}
	if res.Issue.Status != domain.StatusInProgress {
		t.Errorf("status: got %v", res.Issue.Status)
	}
}
