package contributors

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/domain"
	"github.com/softdeskhq/softdesk/internal/infrastructure/persistence/memory"
)

func newProject(t *testing.T, store *memory.Store, authorID domain.UserID) *domain.Project {
	t.Helper()
	project := &domain.Project{
		ID:          domain.NewProjectID(uuid.New()),
		AuthorID:    authorID,
		Title:       "tracker",
		Description: domain.ProjectBackend,
		CreatedAt:   time.Now(),
	}
	if err := store.Projects().Create(context.Background(), project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func TestAuthorIsAlwaysContributor(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := NewRegistry(store.Contributors(), nil, zerolog.Nop())

	authorID := domain.NewUserID(uuid.New())
	project := newProject(t, store, authorID)

	ok, err := registry.IsContributor(ctx, authorID, project)
	if err != nil {
		t.Fatalf("IsContributor: %v", err)
	}
	if !ok {
		t.Error("author should be a contributor after project creation")
	}

	members, err := registry.ListMembers(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].UserID != authorID {
		t.Errorf("want one row for the author, got %d", len(members))
	}
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := NewRegistry(store.Contributors(), nil, zerolog.Nop())

	project := newProject(t, store, domain.NewUserID(uuid.New()))
	userID := domain.NewUserID(uuid.New())

	res, err := registry.Add(ctx, project, userID)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if res != Added {
		t.Errorf("first add: got %v, want Added", res)
	}

	res, err = registry.Add(ctx, project, userID)
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if res != AlreadyContributor {
		t.Errorf("second add: got %v, want AlreadyContributor", res)
	}

	members, _ := registry.ListMembers(ctx, project.ID)
	if len(members) != 2 {
		t.Errorf("want 2 rows (author + user), got %d", len(members))
	}
}

func TestAddAuthorReportsAlreadyContributor(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := NewRegistry(store.Contributors(), nil, zerolog.Nop())

	authorID := domain.NewUserID(uuid.New())
	project := newProject(t, store, authorID)

	res, err := registry.Add(ctx, project, authorID)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if res != AlreadyContributor {
		t.Errorf("got %v, want AlreadyContributor", res)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := NewRegistry(store.Contributors(), nil, zerolog.Nop())

	project := newProject(t, store, domain.NewUserID(uuid.New()))
	userID := domain.NewUserID(uuid.New())

	if _, err := registry.Add(ctx, project, userID); err != nil {
		t.Fatalf("Add: %v", err)
	}

	res, err := registry.Remove(ctx, project, userID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if res != Removed {
		t.Errorf("got %v, want Removed", res)
	}

	ok, _ := registry.IsContributor(ctx, userID, project)
	if ok {
		t.Error("removed user should no longer be a contributor")
	}

	res, err = registry.Remove(ctx, project, userID)
	if err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if res != NotContributor {
		t.Errorf("second remove: got %v, want NotContributor", res)
	}
}

func TestAuthorMembershipSurvivesRowRemoval(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := NewRegistry(store.Contributors(), nil, zerolog.Nop())

	authorID := domain.NewUserID(uuid.New())
	project := newProject(t, store, authorID)

	res, err := registry.Remove(ctx, project, authorID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if res != Removed {
		t.Errorf("got %v, want Removed", res)
	}

	ok, err := registry.IsContributor(ctx, authorID, project)
	if err != nil {
		t.Fatalf("IsContributor: %v", err)
	}
	if !ok {
		t.Error("author membership should survive removal of the row")
	}
}

func TestIsContributorNilProject(t *testing.T) {
	registry := NewRegistry(memory.New().Contributors(), nil, zerolog.Nop())
	ok, err := registry.IsContributor(context.Background(), domain.NewUserID(uuid.New()), nil)
	if err != nil {
		t.Fatalf("IsContributor: %v", err)
	}
	if ok {
		t.Error("nil project should never have contributors")
	}
}
