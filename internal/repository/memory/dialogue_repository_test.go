package memory

import (
	"context"
	"testing"
	"time"

	"ai-legal-assistant-be/pkg/llm"
)

func TestDialogueRepositoryRoundTrip(t *testing.T) {
	repo := NewDialogueRepository(time.Hour)
	ctx := context.Background()

	_, found, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if found {
		t.Fatal("Get() found context before any Save")
	}

	turns := []llm.Message{
		{Role: llm.RoleSystem, Content: "prompt"},
		{Role: llm.RoleUser, Content: "case"},
	}
	if err := repo.Save(ctx, 1, turns); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, found, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !found {
		t.Fatal("Get() did not find saved context")
	}
	if len(got) != 2 || got[0].Content != "prompt" || got[1].Content != "case" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestDialogueRepositoryIsolatesUsers(t *testing.T) {
	repo := NewDialogueRepository(time.Hour)
	ctx := context.Background()

	if err := repo.Save(ctx, 1, []llm.Message{{Role: llm.RoleUser, Content: "one"}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	_, found, err := repo.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if found {
		t.Error("user 2 sees user 1's context")
	}
}

func TestDialogueRepositoryClear(t *testing.T) {
	repo := NewDialogueRepository(time.Hour)
	ctx := context.Background()

	if err := repo.Save(ctx, 1, []llm.Message{{Role: llm.RoleUser, Content: "case"}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := repo.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	_, found, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if found {
		t.Error("context survived Clear()")
	}

	// Clearing an absent context is a no-op.
	if err := repo.Clear(ctx, 99); err != nil {
		t.Errorf("Clear() of missing context: %v", err)
	}
}
