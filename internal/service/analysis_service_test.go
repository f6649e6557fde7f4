package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-legal-assistant-be/internal/constant"
	"ai-legal-assistant-be/internal/entity"
	"ai-legal-assistant-be/internal/repository/memory"
	"ai-legal-assistant-be/pkg/llm"
)

func strPtr(s string) *string { return &s }

func stageSession(state entity.ConversationState) *entity.Session {
	return &entity.Session{
		UserId:            100,
		Email:             strPtr("user@ehu.lt"),
		ConversationState: state,
		CaseText:          strPtr("the case"),
		IssuesText:        strPtr("the issues"),
		AspectsText:       strPtr("the aspects"),
	}
}

func newAnalysisFixture(streams ...llm.Stream) (IAnalysisService, *memory.DialogueRepository, *scriptedProvider, *recordingPublisher) {
	repo := memory.NewDialogueRepository(time.Hour)
	provider := &scriptedProvider{streams: streams}
	publisher := &recordingPublisher{}
	svc := NewAnalysisService(repo, provider, publisher, nopLogger{})
	return svc, repo, provider, publisher
}

func TestRunStageSeedsStage1Dialogue(t *testing.T) {
	svc, _, provider, _ := newAnalysisFixture(llm.NewSliceStream([]string{"answer"}))

	answer, err := svc.RunStage(context.Background(), stageSession(entity.StateStage1), "my issues")
	if err != nil {
		t.Fatalf("RunStage() error: %v", err)
	}
	if answer != "answer" {
		t.Errorf("answer = %q", answer)
	}

	if len(provider.calls) != 1 {
		t.Fatalf("provider called %d times", len(provider.calls))
	}
	history := provider.calls[0]
	want := []llm.Message{
		{Role: llm.RoleSystem, Content: constant.SystemPromptStage1},
		{Role: llm.RoleUser, Content: "the case"},
		{Role: llm.RoleUser, Content: "my issues"},
	}
	if len(history) != len(want) {
		t.Fatalf("history has %d turns, want %d: %+v", len(history), len(want), history)
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, history[i], want[i])
		}
	}
}

func TestRunStageSeedsLaterStagesWithAllMaterials(t *testing.T) {
	tests := []struct {
		state  entity.ConversationState
		prompt string
		turns  int
	}{
		{entity.StateStage2, constant.SystemPromptStage2, 4}, // system, case, issues, input
		{entity.StateStage3, constant.SystemPromptStage3, 5}, // system, case, issues, aspects, input
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			svc, _, provider, _ := newAnalysisFixture(llm.NewSliceStream([]string{"ok"}))

			if _, err := svc.RunStage(context.Background(), stageSession(tt.state), "go"); err != nil {
				t.Fatalf("RunStage() error: %v", err)
			}

			history := provider.calls[0]
			if len(history) != tt.turns {
				t.Fatalf("history has %d turns, want %d", len(history), tt.turns)
			}
			if history[0].Role != llm.RoleSystem || history[0].Content != tt.prompt {
				t.Errorf("system turn = %+v", history[0])
			}
			if last := history[len(history)-1]; last.Role != llm.RoleUser || last.Content != "go" {
				t.Errorf("last turn = %+v", last)
			}
		})
	}
}

func TestRunStageCommitsUserAndAssistantTogether(t *testing.T) {
	svc, repo, _, _ := newAnalysisFixture(
		llm.NewSliceStream([]string{"first ", "answer"}),
		llm.NewSliceStream([]string{"second answer"}),
	)
	sess := stageSession(entity.StateStage1)

	if _, err := svc.RunStage(context.Background(), sess, "q1"); err != nil {
		t.Fatalf("first RunStage() error: %v", err)
	}

	turns, found, err := repo.Get(context.Background(), sess.UserId)
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}
	// seed (system + case) + user + assistant
	if len(turns) != 4 {
		t.Fatalf("stored %d turns, want 4: %+v", len(turns), turns)
	}
	if turns[2].Role != llm.RoleUser || turns[2].Content != "q1" {
		t.Errorf("user turn = %+v", turns[2])
	}
	if turns[3].Role != llm.RoleAssistant || turns[3].Content != "first answer" {
		t.Errorf("assistant turn = %+v", turns[3])
	}

	// The second exchange extends the same context instead of reseeding.
	if _, err := svc.RunStage(context.Background(), sess, "q2"); err != nil {
		t.Fatalf("second RunStage() error: %v", err)
	}
	turns, _, _ = repo.Get(context.Background(), sess.UserId)
	if len(turns) != 6 {
		t.Fatalf("stored %d turns after second exchange, want 6", len(turns))
	}
}

func TestRunStageFailureLeavesDialogueUntouched(t *testing.T) {
	boom := errors.New("stream broke")
	svc, repo, _, publisher := newAnalysisFixture(llm.NewErrorStream([]string{"partial"}, boom))
	sess := stageSession(entity.StateStage1)

	if _, err := svc.RunStage(context.Background(), sess, "q"); !errors.Is(err, boom) {
		t.Fatalf("RunStage() error = %v, want %v", err, boom)
	}

	// No partial turns committed, nothing audited.
	if _, found, _ := repo.Get(context.Background(), sess.UserId); found {
		t.Error("failed exchange left dialogue context behind")
	}
	if len(publisher.published) != 0 {
		t.Error("failed exchange was audited")
	}
}

func TestRunStageEmptyResponseIsFailure(t *testing.T) {
	svc, repo, _, _ := newAnalysisFixture(llm.NewSliceStream([]string{"", "  ", "\n"}))
	sess := stageSession(entity.StateStage1)

	if _, err := svc.RunStage(context.Background(), sess, "q"); !errors.Is(err, ErrEmptyModelResponse) {
		t.Fatalf("RunStage() error = %v, want ErrEmptyModelResponse", err)
	}
	if _, found, _ := repo.Get(context.Background(), sess.UserId); found {
		t.Error("empty exchange left dialogue context behind")
	}
}

func TestRunStagePublishesAudit(t *testing.T) {
	svc, _, _, publisher := newAnalysisFixture(llm.NewSliceStream([]string{"answer"}))
	sess := stageSession(entity.StateStage2)

	if _, err := svc.RunStage(context.Background(), sess, "input"); err != nil {
		t.Fatalf("RunStage() error: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d audit messages, want 1", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.UserID != sess.UserId || msg.Stage != 2 {
		t.Errorf("audit message = %+v", msg)
	}
	if msg.InputLength != len("input") || msg.OutputLength != len("answer") {
		t.Errorf("audit lengths = %+v", msg)
	}
}

func TestRunStageAuditFailureDoesNotFailExchange(t *testing.T) {
	repo := memory.NewDialogueRepository(time.Hour)
	provider := &scriptedProvider{streams: []llm.Stream{llm.NewSliceStream([]string{"answer"})}}
	publisher := &recordingPublisher{fail: errors.New("bus down")}
	svc := NewAnalysisService(repo, provider, publisher, nopLogger{})

	answer, err := svc.RunStage(context.Background(), stageSession(entity.StateStage1), "q")
	if err != nil {
		t.Fatalf("RunStage() error: %v", err)
	}
	if answer != "answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestRunStageRejectsNonStageState(t *testing.T) {
	svc, _, provider, _ := newAnalysisFixture()

	if _, err := svc.RunStage(context.Background(), stageSession(entity.StateAwaitingCase), "q"); err == nil {
		t.Fatal("expected error for non-stage state")
	}
	if len(provider.calls) != 0 {
		t.Error("model called for non-stage state")
	}
}

func TestResetDialogue(t *testing.T) {
	svc, repo, _, _ := newAnalysisFixture(llm.NewSliceStream([]string{"answer"}))
	sess := stageSession(entity.StateStage1)

	if _, err := svc.RunStage(context.Background(), sess, "q"); err != nil {
		t.Fatalf("RunStage() error: %v", err)
	}
	if err := svc.ResetDialogue(context.Background(), sess.UserId); err != nil {
		t.Fatalf("ResetDialogue() error: %v", err)
	}
	if _, found, _ := repo.Get(context.Background(), sess.UserId); found {
		t.Error("dialogue context survived reset")
	}
}
