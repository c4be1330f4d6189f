//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/usecase"
)

func TestPackUseCase(t *testing.T) {
	ctx := context.Background()
	packs := NewMockPackRepo()
	uc := usecase.NewPackUseCase(packs, testLogger())

	t.Run("should create a pack with installments", func(t *testing.T) {
		p, err := uc.Create(ctx, usecase.PackInput{
			ID: "premium", Name: " Premium ", Price: 150000,
			Installment1: i64(100000), Installment2: i64(50000),
			Features: []string{" Coaching ", "", "Relecture"}, SortOrder: 4,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if p.Name != "Premium" || !p.HasInstallments() || len(p.Features) != 2 {
			t.Fatalf("unexpected pack %+v", p)
		}
	})

	t.Run("should reject installments that do not add up", func(t *testing.T) {
		_, err := uc.Create(ctx, usecase.PackInput{Name: "Bad", Price: 100000, Installment1: i64(60000), Installment2: i64(30000)})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument, got %v", err)
		}
	})

	t.Run("should generate an id", func(t *testing.T) {
		p, err := uc.Create(ctx, usecase.PackInput{Name: "Essentiel", Price: 50000, SortOrder: 1})
		if err != nil || p.ID == "" {
			t.Fatalf("create: %v", err)
		}
	})

	t.Run("should validate updates and hide inactive packs", func(t *testing.T) {
		if _, err := uc.Update(ctx, "premium", usecase.PackPatch{Price: i64(160000)}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected price change to break installments, got %v", err)
		}
		p, err := uc.Update(ctx, "premium", usecase.PackPatch{Price: i64(160000), ReplaceInstallments: true})
		if err != nil || p.HasInstallments() {
			t.Fatalf("expected installments cleared, got %v", err)
		}
		if _, err := uc.Update(ctx, "premium", usecase.PackPatch{IsActive: ptr(false)}); err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		list, _ := uc.ListActive(ctx)
		if len(list) != 1 || list[0].Name != "Essentiel" {
			t.Fatalf("expected only the active pack, got %d", len(list))
		}
		if _, err := uc.Get(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestCalendarUseCase(t *testing.T) {
	ctx := context.Background()
	events := NewMockEventRepo()
	uc := usecase.NewCalendarUseCase(events, NewMockTxManager(), testLogger())
	soon := time.Now().Add(24 * time.Hour)

	ev, err := uc.Create(ctx, "u1", usecase.EventInput{Title: " Soutenance ", StartsAt: soon})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.Type != model.DefaultEventType || ev.Title != "Soutenance" {
		t.Fatalf("unexpected event %+v", ev)
	}
	_, _ = uc.Create(ctx, "u1", usecase.EventInput{Title: "Passé", StartsAt: time.Now().Add(-time.Hour)})

	if _, err := uc.Create(ctx, "u1", usecase.EventInput{Title: "x", StartsAt: soon, EndsAt: ptr(soon.Add(-time.Minute))}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected end before start to be rejected, got %v", err)
	}

	next, _ := uc.Next(ctx, "u1")
	if len(next) != 1 || next[0].ID != ev.ID {
		t.Fatalf("expected only the upcoming event, got %d", len(next))
	}

	// another user's event is invisible
	if _, err := uc.Toggle(ctx, "u2", ev.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	done, err := uc.Toggle(ctx, "u1", ev.ID)
	if err != nil || !done.IsDone {
		t.Fatalf("toggle: %v", err)
	}
	if next, _ := uc.Next(ctx, "u1"); len(next) != 0 {
		t.Fatalf("expected done events out of the upcoming list")
	}
	if err := uc.Delete(ctx, "u2", ev.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := uc.Delete(ctx, "u1", ev.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if all, _ := uc.List(ctx, "u1"); len(all) != 1 {
		t.Fatalf("expected one event left, got %d", len(all))
	}
}

func TestResourceUseCase(t *testing.T) {
	ctx := context.Background()
	files := NewMockStorage()
	uc := usecase.NewResourceUseCase(NewMockResourceRepo(), files, testLogger())
	admin := usecase.Actor{ID: "a1", Role: model.RoleAdmin}

	link, err := uc.Create(ctx, admin, usecase.ResourceInput{Title: "Normes APA", Category: "methodo", Link: "https://apastyle.apa.org"})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	if link.FileType != model.FileTypeLink || link.Category != "METHODO" {
		t.Fatalf("unexpected link %+v", link)
	}

	file, err := uc.Create(ctx, admin, usecase.ResourceInput{
		Title: "Modèle", File: &usecase.FileUpload{Name: "modele.docx", Body: strings.NewReader("docx")},
	})
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	if file.FileType != model.FileTypeDOCX || !strings.HasPrefix(file.StorageKey, "resources/") {
		t.Fatalf("unexpected file %+v", file)
	}

	for name, in := range map[string]usecase.ResourceInput{
		"neither":    {Title: "x"},
		"both":       {Title: "x", Link: "https://a.b", File: &usecase.FileUpload{Name: "a", Body: strings.NewReader("")}},
		"bad scheme": {Title: "x", Link: "ftp://a.b"},
		"no title":   {Link: "https://a.b"},
	} {
		if _, err := uc.Create(ctx, admin, in); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("%s: expected invalid argument, got %v", name, err)
		}
	}

	if list, _ := uc.List(ctx, "methodo"); len(list) != 1 {
		t.Fatalf("expected category filter, got %d", len(list))
	}
	if err := uc.Delete(ctx, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := files.Objects[file.StorageKey]; ok {
		t.Fatalf("expected stored object removed")
	}
	if err := uc.Delete(ctx, file.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCorrectionUseCase(t *testing.T) {
	ctx := context.Background()
	ai := &MockAI{Reply: "  Texte corrigé.  "}
	uc := usecase.NewCorrectionUseCase(ai, wordCounter{}, usecase.CorrectionConfig{Model: "gpt-4o-mini", Temperature: 0.3, MaxInputTokens: 5}, testLogger())

	res, err := uc.Correct(ctx, "u1", " Texte a corigé ")
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if res.Corrected != "Texte corrigé." || res.Original != "Texte a corigé" || res.InputTokens != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	sent := ai.Messages[0]
	if len(sent) != 2 || sent[0].Role != "system" || sent[1].Content != "Texte a corigé" {
		t.Fatalf("unexpected prompt %+v", sent)
	}
	if ai.Opts[0].Temperature != 0.3 {
		t.Fatalf("expected configured temperature")
	}

	if _, err := uc.Correct(ctx, "u1", "un deux trois quatre cinq six"); !errors.Is(err, domain.ErrTextTooLong) {
		t.Fatalf("expected text too long, got %v", err)
	}
	if len(ai.Messages) != 1 {
		t.Fatalf("expected no provider call for rejected text")
	}
	if _, err := uc.Correct(ctx, "u1", "   "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	ai.Err = errors.New("provider down")
	if _, err := uc.Correct(ctx, "u1", "bonjour"); err == nil {
		t.Fatalf("expected provider error")
	}
}
