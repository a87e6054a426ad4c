package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iapioniers/evasion-backend/internal/platform/logger"
)

func TestMappingFallbackWhenUnconfigured(t *testing.T) {
	m := LoadProfessorCourseMapping("", logger.NewNop())
	if got := m.CoursesFor("João Silva"); len(got) != 3 {
		t.Fatalf("fallback courses for João Silva = %d, want 3", len(got))
	}
	if got := m.CoursesFor("Nobody"); len(got) != 0 {
		t.Fatalf("unknown professor should resolve to empty slice, got %v", got)
	}
}

func TestMappingFallbackWhenFileMissing(t *testing.T) {
	m := LoadProfessorCourseMapping(filepath.Join(t.TempDir(), "missing.yaml"), logger.NewNop())
	if got := m.CoursesFor("Maria Oliveira"); len(got) != 2 {
		t.Fatalf("fallback courses for Maria Oliveira = %d, want 2", len(got))
	}
}

func TestMappingFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	content := "Carlos Souza:\n  - Curso A\n  - Curso B\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write mapping file: %v", err)
	}
	m := LoadProfessorCourseMapping(path, logger.NewNop())
	got := m.CoursesFor("Carlos Souza")
	if len(got) != 2 || got[0] != "Curso A" || got[1] != "Curso B" {
		t.Fatalf("courses for Carlos Souza = %v", got)
	}
	if fallback := m.CoursesFor("João Silva"); len(fallback) != 0 {
		t.Fatalf("file mapping should fully replace the fallback, got %v", fallback)
	}
}

func TestMappingFallbackWhenFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	if err := os.WriteFile(path, []byte("not: [valid: yaml"), 0o600); err != nil {
		t.Fatalf("write mapping file: %v", err)
	}
	m := LoadProfessorCourseMapping(path, logger.NewNop())
	if got := m.CoursesFor("João Silva"); len(got) != 3 {
		t.Fatalf("invalid file must fall back, got %v", got)
	}
}
