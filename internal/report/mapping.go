package report

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iapioniers/evasion-backend/internal/platform/logger"
)

// fallbackProfessorCourses backs the mapping when no file is configured or
// the configured file cannot be read.
var fallbackProfessorCourses = map[string][]string{
	"João Silva": {
		"Sistemas de Informação - Programação Web Avançada",
		"Engenharia de Software - Padrões de Projeto",
		"Análise de Dados - Introdução à Inteligência Artificial",
	},
	"Maria Oliveira": {
		"Ciência da Computação - Algoritmos e Estruturas de Dados II",
		"Sistemas de Informação - Banco de Dados Modernos",
	},
}

// ProfessorCourseMapping resolves which courses a professor owns. Unknown
// professors resolve to an empty slice, never an error.
type ProfessorCourseMapping interface {
	CoursesFor(professorName string) []string
}

type staticMapping struct {
	courses map[string][]string
}

func (m *staticMapping) CoursesFor(professorName string) []string {
	return m.courses[professorName]
}

// LoadProfessorCourseMapping reads a professor→courses YAML file, falling
// back to the built-in mapping when the path is empty, unreadable, or
// malformed.
func LoadProfessorCourseMapping(path string, log *logger.Logger) ProfessorCourseMapping {
	if path == "" {
		return &staticMapping{courses: fallbackProfessorCourses}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Professor-course mapping file unreadable, using fallback", "path", path, "error", err)
		return &staticMapping{courses: fallbackProfessorCourses}
	}
	parsed := make(map[string][]string)
	if err := yaml.Unmarshal(raw, &parsed); err != nil || len(parsed) == 0 {
		log.Warn("Professor-course mapping file invalid, using fallback", "path", path, "error", err)
		return &staticMapping{courses: fallbackProfessorCourses}
	}
	log.Info("Professor-course mapping loaded", "path", path, "professors", len(parsed))
	return &staticMapping{courses: parsed}
}
