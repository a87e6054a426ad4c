package app

import (
	"github.com/iapioniers/evasion-backend/internal/platform/envutil"
)

type Config struct {
	Port           string
	SnapshotDBPath string
	MappingFile    string
}

func LoadConfig() Config {
	return Config{
		Port:           envutil.String("PORT", "8080"),
		SnapshotDBPath: envutil.String("SNAPSHOT_DB_PATH", "local_data/snapshots.db"),
		MappingFile:    envutil.String("PROFESSOR_COURSE_MAPPING_FILE", ""),
	}
}
