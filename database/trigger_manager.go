package database

import (
	_ "embed"
	"strings"

	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/utils"
)

// The trigger scripts are embedded so they install regardless of the
// process working directory (the test binaries run from their package
// directories).
var (
	//go:embed migrations/triggers.sql
	mysqlTriggerSQL string

	//go:embed migrations/triggers_sqlite.sql
	sqliteTriggerSQL string
)

// ExecuteTriggers installs the points-ledger trigger for the connected
// dialect. Statements are separated with MySQL-style DELIMITER // blocks in
// both scripts so one parser serves them.
func ExecuteTriggers(db *gorm.DB) error {
	script := mysqlTriggerSQL
	if db.Dialector.Name() == "sqlite" {
		script = sqliteTriggerSQL
	}

	for _, block := range strings.Split(script, "DELIMITER") {
		if strings.TrimSpace(block) == "" {
			continue
		}

		for _, stmt := range strings.Split(block, "//") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" || stmt == ";" {
				continue
			}

			if err := db.Exec(stmt).Error; err != nil {
				utils.ErrorLogger.Printf("Error executing trigger: %v\nStatement: %s", err, stmt)
				continue
			}
		}
	}

	if db.Dialector.Name() == "mysql" {
		verifyTriggers(db)
	}

	return nil
}

// verifyTriggers logs what information_schema reports, as a sanity check
// after deploys.
func verifyTriggers(db *gorm.DB) {
	var triggers []struct {
		TriggerName string
		EventType   string
		TableName   string
		Timing      string
	}

	db.Raw(`
        SELECT
            TRIGGER_NAME as trigger_name,
            EVENT_MANIPULATION as event_type,
            EVENT_OBJECT_TABLE as table_name,
            ACTION_TIMING as timing
        FROM information_schema.triggers
        WHERE TRIGGER_SCHEMA = DATABASE()
    `).Scan(&triggers)

	for _, t := range triggers {
		utils.InfoLogger.Printf("Trigger verified: %s (%s %s on %s)",
			t.TriggerName, t.Timing, t.EventType, t.TableName)
	}
}
