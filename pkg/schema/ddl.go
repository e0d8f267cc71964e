package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// generateDDL creates a CREATE TABLE statement from struct tags.
func generateDDL(model interface{}, tableName string) string {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var columns []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			columns = append(columns, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (\n%s\n);",
		tableName,
		strings.Join(columns, ",\n"))

	return ddl
}

// Source DDL methods
func (s Source) TableDDL() string {
	return generateDDL(s, "sources")
}

func (s Source) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_sources_name ON sources(name);",
	}
}

func (s Source) TableName() string {
	return "sources"
}

// ImportBatch DDL methods
func (b ImportBatch) TableDDL() string {
	return generateDDL(b, "import_batches")
}

func (b ImportBatch) IndexDDL() []string {
	return []string{
		// the one-current-batch-per-source invariant lives in the schema,
		// not only in application code
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_import_batches_current ON import_batches(source_id) WHERE is_current;",
		"CREATE INDEX IF NOT EXISTS idx_import_batches_source ON import_batches(source_id);",
		"CREATE INDEX IF NOT EXISTS idx_import_batches_fingerprint ON import_batches(fingerprint);",
	}
}

func (b ImportBatch) TableName() string {
	return "import_batches"
}

// BatchLineage DDL methods
func (l BatchLineage) TableDDL() string {
	return generateDDL(l, "batch_lineage")
}

func (l BatchLineage) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_batch_lineage_batch ON batch_lineage(batch_id);",
	}
}

func (l BatchLineage) TableName() string {
	return "batch_lineage"
}

// IntelligenceReport DDL methods
func (r IntelligenceReport) TableDDL() string {
	return generateDDL(r, "intelligence_reports")
}

func (r IntelligenceReport) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_intelligence_reports_batch ON intelligence_reports(batch_id);",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_intelligence_reports_batch_row ON intelligence_reports(batch_id, row_num);",
	}
}

func (r IntelligenceReport) TableName() string {
	return "intelligence_reports"
}

// VesselIntelligence DDL methods
func (vi VesselIntelligence) TableDDL() string {
	return generateDDL(vi, "vessel_intelligence")
}

func (vi VesselIntelligence) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_vessel_intelligence_report ON vessel_intelligence(report_id);",
		"CREATE INDEX IF NOT EXISTS idx_vessel_intelligence_batch ON vessel_intelligence(batch_id);",
		"CREATE INDEX IF NOT EXISTS idx_vessel_intelligence_vessel ON vessel_intelligence(vessel_id);",
		"CREATE INDEX IF NOT EXISTS idx_vessel_intelligence_current ON vessel_intelligence(source_id) WHERE is_current;",
	}
}

func (vi VesselIntelligence) TableName() string {
	return "vessel_intelligence"
}

// Vessel DDL methods
func (v Vessel) TableDDL() string {
	return generateDDL(v, "vessels")
}

func (v Vessel) IndexDDL() []string {
	return []string{
		// empty IMO means unknown, not shared, so uniqueness is partial
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_vessels_imo ON vessels(imo) WHERE imo <> '';",
		"CREATE INDEX IF NOT EXISTS idx_vessels_ircs_flag ON vessels(ircs, flag);",
		"CREATE INDEX IF NOT EXISTS idx_vessels_name_flag ON vessels(name, flag);",
	}
}

func (v Vessel) TableName() string {
	return "vessels"
}

// VesselSource DDL methods
func (vs VesselSource) TableDDL() string {
	return generateDDL(vs, "vessel_sources")
}

func (vs VesselSource) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_vessel_sources_vessel_source ON vessel_sources(vessel_id, source_id);",
		"CREATE INDEX IF NOT EXISTS idx_vessel_sources_source ON vessel_sources(source_id);",
	}
}

func (vs VesselSource) TableName() string {
	return "vessel_sources"
}

// ChangeLogEntry DDL methods
func (c ChangeLogEntry) TableDDL() string {
	return generateDDL(c, "change_log")
}

func (c ChangeLogEntry) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_change_log_batch ON change_log(batch_id);",
		"CREATE INDEX IF NOT EXISTS idx_change_log_vessel ON change_log(vessel_id);",
		"CREATE INDEX IF NOT EXISTS idx_change_log_risk ON change_log(risk);",
	}
}

func (c ChangeLogEntry) TableName() string {
	return "change_log"
}
