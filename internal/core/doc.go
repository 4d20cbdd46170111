// Package core holds the import pipeline and report export for hygieneops,
// independent of any transport layer.
//
// # Catalogs
//
// Each importable entity registers a [Catalog] at init time: its destination
// fields, the headers that must never be imported, and how a row of coerced
// values becomes a [DestinationRecord].
//
//	core.Register(core.Catalog{
//	    Entity: core.EntityRuns,
//	    Fields: []core.FieldDescriptor{
//	        {Name: "service_id", Label: "Service ID", Required: true, Type: core.FieldText},
//	        {Name: "completed", Label: "Completed", Type: core.FieldBool},
//	    },
//	    Build: core.BuildRunRecord,
//	})
//
// # Import flow
//
// A [Session] moves through explicit states:
//
//  1. SelectFile stages a CSV, XLSX, or XLS file.
//  2. Parse decodes it into a [SourceTable] with [ReadTable].
//  3. Suggest proposes a [ColumnMapping], semantically when a
//     [SemanticMapper] is configured and by name otherwise.
//  4. SetMapping edits the mapping; every change is re-validated.
//  5. Import runs the [Executor], which coerces values, skips rows missing
//     required fields, and hands the rest to a [DataSink] in one batch.
//
// [Service] tracks sessions by id, bounds concurrent imports with an
// [ImportLimiter], and expires idle sessions.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code for support reference:
//
//   - DB001-DB007: database errors
//   - VAL001-VAL005: mapping and row validation
//   - FILE001-FILE006: file size, format, and decoding
//   - IMP001-IMP006: import session errors
//
// # Export
//
// [WriteReportsCSV] renders service reports for download under
// [ReportFileName].
package core
