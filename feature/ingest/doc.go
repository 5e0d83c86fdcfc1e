// Package ingest reconciles customers and orders from the upstream commerce
// platform into the per-store database.
//
// Two ingestion paths feed the same upsert contract:
//
//   - The reconciliation engine pages through the upstream API on demand and
//     batch-upserts complete collections, customers strictly before orders so
//     order rows can link to customer local ids.
//   - The event applier handles single-record webhook deliveries using the
//     identical transform and upsert, so a record arriving via either path
//     ends up byte-identical in the store.
//
// Every row is keyed by (external_id, store_id); re-applying any record is a
// no-op beyond refreshing its mutable fields, which is what makes overlap
// between the two paths and re-runs after partial failures safe. Rows are
// never deleted here.
package ingest
