// Package sheets fetches raw applicant rows from the external spreadsheet
// source. The core treats the source as a black box; schema drift in field
// names is handled by the ingest stage's normalization, not here.
package sheets
