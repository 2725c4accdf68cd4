// Package exporter writes analytics results to report files.
//
// CSVWriter produces one CSV file per table (volatility ranking, forecast,
// correlation) with a UTF-8 BOM so the files open cleanly in Excel.
// XLSXWriter bundles the same tables into a single workbook, one sheet per
// table. Both are used by the report command for offline exports.
package exporter
