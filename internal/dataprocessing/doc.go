// Package dataprocessing loads raw race record tables and provides the cell
// coercion helpers shared by the cleaning and feature stages.
//
// # Architecture
//
// The package has two parts:
//
// 1. Parsers: read .xlsx workbooks (excelize) and .csv files into a domain.Table of text cells
// 2. Cells: ParseNumber, ToNumeric, ToText and ParseDate, the only place raw text becomes typed
//
// # Usage
//
//	table, err := dataprocessing.Load("2024_tokyo_11R.xlsx", logger)
//	if err != nil {
//	    return err
//	}
//	n, ok := dataprocessing.ParseNumber(table.Get(0, "horse_weight"))
//
// # Coercion
//
// ParseNumber never fails loudly. Full-width characters are folded to their
// half-width forms first, so "１２" parses as 12, while sentinel tokens such
// as "外" or "取消" simply report ok == false. Callers turn that into a
// missing cell.
//
// # Error Handling
//
// Parse errors are *errors.AppError values of type PARSING. A header with an
// empty or repeated column name is a SHAPE error.
package dataprocessing
