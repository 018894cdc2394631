// Package gridbook maps named jagged grids of generic values onto the
// cell/style/format model of a spreadsheet document and back. The same
// encode/decode contract holds across three backing engines: the legacy
// binary format (.xls), the zipped-XML format (.xlsx) and a write-optimized
// streaming variant of the zipped-XML format.
//
// Writing drives Encode over a grid of values and composite cell specs;
// reading classifies each numeric cell's number format so integers stay
// integers, dates stay dates, percentages stay plain fractions and currency
// amounts come back as formatted strings. Traversal is lazy and
// distinguishes logical iteration (internal gaps reconstructed as nil,
// bounded by the last physically present cell) from physical iteration
// (stored cells only).
//
//	wb, err := gridbook.Build(engine.ZippedXML, []gridbook.Grid{
//		{Name: "one", Rows: [][]any{{1}, {2, 3}, {4, 5, 6}}},
//	})
//
// Formulas are carried as text only; this package never evaluates them.
package gridbook
