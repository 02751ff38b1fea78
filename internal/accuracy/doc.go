// Package accuracy back-tests strength labels against the next session's
// index move.
//
// Each institution's final CALL and PUT labels on a date are mapped to an
// expected move (UP, DOWN, FLAT OR UP, VOLATILE, ...). CLIENT positioning is
// read contrarian, every other institution is read directly. The expectation
// is judged against the percentage change from that date's close to the next
// available close, with a configurable flat band.
package accuracy
